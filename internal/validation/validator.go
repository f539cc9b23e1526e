// =============================================================================
// findings2xml - Validation Engine
// =============================================================================
//
// This module validates configuration structures before a conversion starts.
// It wraps go-playground/validator so that rules are declared as struct tags
// next to the settings they guard:
//
//   Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
//
// ERROR HANDLING:
//   - Every violated rule is collected, not only the first one
//   - Field paths use the yaml names operators see in their config file
//   - Domain-specific rules (logical field names, delimiters, encodings) are
//     registered by the caller through Register
//
// Row data is never validated here: missing columns and empty cells resolve
// to documented defaults during conversion.
//
// =============================================================================

package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single violated rule.
type ValidationError struct {
	// Field is the dotted yaml path of the offending setting.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the validation tag that failed.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range v {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator wraps the go-playground validator.
type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

// New creates a Validator that reports fields by their yaml names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(field.Name)
		}
		return name
	})

	return &Validator{
		validate: v,
		messages: make(map[string]string),
	}
}

// Register adds a string rule under tag. message is used when the rule fails.
func (v *Validator) Register(tag, message string, valid func(string) bool) error {
	err := v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	})
	if err != nil {
		return fmt.Errorf("failed to register rule %q: %w", tag, err)
	}
	v.messages[tag] = message
	return nil
}

// Validate validates a struct and returns ValidationErrors if any rule fails.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return err
	}

	result := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		result = append(result, &ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Rule:    fe.Tag(),
			Message: v.formatMessage(fe),
		})
	}
	return result
}

// fieldPath drops the root struct name from a validator namespace.
// "Config.log.level" -> "log.level"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// formatMessage turns a field error into a readable message.
func (v *Validator) formatMessage(fe validator.FieldError) string {
	if msg, ok := v.messages[fe.Tag()]; ok {
		return fmt.Sprintf("%s (got %q)", msg, fmt.Sprintf("%v", fe.Value()))
	}

	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s (got %q)", strings.ReplaceAll(fe.Param(), " ", ", "), fmt.Sprintf("%v", fe.Value()))
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display, one per line.
func FormatErrors(errors ValidationErrors) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

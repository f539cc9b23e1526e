package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logSettings struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

type entry struct {
	Field string `yaml:"field" validate:"required,upper_only"`
}

type settings struct {
	Log     logSettings `yaml:"log"`
	Entries []entry     `yaml:"entries" validate:"dive"`
	Indent  string      `yaml:"indent" validate:"max=4"`
}

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v := New()
	require.NoError(t, v.Register("upper_only", "must be upper case", func(s string) bool {
		return s == strings.ToUpper(s)
	}))
	return v
}

func TestValidate_Valid(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(settings{
		Log:     logSettings{Level: "warn", Format: "json"},
		Entries: []entry{{Field: "SEVERITY"}},
		Indent:  "  ",
	})
	assert.NoError(t, err)

	assert.NoError(t, v.Validate(settings{}), "empty optional settings are valid")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(settings{
		Log:     logSettings{Level: "verbose", Format: "xml"},
		Entries: []entry{{Field: "SEVERITY"}, {Field: "severity"}, {Field: ""}},
		Indent:  "          ",
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 5)

	byField := make(map[string]*ValidationError)
	for _, e := range verrs {
		byField[e.Field] = e
	}

	require.Contains(t, byField, "log.level")
	assert.Equal(t, "oneof", byField["log.level"].Rule)
	assert.Contains(t, byField["log.level"].Message, "debug, info, warn, error")
	assert.Contains(t, byField["log.level"].Message, `"verbose"`)

	require.Contains(t, byField, "log.format")

	require.Contains(t, byField, "entries[1].field")
	assert.Equal(t, "upper_only", byField["entries[1].field"].Rule)
	assert.Contains(t, byField["entries[1].field"].Message, "must be upper case")
	assert.Equal(t, "severity", byField["entries[1].field"].Value)

	require.Contains(t, byField, "entries[2].field")
	assert.Equal(t, "required", byField["entries[2].field"].Rule)

	require.Contains(t, byField, "indent")
	assert.Equal(t, "must be at most 4 characters", byField["indent"].Message)
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "log.level", Message: "bad"},
		{Field: "indent", Message: "too long"},
	}
	assert.Equal(t, "log.level: bad; indent: too long", errs.Error())
	assert.Equal(t, "", ValidationErrors{}.Error())
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	out := FormatErrors(ValidationErrors{
		{Field: "log.level", Message: "bad"},
	})
	assert.Equal(t, "Validation completed with 1 error(s):\n  1. log.level: bad\n", out)
}

// =============================================================================
// findings2xml - Configuration Module
// =============================================================================
//
// This module is responsible for loading the optional YAML configuration file.
// Every setting has a built-in default, so the tool runs without any file.
//
// CONFIGURATION FILE LOOKUP:
//   1. The path in the FINDINGS2XML_CONFIG environment variable (must exist)
//   2. ./findings2xml.yaml when present
//   3. Built-in defaults
//
// EXAMPLE:
//
//   mapping:            # overlays the built-in table; "$" prefix = fixed literal
//     SEVERITY: "Ease of Exploitation"
//     CVE_YEAR: "$"
//   input:
//     delimiter: ","
//     encoding: utf-8
//     sheet: ""
//   output:
//     indent: "  "
//   log:
//     level: info       # debug | info | warn | error
//     format: console   # console | json
//
// All problems in a file are reported together.
//
// =============================================================================

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/findings2xml/internal/csvparser"
	"github.com/ginjaninja78/findings2xml/internal/logging"
	"github.com/ginjaninja78/findings2xml/internal/mapping"
	"github.com/ginjaninja78/findings2xml/internal/validation"
	"github.com/ginjaninja78/findings2xml/internal/xlsxparser"
	"github.com/ginjaninja78/findings2xml/internal/xmlwriter"
	"github.com/ginjaninja78/findings2xml/pkg/utils"
)

const (
	// EnvConfigPath names the environment variable holding the config path.
	EnvConfigPath = "FINDINGS2XML_CONFIG"

	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "findings2xml.yaml"
)

// ErrInvalidConfig is wrapped by every load or validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// Mapping overlays the built-in mapping table. Keys are logical field
	// names; values starting with "$" are literals, anything else names a
	// column.
	Mapping map[string]string `yaml:"mapping" validate:"dive,keys,logical_field,endkeys"`

	// Input contains settings for reading the findings file.
	Input InputSettings `yaml:"input"`

	// Output contains settings for the generated document.
	Output OutputSettings `yaml:"output"`

	// Log contains logger settings.
	Log LogSettings `yaml:"log"`

	// Path is the file the configuration was loaded from, or "" when the
	// built-in defaults are in use.
	Path string `yaml:"-"`
}

// InputSettings contains settings for reading input files.
type InputSettings struct {
	// Delimiter is the CSV field separator.
	// Default: ","
	Delimiter string `yaml:"delimiter" validate:"delimiter"`

	// Encoding is the CSV character set.
	// Default: "utf-8"
	Encoding string `yaml:"encoding" validate:"encoding"`

	// Sheet selects the workbook sheet for XLSX input.
	// Default: "" (first sheet)
	Sheet string `yaml:"sheet"`
}

// OutputSettings contains settings for the XML document.
type OutputSettings struct {
	// Indent is one level of indentation.
	// Default: "  "
	Indent string `yaml:"indent" validate:"max=16,indent"`
}

// LogSettings contains logger settings.
type LogSettings struct {
	// Level is the minimum level written.
	// Default: "info"
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format is "console" or "json".
	// Default: "console"
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the Config struct with defaults applied.
//   - An error wrapping ErrInvalidConfig if the file cannot be read, parsed or
//     validated.
func Load(configPath string) (*Config, error) {
	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrInvalidConfig, err)
	}

	// Parse the YAML. Unknown settings are rejected.
	var config Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidConfig, configPath, err)
	}

	// Apply default values.
	applyDefaults(&config)

	// Validate the configuration.
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, configPath, err)
	}

	config.Path = configPath
	return &config, nil
}

// Discover locates and loads the configuration file, falling back to the
// built-in defaults when none exists.
func Discover() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	if utils.FileExists(DefaultConfigFile) {
		return Load(DefaultConfigFile)
	}

	return Default(), nil
}

// applyDefaults applies default values to the configuration.
func applyDefaults(config *Config) {
	if config.Input.Delimiter == "" {
		config.Input.Delimiter = ","
	}

	if config.Input.Encoding == "" {
		config.Input.Encoding = "utf-8"
	}

	if config.Output.Indent == "" {
		config.Output.Indent = "  "
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}

	if config.Log.Format == "" {
		config.Log.Format = "console"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks every setting and reports all problems together.
func Validate(config *Config) error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	return v.Validate(config)
}

// newValidator registers the configuration-specific rules.
func newValidator() (*validation.Validator, error) {
	v := validation.New()

	rules := []struct {
		tag     string
		message string
		valid   func(string) bool
	}{
		{"logical_field", "unknown logical field", func(s string) bool { return mapping.Field(s).Valid() }},
		{"delimiter", "must be a single character or one of tab, pipe, semicolon, comma", csvparser.SupportedDelimiter},
		{"encoding", "unsupported encoding", csvparser.SupportedEncoding},
		{"indent", "must contain only spaces and tabs", isIndent},
	}

	for _, rule := range rules {
		if err := v.Register(rule.tag, rule.message, rule.valid); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func isIndent(s string) bool {
	return strings.Trim(s, " \t") == ""
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// MappingTable returns the built-in mapping table with the configured entries
// applied on top.
func (c *Config) MappingTable() (*mapping.Table, error) {
	overrides, err := mapping.FromRaw(c.Mapping)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return mapping.Default().Overlay(overrides), nil
}

// CSVSettings returns the CSV reader settings.
func (c *Config) CSVSettings() csvparser.Settings {
	return csvparser.Settings{
		Delimiter: c.Input.Delimiter,
		Encoding:  c.Input.Encoding,
	}
}

// XLSXSettings returns the workbook reader settings.
func (c *Config) XLSXSettings() xlsxparser.Settings {
	return xlsxparser.Settings{Sheet: c.Input.Sheet}
}

// GenerateOptions returns the XML serialization options.
func (c *Config) GenerateOptions() xmlwriter.GenerateOptions {
	options := xmlwriter.DefaultGenerateOptions()
	options.Indent = c.Output.Indent
	return options
}

// LoggingConfig returns the logger settings writing to out.
func (c *Config) LoggingConfig(out io.Writer) logging.Config {
	return logging.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: out,
	}
}

// Source describes where the configuration came from, for logs.
func (c *Config) Source() string {
	if c.Path == "" {
		return "built-in defaults"
	}
	return c.Path
}

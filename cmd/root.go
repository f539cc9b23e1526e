// =============================================================================
// findings2xml - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Running the root
// command converts one findings file into a report document.
//
// COBRA CLI STRUCTURE:
//   rootCmd (findings2xml -i findings.csv -o report.xml)
//   ├── mappingCmd (findings2xml mapping)
//   └── versionCmd (findings2xml version)
//
// CONFIGURATION:
//   Flags only name the input and output files. Everything else (mapping
//   table, delimiter, encoding, logging) comes from the optional YAML file
//   found through FINDINGS2XML_CONFIG or ./findings2xml.yaml.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/findings2xml/internal/config"
	"github.com/ginjaninja78/findings2xml/internal/converter"
	"github.com/ginjaninja78/findings2xml/internal/logging"
	"github.com/ginjaninja78/findings2xml/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// inputPath is the findings file to convert.
var inputPath string

// outputPath is the report file to write.
var outputPath string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "findings2xml",
	Short: "Convert vulnerability findings from CSV into an XML report",
	Long: `findings2xml converts a CSV (or XLSX) export of vulnerability findings into
the XML report document accepted by the findings management importer.

Each <finding> is filled from the mapping table: a value starting with "$" is
a fixed literal, any other value names an input column.

Example Usage:
  findings2xml -i findings.csv -o report.xml
  findings2xml mapping > findings2xml.yaml   # start a config from the defaults
  FINDINGS2XML_CONFIG=team.yaml findings2xml -i findings.xlsx -o report.xml`,

	Args:          cobra.NoArgs,
	SilenceErrors: true,
	RunE:          runConvert,
}

// runConvert loads the configuration and runs one conversion.
func runConvert(cmd *cobra.Command, args []string) error {
	// Flags parsed fine; from here on errors are not usage errors.
	cmd.SilenceUsage = true

	cfg, err := config.Discover()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LoggingConfig(cmd.ErrOrStderr()))
	logger.Debug().Str("config", cfg.Source()).Msg("configuration loaded")

	table, err := cfg.MappingTable()
	if err != nil {
		return err
	}

	_, err = converter.New(converter.Options{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Mapping:    table,
		CSV:        cfg.CSVSettings(),
		XLSX:       cfg.XLSXSettings(),
		XML:        cfg.GenerateOptions(),
	}, logger).Run()

	return err
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the root command with args and returns the exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

// printError reports err to the user. Configuration problems are listed one
// per line.
func printError(w io.Writer, err error) {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		fmt.Fprintf(w, "Error: %v\n%s", config.ErrInvalidConfig, validation.FormatErrors(verrs))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the flags.
func init() {
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input CSV file")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output XML file")

	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")
}

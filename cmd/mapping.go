// =============================================================================
// findings2xml - Mapping Command
// =============================================================================
//
// This file defines the 'mapping' command, which prints the mapping table in
// effect (built-in defaults plus any configured overrides) as a YAML snippet
// that can be pasted into findings2xml.yaml.
//
// COMMAND USAGE:
//   findings2xml mapping
//
// OUTPUT:
//   mapping:
//     REPORT_DATE: "$2023-05-30"
//     REPORT_TOOL: "$My Custom Tool"
//     ...
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/findings2xml/internal/config"
	"github.com/ginjaninja78/findings2xml/internal/mapping"
)

// mappingCmd represents the 'mapping' command.
var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Print the effective mapping table",
	Long: `Print the mapping table used for conversions as YAML.

Values starting with "$" are fixed literals; any other value names an input
column. "$" alone is an empty literal, which disables the CVE block when used
for CVE_YEAR or CVE_SEQUENCE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.Discover()
		if err != nil {
			return err
		}

		table, err := cfg.MappingTable()
		if err != nil {
			return err
		}

		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent(2)
		defer encoder.Close()

		doc := struct {
			Mapping *mapping.Table `yaml:"mapping"`
		}{Mapping: table}

		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode mapping: %w", err)
		}
		return nil
	},
}

// init registers the mapping command with the root command.
func init() {
	rootCmd.AddCommand(mappingCmd)
}

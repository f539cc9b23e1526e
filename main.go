// =============================================================================
// findings2xml - Main Entry Point
// =============================================================================
//
// This is the main entry point for the findings2xml CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   findings2xml -i findings.csv -o report.xml  - Convert findings to XML
//   findings2xml mapping                        - Print the mapping table
//   findings2xml version                        - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Mapping, readers, element builders and the XML writer
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/findings2xml/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}

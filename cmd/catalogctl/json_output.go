package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput prints v as JSON when --json is set, otherwise the table.
func writeOutput(cmd *cobra.Command, ctx *commandContext, v any, headers []string, rows [][]string, aligns []columnAlignment) error {
	if ctx.jsonOutput {
		return writeJSON(cmd, v)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
	return nil
}

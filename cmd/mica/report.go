package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mica/internal/mir"
)

var reportCmd = &cobra.Command{
	Use:   "report [flags] <unit.hir.json|directory>",
	Short: "Print a control-flow summary of the lowered module",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	res, err := compileInput(cmd.Context(), cmd, args[0], nil)
	if res != nil {
		printDiagnostics(os.Stderr, res.Bag, res.Files, useColor(cmd))
	}
	if err != nil {
		return fmt.Errorf("lowering failed: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), mir.Report(res.MIR))
	return nil
}

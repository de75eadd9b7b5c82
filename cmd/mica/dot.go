package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mica/internal/mir"
)

var dotCmd = &cobra.Command{
	Use:   "dot [flags] <unit.hir.json|directory>",
	Short: "Export the module's control-flow graphs as Graphviz dot",
	Args:  cobra.ExactArgs(1),
	RunE:  runDot,
}

func init() {
	dotCmd.Flags().StringP("out", "o", "", "write output to file instead of stdout")
}

func runDot(cmd *cobra.Command, args []string) error {
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	res, err := compileInput(cmd.Context(), cmd, args[0], nil)
	if res != nil {
		printDiagnostics(os.Stderr, res.Bag, res.Files, useColor(cmd))
	}
	if err != nil {
		return fmt.Errorf("lowering failed: %w", err)
	}
	graph := mir.ToDot(res.MIR)
	if outPath != "" {
		return os.WriteFile(outPath, []byte(graph), 0o644)
	}
	fmt.Fprint(cmd.OutOrStdout(), graph)
	return nil
}

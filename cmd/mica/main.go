package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mica/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mica",
		Short: "Mica middle-end: HIR to MIR lowering and analysis",
		Long: `Mica consumes HIR interchange units (*.hir.json) produced by a front
end, validates them, links and lowers them to MIR, and emits the result
as JSON, a readable dump, a CFG report or a Graphviz graph.`,
	}
	root.Version = version.Version

	root.AddCommand(lowerCmd)
	root.AddCommand(checkCmd)
	root.AddCommand(reportCmd)
	root.AddCommand(dotCmd)
	root.AddCommand(versionCmd)

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	root.PersistentFlags().Int("jobs", 0, "max parallel workers for unit loading (0=auto)")
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mica/internal/diag"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <unit.hir.json|directory>",
	Short: "Validate HIR units and the lowered MIR without emitting output",
	RunE:  runCheck,
	Args:  cobra.ExactArgs(1),
}

func init() {
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
}

func runCheck(cmd *cobra.Command, args []string) error {
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}

	res, compileErr := compileInput(cmd.Context(), cmd, args[0], nil)
	if res == nil {
		return compileErr
	}

	if noWarnings {
		filtered := diag.NewBag(res.Bag.Len() + 1)
		for _, d := range res.Bag.Items() {
			if d.Severity >= diag.SevError {
				filtered.Add(d)
			}
		}
		res.Bag = filtered
	}
	printDiagnostics(os.Stderr, res.Bag, res.Files, useColor(cmd))

	if compileErr != nil {
		return fmt.Errorf("check failed: %w", compileErr)
	}
	failed := res.Bag.HasErrors() || (warningsAsErrors && res.Bag.HasWarnings())
	if failed {
		return silentExit(cmd)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d unit(s), %d function(s)\n", len(res.HIR), len(res.MIR.Funcs))
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mica/internal/driver"
	"mica/internal/mir"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <unit.hir.json|directory>",
	Short: "Lower HIR interchange units to a linked MIR module",
	Args:  cobra.ExactArgs(1),
	RunE:  runLower,
}

func init() {
	lowerCmd.Flags().StringP("out", "o", "", "write output to file instead of stdout")
	lowerCmd.Flags().String("format", "json", "output format (json|text)")
	lowerCmd.Flags().Bool("disk-cache", false, "reuse cached MIR for unchanged inputs")
}

func runLower(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "json" && format != "text" {
		return fmt.Errorf("unknown format: %s", format)
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	useDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}

	var cache *driver.DiskCache
	if useDiskCache {
		// Each project caches under its own namespace; clearing one
		// project's cache leaves the others intact.
		app := "mica"
		if m := projectFor(args[0]); m != nil {
			app = filepath.Join("mica", m.Package.Name)
		}
		if cache, err = driver.OpenDiskCache(app); err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
	}

	res, err := compileInput(cmd.Context(), cmd, args[0], cache)
	if res != nil {
		printDiagnostics(os.Stderr, res.Bag, res.Files, useColor(cmd))
	}
	if err != nil {
		return fmt.Errorf("lowering failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, createErr := os.Create(outPath) // #nosec G304 -- path comes from the caller
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		data, jsonErr := mir.ToJSON(res.MIR)
		if jsonErr != nil {
			return jsonErr
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			return err
		}
	case "text":
		if err := mir.DumpModule(out, res.MIR); err != nil {
			return err
		}
	}
	return nil
}

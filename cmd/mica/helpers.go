package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mica/internal/diag"
	"mica/internal/driver"
	"mica/internal/project"
	"mica/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// compileInput resolves the argument (one interchange file or a
// directory of them) and runs the pipeline over it.
func compileInput(ctx context.Context, cmd *cobra.Command, path string, cache *driver.DiskCache) (*driver.Result, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	opts := driver.Options{MaxDiagnostics: maxDiagnostics, Jobs: jobs, Cache: cache}

	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if st.IsDir() {
		// A manifest entry narrows a directory argument to the project's
		// entry unit; without one, every unit under the directory links.
		if m := projectFor(path); m != nil && m.Package.Entry != "" {
			return driver.CompileFiles(ctx, []string{filepath.Join(m.Dir, m.Package.Entry)}, opts)
		}
		return driver.CompileDir(ctx, path, opts)
	}
	return driver.CompileFiles(ctx, []string{path}, opts)
}

// projectFor resolves the manifest governing path, if any.
func projectFor(path string) *project.Manifest {
	dir := path
	if st, err := os.Stat(path); err != nil || !st.IsDir() {
		dir = filepath.Dir(path)
	}
	m, err := project.FindManifest(dir)
	if err != nil {
		return nil
	}
	return m
}

// useColor resolves the --color flag against the terminal.
func useColor(cmd *cobra.Command) bool {
	flag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	return flag == "on" || (flag == "auto" && isTerminal(os.Stdout))
}

// printDiagnostics renders the bag to w, one line per diagnostic. With
// a file set, spans resolve to path:line:column; otherwise they print
// as raw file/offset pairs.
func printDiagnostics(w io.Writer, bag *diag.Bag, files *source.FileSet, colorize bool) {
	if bag == nil {
		return
	}
	bag.Sort()
	for _, d := range bag.Items() {
		sev := d.Severity.String()
		if colorize {
			switch d.Severity {
			case diag.SevError:
				sev = errorColor.Sprint(sev)
			case diag.SevWarning:
				sev = warningColor.Sprint(sev)
			default:
				sev = infoColor.Sprint(sev)
			}
		}
		fmt.Fprintf(w, "%s %s %s: %s\n", sev, d.Code.ID(), spanLabel(files, d.Primary), d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note %s: %s\n", spanLabel(files, n.Span), n.Msg)
		}
	}
}

// spanLabel resolves sp against files, falling back to the raw span for
// spans with no registered file.
func spanLabel(files *source.FileSet, sp source.Span) string {
	if files != nil {
		if pos := files.Position(sp); pos.Line > 0 {
			return fmt.Sprintf("%s:%d:%d", pos.Path, pos.Line, pos.Column)
		}
	}
	return sp.String()
}

// silentExit makes cobra propagate a non-zero exit without re-printing
// diagnostics that already went to the terminal.
func silentExit(cmd *cobra.Command) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return fmt.Errorf("")
}

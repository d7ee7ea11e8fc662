package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bundler/internal/diag"
	"bundler/internal/diagfmt"
	"bundler/internal/source"
)

// printDiagnostics writes bag to stderr in the format chosen by
// --diagnostics-format, trimmed to --max-diagnostics.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	flags := cmd.Root().PersistentFlags()
	format, err := flags.GetString("diagnostics-format")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if fs == nil {
		cwd, _ := os.Getwd()
		fs = source.NewFileSetWithBase(cwd)
	}

	bag.Dedup()
	bag.Sort()
	items := bag.Items()
	if quiet(cmd) {
		items = keepErrors(items)
	}
	omitted := 0
	if maxDiagnostics > 0 && len(items) > maxDiagnostics {
		omitted = len(items) - maxDiagnostics
		items = items[:maxDiagnostics]
	}

	out := cmd.ErrOrStderr()
	switch strings.ToLower(format) {
	case "", "pretty":
		diagfmt.PrettyItems(out, items, fs, diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   1,
			PathMode:  diagfmt.PathModeAuto,
			ShowNotes: true,
		})
	case "short":
		if text := diag.FormatShortDiagnostics(items, fs, true); text != "" {
			fmt.Fprintln(out, text)
		}
	case "json":
		enc := diagfmt.BuildDiagnosticsOutput(items, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			IncludeNotes:     true,
		})
		return writeJSON(out, enc)
	default:
		return fmt.Errorf("invalid --diagnostics-format value %q (expected pretty|short|json)", format)
	}
	if omitted > 0 {
		fmt.Fprintf(out, "... %d more diagnostics omitted\n", omitted)
	}
	return nil
}

func keepErrors(items []diag.Diagnostic) []diag.Diagnostic {
	out := items[:0:0]
	for _, d := range items {
		if d.Severity == diag.SevError {
			out = append(out, d)
		}
	}
	return out
}

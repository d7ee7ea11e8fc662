// Package main implements the bundler CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bundler/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "bundler",
	Short:         "JavaScript module compiler",
	Long:          `bundler parses, rewrites and links JavaScript and TypeScript modules into a dependency graph`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		enabled, err := colorEnabled(cmd)
		if err != nil {
			return err
		}
		color.NoColor = !enabled

		stop, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		stopProfiling = stop
		return nil
	},
}

// stopProfiling is set once the root pre-run started the profilers.
var stopProfiling = func() {}

// main registers subcommands and persistent flags, then executes the root
// command. A failed command exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to bundler.toml or bundler.yaml (default: search upwards)")
	rootCmd.PersistentFlags().StringArrayP("define", "D", nil, "define KEY=EXPR, repeatable; overrides the config file")
	rootCmd.PersistentFlags().Int("jobs", 0, "number of modules processed concurrently (default: config or GOMAXPROCS)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("diagnostics-format", "pretty", "diagnostics output (pretty|short|json)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr, .ndjson for NDJSON)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept in memory for --trace-level=error")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")

	err := rootCmd.Execute()
	stopProfiling()
	if err != nil {
		if !buildFailed(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func colorEnabled(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stderr), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bundler/internal/buildpipeline"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flags] [entries...]",
	Short: "Print the dependency graph",
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) (err error) {
	showOrder, err := cmd.Flags().GetBool("order")
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() {
		if err != nil {
			dumpTrace(cmd)
		}
	}()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	req, err := prepareRequest(cmd, cfg, entryArgs(args))
	if err != nil {
		return err
	}

	res, buildErr := buildpipeline.Build(cmd.Context(), req)
	if res == nil {
		return buildErr
	}
	if err := printDiagnostics(cmd, res.Bag, res.Files); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, res.Graph.Format())
	if showOrder && res.Order != nil {
		fmt.Fprintln(out, " order:")
		for i, batch := range res.Order.Batches {
			names := make([]string, len(batch))
			for j, id := range batch {
				names[j] = formatPathForOutput(cfg.Root, id.String())
			}
			fmt.Fprintf(out, "  %d: %s\n", i, strings.Join(names, " "))
		}
		for _, id := range res.Order.Cycles {
			fmt.Fprintf(out, "  cycle: %s\n", formatPathForOutput(cfg.Root, id.String()))
		}
	}
	return buildErr
}

func init() {
	graphCmd.Flags().Bool("order", false, "also print the topological batches, dependencies first")
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bundler/internal/buildpipeline"
	"bundler/internal/module"
)

var transformCmd = &cobra.Command{
	Use:   "transform [flags] <file>",
	Short: "Print one module after define substitution and injection",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransform,
}

func runTransform(cmd *cobra.Command, args []string) (err error) {
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
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", args[0], err)
	}
	req, err := prepareRequest(cmd, cfg, []string{abs})
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
	m, ok := res.Graph.Module(module.ID(filepath.ToSlash(abs)))
	if !ok || (m.Code == "" && m.File != nil && len(m.File.Content) > 0) {
		if buildErr != nil {
			return buildErr
		}
		return fmt.Errorf("%s: no output", args[0])
	}
	fmt.Fprint(cmd.OutOrStdout(), m.Code)
	return buildErr
}

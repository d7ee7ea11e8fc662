package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bundler/internal/buildpipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [entries...]",
	Short: "Build every module reachable from the entries",
	Long: `Build parses each module reachable from the entries, applies define
substitution and dependency injection, links the dependency graph and writes
the transformed modules to out_dir. Entries default to the config file and may
be glob patterns.`,
	RunE: buildExecution,
}

func buildExecution(cmd *cobra.Command, args []string) (err error) {
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	noWrite, err := cmd.Flags().GetBool("no-write")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	useUI, err := useProgressUI(cmd)
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
	if outDir != "" {
		cfg.OutDir = outDir
	}
	req, err := prepareRequest(cmd, cfg, entryArgs(args))
	if err != nil {
		return err
	}
	req.Cache = openCache(cmd, cfg, noCache)

	var res *buildpipeline.Result
	if useUI {
		res, err = runBuildWithUI(cmd.Context(), "bundler build", displayFileList(req.Entries, cfg.Root), req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}
	if res != nil {
		if perr := printDiagnostics(cmd, res.Bag, res.Files); perr != nil {
			return perr
		}
		if showTimings {
			printStageTimings(cmd.OutOrStdout(), res.Timings)
		}
	}
	if err != nil {
		return err
	}

	if noWrite {
		return nil
	}
	dir, err := outputDir(cfg)
	if err != nil {
		return err
	}
	written, err := buildpipeline.WriteOutput(res, cfg.Root, dir)
	if err != nil {
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "built %d modules (%d from cache) into %s\n",
			len(written), res.CacheHits, formatPathForOutput(cfg.Root, dir))
	}
	return nil
}

// entryArgs makes plain paths absolute against the working directory; glob
// patterns stay relative to the config root.
func entryArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if !strings.ContainsAny(a, "*?[{") {
			if abs, err := filepath.Abs(a); err == nil {
				a = abs
			}
		}
		out = append(out, a)
	}
	return out
}

func displayFileList(files []string, root string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, formatPathForOutput(root, f))
	}
	return out
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func init() {
	buildCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	buildCmd.Flags().String("out-dir", "", "output directory (default: out_dir from the config)")
	buildCmd.Flags().Bool("no-cache", false, "disable the transform cache")
	buildCmd.Flags().Bool("no-write", false, "build the graph without writing output files")
}

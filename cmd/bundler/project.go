package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bundler/internal/buildpipeline"
	"bundler/internal/cache"
	"bundler/internal/config"
)

const memoryCacheSize = 1024

// loadConfig reads --config or the nearest config file above the working
// directory and applies the --define and --jobs overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg *config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}

	defines, err := flags.GetStringArray("define")
	if err != nil {
		return nil, fmt.Errorf("failed to get define flag: %w", err)
	}
	if cfg.Define == nil {
		cfg.Define = map[string]any{}
	}
	for _, kv := range defines {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --define %q (expected KEY=EXPR)", kv)
		}
		cfg.Define[strings.TrimSpace(key)] = value
	}

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	return cfg, nil
}

// prepareRequest turns the config and the entry arguments into a build
// request. Configuration diagnostics are printed before the error returns.
func prepareRequest(cmd *cobra.Command, cfg *config.Config, entries []string) (*buildpipeline.Request, error) {
	req, bag, err := buildpipeline.FromConfig(cmd.Context(), cfg, entries)
	if err != nil {
		if bag != nil && bag.Len() > 0 {
			if perr := printDiagnostics(cmd, bag, nil); perr != nil {
				return nil, perr
			}
			return nil, buildpipeline.ErrInvalidConfig
		}
		return nil, err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	req.MaxDiagnostics = maxDiagnostics
	return req, nil
}

// openCache returns the transform cache for cfg. A disk cache that cannot be
// opened degrades to memory only.
func openCache(cmd *cobra.Command, cfg *config.Config, disabled bool) *cache.Cache {
	if disabled {
		return nil
	}
	var (
		disk *cache.Disk
		err  error
	)
	if cfg.CacheDir != "" {
		disk, err = cache.OpenDisk(cfg.Abs(cfg.CacheDir))
	} else {
		disk, err = cache.OpenUserDisk("bundler")
	}
	if err != nil {
		if !quiet(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache disabled: %v\n", err)
		}
		disk = nil
	}
	return cache.New(cache.NewMemory(memoryCacheSize), disk)
}

// buildFailed reports whether err only means the build produced error
// diagnostics, which have already been printed.
func buildFailed(err error) bool {
	return errors.Is(err, buildpipeline.ErrBuildFailed) || errors.Is(err, buildpipeline.ErrInvalidConfig)
}

// outputDir returns the absolute out_dir, refusing the project root itself.
func outputDir(cfg *config.Config) (string, error) {
	dir := cfg.Abs(cfg.OutDir)
	if strings.TrimSpace(cfg.OutDir) == "" || filepath.Clean(dir) == filepath.Clean(cfg.Root) {
		return "", fmt.Errorf("out_dir must name a directory below %s", cfg.Root)
	}
	return dir, nil
}

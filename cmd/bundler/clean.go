package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bundler/internal/cache"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the output directory and optionally the transform cache",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	dropCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	outDir, err := outputDir(cfg)
	if err != nil {
		return err
	}
	info, err := os.Stat(outDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if !quiet(cmd) {
			fmt.Fprintln(out, "output directory not found")
		}
	case err != nil:
		return fmt.Errorf("failed to stat %q: %w", outDir, err)
	case !info.IsDir():
		return fmt.Errorf("%q is not a directory", outDir)
	default:
		if err := os.RemoveAll(outDir); err != nil {
			return fmt.Errorf("failed to remove %q: %w", outDir, err)
		}
		if !quiet(cmd) {
			fmt.Fprintf(out, "removed %s\n", formatPathForOutput(cfg.Root, outDir))
		}
	}

	if !dropCache {
		return nil
	}
	var disk *cache.Disk
	if cfg.CacheDir != "" {
		disk, err = cache.OpenDisk(cfg.Abs(cfg.CacheDir))
	} else {
		disk, err = cache.OpenUserDisk("bundler")
	}
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := disk.DropAll(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	if !quiet(cmd) {
		fmt.Fprintf(out, "cleared cache %s\n", disk.Dir())
	}
	return nil
}

func init() {
	cleanCmd.Flags().Bool("cache", false, "also clear the transform cache")
}

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"bundler/internal/buildpipeline"
	"bundler/internal/config"
)

func TestReadUIMode(t *testing.T) {
	tests := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range tests {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}

func TestFormatPathForOutput(t *testing.T) {
	root := filepath.FromSlash("/work/app")
	tests := []struct {
		path string
		want string
	}{
		{filepath.FromSlash("/work/app/src/main.js"), "src/main.js"},
		{filepath.FromSlash("/work/other/x.js"), filepath.FromSlash("/work/other/x.js")},
		{"external:react", "external:react"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := formatPathForOutput(root, tt.path); got != tt.want {
			t.Fatalf("formatPathForOutput(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestEntryArgsKeepsGlobs(t *testing.T) {
	got := entryArgs([]string{"src/**/*.js", "main.js"})
	if got[0] != "src/**/*.js" {
		t.Fatalf("glob rewritten to %q", got[0])
	}
	if !filepath.IsAbs(got[1]) || !strings.HasSuffix(got[1], "main.js") {
		t.Fatalf("plain path not made absolute: %q", got[1])
	}
}

func TestOutputDirRejectsRoot(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default(root)
	dir, err := outputDir(cfg)
	if err != nil || dir != filepath.Join(root, "dist") {
		t.Fatalf("got %q, %v", dir, err)
	}
	for _, bad := range []string{"", ".", root} {
		cfg.OutDir = bad
		if _, err := outputDir(cfg); err == nil {
			t.Fatalf("out_dir %q accepted", bad)
		}
	}
}

func TestPrintStageTimingsInPipelineOrder(t *testing.T) {
	var timings buildpipeline.Timings
	timings.Set(buildpipeline.StageCommit, 2*time.Millisecond)
	timings.Set(buildpipeline.StageParse, 1500*time.Microsecond)

	var buf bytes.Buffer
	printStageTimings(&buf, timings)

	want := "parse    1.5 ms\ncommit   2.0 ms\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUseProgressUI(t *testing.T) {
	newCmd := func(ui, format string, q bool) *cobra.Command {
		root := &cobra.Command{Use: "bundler"}
		root.PersistentFlags().Bool("quiet", false, "")
		root.PersistentFlags().String("diagnostics-format", "pretty", "")
		build := &cobra.Command{Use: "build"}
		build.Flags().String("ui", "auto", "")
		root.AddCommand(build)
		if err := build.Flags().Set("ui", ui); err != nil {
			t.Fatal(err)
		}
		if err := root.PersistentFlags().Set("diagnostics-format", format); err != nil {
			t.Fatal(err)
		}
		if q {
			if err := root.PersistentFlags().Set("quiet", "true"); err != nil {
				t.Fatal(err)
			}
		}
		return build
	}

	tests := []struct {
		ui, format string
		quiet      bool
		want       bool
	}{
		{"on", "pretty", false, true},
		{"off", "pretty", false, false},
		{"on", "json", false, false},
		{"on", "pretty", true, false},
	}
	for _, tt := range tests {
		got, err := useProgressUI(newCmd(tt.ui, tt.format, tt.quiet))
		if err != nil || got != tt.want {
			t.Fatalf("ui=%s format=%s quiet=%v: got %v, %v; want %v", tt.ui, tt.format, tt.quiet, got, err, tt.want)
		}
	}
	if _, err := useProgressUI(newCmd("maybe", "pretty", false)); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}

package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundler.toml")
	writeFile(t, path, `
entries = ["src/main.js"]
jobs = 3
env_prefix = "APP_"

[define]
DEBUG = true
VERSION = '"1.2.0"'
LIMITS = [1, 2]

[define.FEATURES]
search = "true"

[inject.React]
from = "react"
namespace = true

[inject."$"]
from = "jquery"
prefer_require = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Jobs != 3 || cfg.EnvPrefix != "APP_" {
		t.Fatalf("got jobs=%d prefix=%q", cfg.Jobs, cfg.EnvPrefix)
	}
	if !slices.Equal(cfg.EnvFiles, []string{".env"}) {
		t.Fatalf("got env files %v, want default", cfg.EnvFiles)
	}
	if cfg.Define["DEBUG"] != true || cfg.Define["VERSION"] != `"1.2.0"` {
		t.Fatalf("unexpected defines %v", cfg.Define)
	}
	if _, ok := cfg.Define["FEATURES"].(map[string]any); !ok {
		t.Fatalf("got %T, want map[string]any", cfg.Define["FEATURES"])
	}
	if _, ok := cfg.Define["LIMITS"].([]any); !ok {
		t.Fatalf("got %T, want []any", cfg.Define["LIMITS"])
	}
	if !cfg.Inject["React"].Namespace || !cfg.Inject["$"].PreferRequire {
		t.Fatalf("unexpected inject rules %+v", cfg.Inject)
	}
	if cfg.Root != dir {
		t.Fatalf("got root %q, want %q", cfg.Root, dir)
	}
}

func TestLoadTOMLUnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundler.toml")
	for _, body := range []string{
		"entriez = [\"a.js\"]\n",
		"[inject.React]\nfrom = \"react\"\nnamespaced = true\n",
	} {
		writeFile(t, path, body)
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error for unknown key in %q", body)
		}
	}

	writeFile(t, path, "[define.FLAGS]\nsearch = true\n[define.FLAGS.limits]\nmax = 3\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	flags, ok := cfg.Define["FLAGS"].(map[string]any)
	if !ok || flags["search"] != true {
		t.Fatalf("got %#v", cfg.Define["FLAGS"])
	}
	if _, ok := flags["limits"].(map[string]any); !ok {
		t.Fatalf("got %T, want map[string]any", flags["limits"])
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundler.yaml")
	writeFile(t, path, `
entries: [src/*.js]
define:
  NODE_ENV: '"production"'
  NESTED:
    a: 1
inject:
  my:
    from: mock-lib
    named: named
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Define["NODE_ENV"] != `"production"` {
		t.Fatalf("got %v", cfg.Define["NODE_ENV"])
	}
	if _, ok := cfg.Define["NESTED"].(map[string]any); !ok {
		t.Fatalf("got %T, want map[string]any", cfg.Define["NESTED"])
	}
	if got := cfg.Inject["my"]; got.From != "mock-lib" || got.Named != "named" {
		t.Fatalf("got %+v", got)
	}
}

func TestFindWalksUp(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bundler.yml"), "entries: [a.js]\n")
	nested := filepath.Join(dir, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(dir, "bundler.yml") {
		t.Fatalf("got %q", path)
	}
}

func TestDiscoverDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" || cfg.OutDir != "dist" || cfg.Jobs <= 0 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestDefinesMergeEnvFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "APP_NAME=demo\nAPP_MODE=dev\nSECRET=x\n")
	writeFile(t, filepath.Join(dir, ".env.local"), "APP_MODE=local\n")
	cfg := Default(dir)
	cfg.EnvFiles = []string{".env", ".env.local", ".env.missing"}
	cfg.EnvPrefix = "APP_"
	cfg.Define["APP_NAME"] = `"explicit"`

	defs, err := cfg.Defines()
	if err != nil {
		t.Fatal(err)
	}
	if defs["APP_NAME"] != `"explicit"` {
		t.Fatalf("got %v, want explicit define to win", defs["APP_NAME"])
	}
	if defs["APP_MODE"] != `"local"` {
		t.Fatalf("got %v, want later file to win", defs["APP_MODE"])
	}
	if _, ok := defs["SECRET"]; ok {
		t.Fatalf("unprefixed key leaked")
	}
}

func TestResolveEntries(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"src/a.js", "src/b.ts", "src/nested/c.js", "other.js"} {
		writeFile(t, filepath.Join(dir, f), "")
	}
	cfg := Default(dir)
	got, err := cfg.ResolveEntries([]string{"src/**/*.js", "other.js", "src/a.js"})
	if err != nil {
		t.Fatal(err)
	}
	root := filepath.ToSlash(dir)
	want := []string{root + "/other.js", root + "/src/a.js", root + "/src/nested/c.js"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := cfg.ResolveEntries([]string{"missing.js"}); err == nil {
		t.Fatalf("expected error for missing entry")
	}
	if _, err := cfg.ResolveEntries(nil); err != ErrNoEntries {
		t.Fatalf("got %v, want ErrNoEntries", err)
	}
}

// Package config loads bundler.toml or bundler.yaml and the .env files it names.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"bundler/internal/inject"
)

// FileNames are searched in order in each directory while walking up.
var FileNames = []string{"bundler.toml", "bundler.yaml", "bundler.yml"}

var (
	ErrNoConfig      = errors.New("no bundler config found")
	ErrNoEntries     = errors.New("no entries configured")
	ErrUnknownFormat = errors.New("unknown config format")
)

// Config is the decoded project configuration. Define values keep the types
// produced by the decoder; define.Build accepts all of them.
type Config struct {
	Entries   []string                 `toml:"entries" yaml:"entries"`
	OutDir    string                   `toml:"out_dir" yaml:"out_dir"`
	Jobs      int                      `toml:"jobs" yaml:"jobs"`
	EnvFiles  []string                 `toml:"env_files" yaml:"env_files"`
	EnvPrefix string                   `toml:"env_prefix" yaml:"env_prefix"`
	CacheDir  string                   `toml:"cache_dir" yaml:"cache_dir"`
	Define    map[string]any           `toml:"define" yaml:"define"`
	Inject    map[string]inject.Config `toml:"inject" yaml:"inject"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-" yaml:"-"`
	// Root is the directory relative paths are resolved against.
	Root string `toml:"-" yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default(root string) *Config {
	return &Config{
		OutDir:   "dist",
		Jobs:     runtime.GOMAXPROCS(0),
		EnvFiles: []string{".env"},
		Define:   map[string]any{},
		Inject:   map[string]inject.Config{},
		Root:     root,
	}
}

// Find walks up from startDir to locate a config file.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes the config file at path. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	cfg := Default(filepath.Dir(abs))
	cfg.Path = abs

	switch strings.ToLower(filepath.Ext(abs)) {
	case ".toml":
		if err := loadTOML(abs, cfg); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := loadYAML(abs, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: %w", abs, ErrUnknownFormat)
	}
	cfg.Define = normalizeMap(cfg.Define)
	if cfg.Jobs <= 0 {
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}

// Discover finds and loads the config above startDir, falling back to
// defaults rooted at startDir.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		root, err := filepath.Abs(startDir)
		if err != nil {
			return nil, err
		}
		return Default(root), nil
	}
	return Load(path)
}

func loadTOML(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("env_files") {
		cfg.EnvFiles = []string{".env"}
	}
	// define values decode into map[string]any, so their nested keys show up
	// as undecoded
	for _, key := range meta.Undecoded() {
		if len(key) > 0 && key[0] == "define" {
			continue
		}
		return fmt.Errorf("%s: unknown key %q", path, key.String())
	}
	return nil
}

func loadYAML(path string, cfg *Config) error {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	return nil
}

// Abs resolves p against the config root.
func (c *Config) Abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}

// normalizeMap converts decoder-specific containers into []any and
// map[string]any so define.Build sees a single shape.
func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return normalizeMap(x)
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[fmt.Sprint(k)] = normalizeValue(vv)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = normalizeMap(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = normalizeValue(vv)
		}
		return out
	default:
		return v
	}
}

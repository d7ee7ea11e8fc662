package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveEntries expands entry patterns relative to the config root. Plain
// paths must exist; glob patterns may match nothing. The result holds
// absolute slash paths, sorted and without duplicates. When patterns is empty
// the configured entries are used.
func (c *Config) ResolveEntries(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = c.Entries
	}
	if len(patterns) == 0 {
		return nil, ErrNoEntries
	}
	fsys := os.DirFS(c.Root)
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		p = filepath.ToSlash(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("entry %q: %w", pattern, doublestar.ErrBadPattern)
		}
		if !hasMeta(pattern) {
			p := c.Abs(pattern)
			info, err := os.Stat(p)
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", pattern, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("entry %q is a directory", pattern)
			}
			add(p)
			continue
		}
		if filepath.IsAbs(pattern) {
			rel, err := filepath.Rel(c.Root, pattern)
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", pattern, err)
			}
			pattern = rel
		}
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", pattern, err)
		}
		for _, m := range matches {
			add(filepath.Join(c.Root, filepath.FromSlash(m)))
		}
	}
	slices.Sort(out)
	return out, nil
}

func hasMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

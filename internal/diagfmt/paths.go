package diagfmt

import (
	"path"
	"path/filepath"
	"strings"

	"bundler/internal/source"
)

func formatPath(p string, fs *source.FileSet, mode PathMode) string {
	if p == "" {
		return ""
	}
	base := ""
	if fs != nil {
		base = fs.BaseDir()
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(p); err == nil {
			return filepath.ToSlash(abs)
		}
		return filepath.ToSlash(p)
	case PathModeBasename:
		return path.Base(filepath.ToSlash(p))
	case PathModeRelative:
		if base == "" {
			return filepath.ToSlash(p)
		}
		if rel, err := source.RelativePath(p, base); err == nil {
			return rel
		}
		return filepath.ToSlash(p)
	default:
		if base != "" {
			if rel, err := source.RelativePath(p, base); err == nil && !strings.HasPrefix(rel, "..") {
				return rel
			}
		}
		return filepath.ToSlash(p)
	}
}

// lookup returns the loaded file a diagnostic points at, or nil.
func lookup(fs *source.FileSet, p string) *source.File {
	if fs == nil || p == "" {
		return nil
	}
	f, _ := fs.GetByPath(p)
	return f
}

// Package resolve maps import specifiers to module IDs.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"bundler/internal/module"
)

// ErrUnresolved is returned when a relative or absolute specifier matches no file.
var ErrUnresolved = errors.New("cannot resolve module")

// Extensions are probed in order when a specifier has no file on disk as written.
var Extensions = []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx", ".mts", ".cts", ".json"}

const defaultCacheSize = 4096

// UnresolvedError describes a failed lookup.
type UnresolvedError struct {
	Specifier string
	Importer  string
	Tried     []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("cannot resolve %q from %s", e.Specifier, e.Importer)
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolved }

type cacheKey struct {
	dir  string
	spec string
}

// Resolver resolves specifiers relative to importing modules. It is safe for
// concurrent use; lookups are memoized until Forget or Reset.
type Resolver struct {
	Extensions []string

	isFile func(string) bool
	cache  *lru.Cache[cacheKey, module.ID]
}

// New returns a resolver probing the default extensions on the OS filesystem.
func New() *Resolver {
	return NewWithStat(isRegularFile)
}

// NewWithStat returns a resolver that asks isFile whether a candidate exists.
func NewWithStat(isFile func(string) bool) *Resolver {
	cache, err := lru.New[cacheKey, module.ID](defaultCacheSize)
	if err != nil {
		panic(err)
	}
	return &Resolver{Extensions: Extensions, isFile: isFile, cache: cache}
}

func isRegularFile(p string) bool {
	info, err := os.Stat(filepath.FromSlash(p))
	return err == nil && info.Mode().IsRegular()
}

// IsBare reports whether spec names a package rather than a path.
func IsBare(spec string) bool {
	if spec == "" {
		return false
	}
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." {
		return false
	}
	return !strings.HasPrefix(spec, "/") && !filepath.IsAbs(spec)
}

// Resolve maps spec, imported from the module at importer, to a module ID.
// Bare specifiers become external IDs without touching the filesystem.
func (r *Resolver) Resolve(importer, spec string) (module.ID, error) {
	if IsBare(spec) {
		return module.External(spec), nil
	}
	dir := path.Dir(filepath.ToSlash(importer))
	key := cacheKey{dir: dir, spec: spec}
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}

	base := filepath.ToSlash(spec)
	if !path.IsAbs(base) && !filepath.IsAbs(spec) {
		base = path.Join(dir, base)
	}
	base = path.Clean(base)

	candidates := r.Candidates(base)
	for _, c := range candidates {
		if r.isFile(c) {
			id := module.ID(c)
			r.cache.Add(key, id)
			return id, nil
		}
	}
	return "", &UnresolvedError{Specifier: spec, Importer: importer, Tried: candidates}
}

// Candidates lists the paths probed for base: the path itself, base with
// each extension, then base/index with each extension.
func (r *Resolver) Candidates(base string) []string {
	out := make([]string, 0, 1+2*len(r.Extensions))
	out = append(out, base)
	for _, ext := range r.Extensions {
		out = append(out, base+ext)
	}
	for _, ext := range r.Extensions {
		out = append(out, path.Join(base, "index"+ext))
	}
	return out
}

// Reset drops every memoized lookup. Call it after files are added or removed.
func (r *Resolver) Reset() {
	r.cache.Purge()
}

// Cached reports the number of memoized lookups.
func (r *Resolver) Cached() int {
	return r.cache.Len()
}

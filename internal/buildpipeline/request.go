// Package buildpipeline turns entry files into a module graph of transformed
// modules.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp/syntax"

	"bundler/internal/cache"
	"bundler/internal/config"
	"bundler/internal/define"
	"bundler/internal/diag"
	"bundler/internal/graph"
	"bundler/internal/inject"
	"bundler/internal/module"
	"bundler/internal/resolve"
	"bundler/internal/source"
)

var (
	// ErrBuildFailed is returned alongside a Result whose Bag holds errors.
	ErrBuildFailed = errors.New("build failed")
	// ErrInvalidConfig wraps define and inject configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoEntries is returned when a request names no entry module.
	ErrNoEntries = errors.New("no entry modules")
)

// GraphError reports an inconsistency while committing a module or edge.
type GraphError struct {
	Module module.ID
	Err    error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph: %s: %v", e.Module, e.Err)
}

func (e *GraphError) Unwrap() error { return e.Err }

// Request configures a build.
type Request struct {
	// Root is the directory relative paths are shown against.
	Root string
	// Entries are paths of entry modules.
	Entries []string

	Define *define.Map
	Inject *inject.Table

	// Jobs bounds concurrent module tasks; <= 0 means GOMAXPROCS.
	Jobs int
	// Cache is optional.
	Cache *cache.Cache
	// Progress is optional.
	Progress       ProgressSink
	MaxDiagnostics int

	// Resolver defaults to one probing the OS filesystem.
	Resolver *resolve.Resolver
}

// Result is the outcome of a build or rebuild.
type Result struct {
	Graph   *graph.Graph
	Files   *source.FileSet
	Bag     *diag.Bag
	Order   *graph.Topo
	Timings Timings
	Modules int
	// Processed counts modules transformed by this call, cache hits included.
	Processed int
	CacheHits int
}

// FromConfig compiles the define and inject settings of cfg into a request.
// Configuration problems come back as diagnostics in the returned bag and an
// error wrapping ErrInvalidConfig; nothing is scheduled in that case.
func FromConfig(ctx context.Context, cfg *config.Config, entries []string) (*Request, *diag.Bag, error) {
	bag := diag.NewBag(0)
	path := cfg.Path
	if path == "" {
		path = filepath.Join(cfg.Root, config.FileNames[0])
	}

	values, err := cfg.Defines()
	if err != nil {
		bag.Add(diag.Errorf(diag.CfgInvalid, path, "%v", err))
		return nil, bag, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	env, err := define.Build(ctx, values)
	if err != nil {
		bag.Add(configDiagnostic(path, err))
		return nil, bag, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	table, err := inject.Compile(cfg.Inject)
	if err != nil {
		bag.Add(configDiagnostic(path, err))
		return nil, bag, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	resolved, err := cfg.ResolveEntries(entries)
	if err != nil {
		code := diag.CfgInvalid
		if errors.Is(err, config.ErrNoEntries) {
			code = diag.CfgNoEntries
		}
		bag.Add(diag.Errorf(code, path, "%v", err))
		return nil, bag, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &Request{
		Root:           cfg.Root,
		Entries:        resolved,
		Define:         env,
		Inject:         table,
		Jobs:           cfg.Jobs,
		MaxDiagnostics: 0,
	}, bag, nil
}

func configDiagnostic(path string, err error) diag.Diagnostic {
	code := diag.CfgInvalid
	switch {
	case errors.Is(err, define.ErrInvalidDefine):
		code = diag.CfgInvalidDefine
	case errors.Is(err, inject.ErrConflictingSelectors):
		code = diag.CfgConflictingInject
	case errors.As(err, new(*syntax.Error)):
		code = diag.CfgBadPattern
	}
	return diag.Errorf(code, path, "%v", err)
}

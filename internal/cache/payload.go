// Package cache keeps transformed modules keyed by content and build settings.
package cache

import (
	"bundler/internal/module"
	"bundler/internal/source"
)

// Current schema version; increment when Payload changes shape.
const schemaVersion uint16 = 1

// Dep is a dependency without its span.
type Dep struct {
	Specifier string
	Order     int
	Kind      uint8
}

// Payload is the cached output of the per-module passes.
type Payload struct {
	Schema   uint16
	Path     string
	Code     string
	Format   uint8
	Injected []string
	Deps     []Dep

	// Replaced counts define substitutions, kept for tracing.
	Replaced int
}

// Key derives the cache key of a module from its content hash, its path and
// the fingerprints of the define and inject settings.
func Key(content source.Digest, path string, salts ...string) source.Digest {
	extra := make([][]byte, 0, len(salts)+1)
	extra = append(extra, []byte(path))
	for _, s := range salts {
		extra = append(extra, []byte(s))
	}
	return source.Combine(content, extra...)
}

// FromModule captures the transformed state of m.
func FromModule(m *module.Module, replaced int) *Payload {
	p := &Payload{
		Schema:   schemaVersion,
		Path:     m.Path,
		Code:     m.Code,
		Format:   uint8(m.Format),
		Injected: m.Injected,
		Replaced: replaced,
		Deps:     make([]Dep, len(m.Deps)),
	}
	for i, d := range m.Deps {
		p.Deps[i] = Dep{Specifier: d.Specifier, Order: d.Order, Kind: uint8(d.Kind)}
	}
	return p
}

// Apply restores the cached state into m. Spans of dependencies are not
// cached and come back empty.
func (p *Payload) Apply(m *module.Module) {
	m.Code = p.Code
	m.Format = module.Format(p.Format)
	m.Injected = p.Injected
	m.Deps = make([]module.Dependency, len(p.Deps))
	for i, d := range p.Deps {
		m.Deps[i] = module.Dependency{Specifier: d.Specifier, Order: d.Order, Kind: module.DependencyKind(d.Kind)}
	}
}

func (p *Payload) valid() bool {
	return p != nil && p.Schema == schemaVersion
}

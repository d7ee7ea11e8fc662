// Package module defines the unit of compilation shared by the passes and the
// dependency graph.
package module

import (
	"strings"

	"bundler/internal/ast"
	"bundler/internal/source"
	"bundler/internal/symbols"
)

// ID identifies a module: an absolute slash-separated path for files on disk,
// or ExternalPrefix followed by the specifier for bare imports left to the runtime.
type ID string

// ExternalPrefix marks modules that are not loaded from disk.
const ExternalPrefix = "external:"

// External builds the ID of a bare specifier.
func External(specifier string) ID {
	return ID(ExternalPrefix + specifier)
}

// IsExternal reports whether id names an external module.
func (id ID) IsExternal() bool {
	return strings.HasPrefix(string(id), ExternalPrefix)
}

func (id ID) String() string { return string(id) }

// Format is the module system a module is written in.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatESM
	FormatCJS
)

func (f Format) String() string {
	switch f {
	case FormatESM:
		return "esm"
	case FormatCJS:
		return "cjs"
	default:
		return "unknown"
	}
}

// DependencyKind classifies how a module refers to another one.
type DependencyKind uint8

const (
	DepImport DependencyKind = iota
	DepExportFrom
	DepRequire
	DepDynamicImport
)

func (k DependencyKind) String() string {
	switch k {
	case DepImport:
		return "import"
	case DepExportFrom:
		return "export-from"
	case DepRequire:
		return "require"
	case DepDynamicImport:
		return "dynamic-import"
	default:
		return "unknown"
	}
}

// Dependency is one reference from a module to a specifier. Order is the
// position of the reference in the source; the graph sorts edges by it.
type Dependency struct {
	Specifier string
	Order     int
	Kind      DependencyKind
	Span      source.Span
}

// Module holds the parsed and transformed state of one file.
type Module struct {
	ID         ID
	Path       string
	IsEntry    bool
	IsExternal bool

	File     *source.File
	Program  *ast.Node
	Bindings *symbols.Result
	Format   Format

	// ContentHash keys the transform cache.
	ContentHash source.Digest
	Deps        []Dependency
	// Injected lists the names the injection pass imported.
	Injected []string
	// Code is the printed output after all passes.
	Code string
}

// New returns a module for a file on disk.
func New(id ID, path string) *Module {
	return &Module{ID: id, Path: path}
}

// NewExternal returns a placeholder for a bare specifier.
func NewExternal(specifier string) *Module {
	return &Module{ID: External(specifier), Path: specifier, IsExternal: true}
}

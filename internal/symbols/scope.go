package symbols

import (
	"bundler/internal/ast"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeModule             // top level of a file
	ScopeFunction           // parameters and body of a function
	ScopeBlock              // braces, loop heads, switch bodies
	ScopeName               // self-name of a function or class expression
	ScopeCatch              // catch parameter and its body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeName:
		return "name"
	case ScopeCatch:
		return "catch"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent-child hierarchy.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Owner     *ast.Node
	NameIndex map[string]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}

// hoistsVars reports whether var declarations stop at this scope.
func (s *Scope) hoistsVars() bool {
	return s.Kind == ScopeModule || s.Kind == ScopeFunction
}

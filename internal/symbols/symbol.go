package symbols

import (
	"bundler/internal/ast"
)

// SymbolKind classifies the declaration that introduced a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolVar
	SymbolLet
	SymbolConst
	SymbolFunction
	SymbolClass
	SymbolParam
	SymbolImport
	SymbolCatch
	SymbolEnum
	SymbolNamespace
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVar:
		return "var"
	case SymbolLet:
		return "let"
	case SymbolConst:
		return "const"
	case SymbolFunction:
		return "function"
	case SymbolClass:
		return "class"
	case SymbolParam:
		return "param"
	case SymbolImport:
		return "import"
	case SymbolCatch:
		return "catch"
	case SymbolEnum:
		return "enum"
	case SymbolNamespace:
		return "namespace"
	default:
		return "invalid"
	}
}

// Symbol is one declared binding.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Scope ScopeID
	// Decl is the identifier node of the first declaration.
	Decl *ast.Node
}

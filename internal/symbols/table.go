package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates the scope and symbol arenas of one module.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Root    ScopeID
}

// NewTable builds a fresh table with optional capacity hints.
func NewTable(h Hints) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	return &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
	}
}

// TopLevel returns the module-scope symbol declared under name.
func (t *Table) TopLevel(name string) (SymbolID, bool) {
	scope := t.Scopes.Get(t.Root)
	if scope == nil {
		return NoSymbolID, false
	}
	id, ok := scope.NameIndex[name]
	return id, ok
}

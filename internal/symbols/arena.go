package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"bundler/internal/ast"
)

// arena is a slice whose slot 0 is a reserved sentinel, so the zero ID of
// every arena means "none".
type arena[T any] struct {
	data []T
}

func newArena[T any](capacity uint32) arena[T] {
	return arena[T]{data: make([]T, 1, capacity+1)}
}

func (a *arena[T]) push(v T, what string) uint32 {
	idx, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", what, err))
	}
	a.data = append(a.data, v)
	return idx
}

func (a *arena[T]) at(idx uint32) *T {
	if idx == 0 || int(idx) >= len(a.data) {
		return nil
	}
	return &a.data[idx]
}

// Len reports the number of allocated entries, sentinel excluded.
func (a *arena[T]) Len() int { return len(a.data) - 1 }

// Scopes is the scope arena of one module.
type Scopes struct {
	arena[Scope]
}

// NewScopes creates a scope arena. capacity is a hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{newArena[Scope](capacity)}
}

// New opens a scope under parent and links it into the parent's children.
// owner is the node that introduced the scope.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, owner *ast.Node) ScopeID {
	id := ScopeID(s.push(Scope{
		Kind:      kind,
		Parent:    parent,
		Owner:     owner,
		NameIndex: make(map[string]SymbolID),
	}, "scopes"))
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns the scope, or nil for NoScopeID and unknown IDs.
func (s *Scopes) Get(id ScopeID) *Scope { return s.at(uint32(id)) }

// Symbols is the declaration arena of one module.
type Symbols struct {
	arena[Symbol]
}

// NewSymbols creates a symbol arena. capacity is a hint.
func NewSymbols(capacity uint32) *Symbols {
	if capacity == 0 {
		capacity = 64
	}
	return &Symbols{newArena[Symbol](capacity)}
}

// New stores sym and returns its ID, which is also the scope tag of every
// identifier bound to it.
func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols.New: nil symbol")
	}
	return SymbolID(s.push(*sym, "symbols"))
}

// Get returns the symbol, or nil for NoSymbolID and unknown IDs.
func (s *Symbols) Get(id SymbolID) *Symbol { return s.at(uint32(id)) }

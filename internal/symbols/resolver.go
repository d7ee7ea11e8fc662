package symbols

import (
	"bundler/internal/ast"
)

// Resolver drives scope management and declaration/lookup routines.
type Resolver struct {
	table *Table
	stack []ScopeID
}

// NewResolver wires a resolver to table. If root is valid it becomes the
// current scope; otherwise scope-sensitive operations are no-ops.
func NewResolver(table *Table, root ScopeID) *Resolver {
	r := &Resolver{
		table: table,
		stack: make([]ScopeID, 0, 8),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
	}
	return r
}

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, owner *ast.Node) ScopeID {
	scope := r.table.Scopes.New(kind, r.CurrentScope(), owner)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope. A mismatch with expected is a resolver bug.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	if expected.IsValid() && top != expected {
		panic("symbols: scope stack mismatch")
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs name into scopeID. Redeclaring a name in the same scope
// reuses the existing symbol, which is how var and function redeclarations
// behave at run time.
func (r *Resolver) Declare(scopeID ScopeID, name string, kind SymbolKind, decl *ast.Node) SymbolID {
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID
	}
	if existing, ok := scope.NameIndex[name]; ok {
		return existing
	}
	id := r.table.Symbols.New(&Symbol{
		Name:  name,
		Kind:  kind,
		Scope: scopeID,
		Decl:  decl,
	})
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[name] = id
	return id
}

// Lookup walks the scope chain searching for a symbol with the given name.
func (r *Resolver) Lookup(name string) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	for scopeID.IsValid() {
		scope := r.table.Scopes.Get(scopeID)
		if scope == nil {
			break
		}
		if id, ok := scope.NameIndex[name]; ok {
			return id, true
		}
		scopeID = scope.Parent
	}
	return NoSymbolID, false
}

// varScope returns the nearest enclosing function or module scope.
func (r *Resolver) varScope() ScopeID {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if scope := r.table.Scopes.Get(r.stack[i]); scope != nil && scope.hoistsVars() {
			return r.stack[i]
		}
	}
	return NoScopeID
}

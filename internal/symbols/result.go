package symbols

import (
	"slices"

	"bundler/internal/ast"
)

// Result is the binding side-table of one module: every identifier the
// resolver visited carries a scope tag.
type Result struct {
	Table    *Table
	bindings map[*ast.Node]SymbolID
	free     map[*ast.Node]struct{}
	// Free lists identifier references that resolved to no declaration, in
	// source order.
	Free []*ast.Node
}

func newResult(table *Table) *Result {
	return &Result{
		Table:    table,
		bindings: make(map[*ast.Node]SymbolID),
		free:     make(map[*ast.Node]struct{}),
	}
}

// Tag returns the scope tag of an identifier node. Nodes the resolver never
// saw, such as synthesized ones, are free unless Bind was called for them.
func (r *Result) Tag(n *ast.Node) SymbolID {
	if r == nil {
		return NoSymbolID
	}
	return r.bindings[n]
}

// IsFree reports whether n refers to no declaration in the module.
func (r *Result) IsFree(n *ast.Node) bool {
	return !r.Tag(n).IsValid()
}

// IsFreeReference reports whether n is a reference the resolver visited and
// found no declaration for. Identifiers in declaration-free positions such as
// export aliases or synthesized nodes are not references.
func (r *Result) IsFreeReference(n *ast.Node) bool {
	if r == nil {
		return false
	}
	_, ok := r.free[n]
	return ok
}

// Bind stamps a tag on a node, typically one synthesized by a pass.
func (r *Result) Bind(n *ast.Node, tag SymbolID) {
	if tag.IsValid() {
		r.bindings[n] = tag
		delete(r.free, n)
		return
	}
	delete(r.bindings, n)
}

// SameBinding reports whether a and b name the same declaration. Two free
// identifiers never share a binding.
func (r *Result) SameBinding(a, b *ast.Node) bool {
	ta := r.Tag(a)
	return ta.IsValid() && ta == r.Tag(b)
}

// Symbol returns the declaration record behind n, if any.
func (r *Result) Symbol(n *ast.Node) *Symbol {
	if r == nil || r.Table == nil {
		return nil
	}
	return r.Table.Symbols.Get(r.Tag(n))
}

// FreeNames returns the distinct names of free references, sorted.
func (r *Result) FreeNames() []string {
	seen := make(map[string]struct{}, len(r.Free))
	out := make([]string, 0, len(r.Free))
	for _, n := range r.Free {
		name := n.Text()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

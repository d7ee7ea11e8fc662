// Package symbols resolves JavaScript bindings: every identifier of a module
// gets a scope tag naming the declaration it refers to, or the free tag.
package symbols

import (
	"bundler/internal/ast"
)

// Resolve builds the binding table of program and tags its identifiers.
// It never fails: names without a visible declaration are recorded as free.
func Resolve(program *ast.Node) *Result {
	table := NewTable(Hints{})
	w := &walker{
		res:    NewResolver(table, NoScopeID),
		result: newResult(table),
	}
	root := w.res.Enter(ScopeModule, program)
	table.Root = root
	w.hoistVars(program, root)
	w.hoistLexical(program.Children, root)
	w.children(program)
	w.res.Leave(root)
	return w.result
}

type walker struct {
	res    *Resolver
	result *Result
}

func (w *walker) children(n *ast.Node) {
	for _, c := range n.Children {
		w.visit(c)
	}
}

func (w *walker) visit(n *ast.Node) {
	if n == nil || !n.Named {
		return
	}
	if _, skip := typeOnly[n.Kind]; skip {
		return
	}
	switch n.Kind {
	case ast.KindIdentifier, ast.KindShorthandProperty, ast.KindShorthandPattern:
		w.reference(n)
	case "class":
		w.classExpression(n)
	case "statement_block", "class_static_block":
		w.block(n)
	case "for_statement", ast.KindForIn:
		w.loop(n)
	case "catch_clause":
		w.catchClause(n)
	case "switch_body":
		w.switchBody(n)
	case ast.KindImportStatement:
		w.importStatement(n)
	case ast.KindExportStatement:
		w.exportStatement(n)
	case "as_expression", "satisfies_expression", "type_assertion":
		// only the value operand; the rest is type syntax
		for _, c := range n.NamedChildren() {
			if c.Kind != "type_arguments" {
				w.visit(c)
				return
			}
		}
	case "jsx_opening_element", "jsx_closing_element", "jsx_self_closing_element":
		w.jsxElement(n)
	default:
		if isFunctionKind(n.Kind) {
			w.function(n)
			return
		}
		w.children(n)
	}
}

func (w *walker) reference(n *ast.Node) {
	if id, ok := w.res.Lookup(n.Text()); ok {
		w.result.bindings[n] = id
		return
	}
	w.result.Free = append(w.result.Free, n)
	w.result.free[n] = struct{}{}
}

func (w *walker) function(n *ast.Node) {
	name := n.ChildByField(ast.FieldName)
	nameScope := NoScopeID
	if isFunctionExpression(n.Kind) && name != nil && name.Kind == ast.KindIdentifier {
		nameScope = w.res.Enter(ScopeName, n)
		w.res.Declare(nameScope, name.Text(), SymbolFunction, name)
	}
	if name != nil {
		w.visit(name)
	}

	scope := w.res.Enter(ScopeFunction, n)
	w.declarePattern(scope, n.ChildByField(ast.FieldParams), SymbolParam)
	w.declarePattern(scope, n.ChildByField(ast.FieldParameter), SymbolParam)
	body := n.ChildByField(ast.FieldBody)
	inlineBody := body != nil && body.Kind == "statement_block"
	for _, c := range n.Children {
		if c != name && (c != body || !inlineBody) {
			w.visit(c)
		}
	}
	// parameter defaults cannot see declarations of the body, so the body
	// is hoisted only once the parameters are resolved
	if inlineBody {
		w.hoistVars(body, scope)
		w.hoistLexical(body.Children, scope)
		w.children(body)
	}
	w.res.Leave(scope)
	if nameScope.IsValid() {
		w.res.Leave(nameScope)
	}
}

func (w *walker) classExpression(n *ast.Node) {
	name := n.ChildByField(ast.FieldName)
	if name == nil || name.Kind != ast.KindIdentifier {
		w.children(n)
		return
	}
	scope := w.res.Enter(ScopeName, n)
	w.res.Declare(scope, name.Text(), SymbolClass, name)
	w.children(n)
	w.res.Leave(scope)
}

func (w *walker) block(n *ast.Node) {
	scope := w.res.Enter(ScopeBlock, n)
	w.hoistLexical(n.Children, scope)
	w.children(n)
	w.res.Leave(scope)
}

func (w *walker) loop(n *ast.Node) {
	scope := w.res.Enter(ScopeBlock, n)
	if n.Kind == ast.KindForIn {
		if kind := n.ChildByField(ast.FieldKind); kind != nil {
			switch kind.Kind {
			case "let":
				w.declarePattern(scope, n.ChildByField(ast.FieldLeft), SymbolLet)
			case "const":
				w.declarePattern(scope, n.ChildByField(ast.FieldLeft), SymbolConst)
			}
		}
	} else {
		w.hoistLexical(n.Children, scope)
	}
	w.children(n)
	w.res.Leave(scope)
}

func (w *walker) catchClause(n *ast.Node) {
	scope := w.res.Enter(ScopeCatch, n)
	w.declarePattern(scope, n.ChildByField(ast.FieldParameter), SymbolCatch)
	body := n.ChildByField(ast.FieldBody)
	if body != nil {
		w.hoistLexical(body.Children, scope)
	}
	for _, c := range n.Children {
		if c == body {
			w.children(body)
			continue
		}
		w.visit(c)
	}
	w.res.Leave(scope)
}

func (w *walker) switchBody(n *ast.Node) {
	scope := w.res.Enter(ScopeBlock, n)
	for _, c := range n.NamedChildren() {
		w.hoistLexical(c.Children, scope)
	}
	w.children(n)
	w.res.Leave(scope)
}

func (w *walker) importStatement(n *ast.Node) {
	if n.HasToken("type") {
		return
	}
	for _, clause := range n.NamedChildren() {
		if clause.Kind != ast.KindImportClause {
			continue
		}
		for _, part := range clause.NamedChildren() {
			switch part.Kind {
			case ast.KindIdentifier:
				w.reference(part)
			case ast.KindNamespaceImport:
				w.visit(part.FirstNamed())
			case ast.KindNamedImports:
				for _, spec := range part.NamedChildren() {
					if spec.Kind != ast.KindImportSpecifier || spec.HasToken("type") {
						continue
					}
					local := spec.ChildByField(ast.FieldAlias)
					if local == nil {
						local = spec.ChildByField(ast.FieldName)
					}
					w.visit(local)
				}
			}
		}
	}
}

func (w *walker) exportStatement(n *ast.Node) {
	if n.ChildByField(ast.FieldSource) != nil || n.HasToken("type") {
		// re-exports name bindings of another module
		return
	}
	for _, c := range n.Children {
		if c.Kind != ast.KindExportClause {
			w.visit(c)
			continue
		}
		for _, spec := range c.NamedChildren() {
			if spec.Kind != ast.KindExportSpecifier {
				continue
			}
			// the alias is an exported name, not a reference
			if name := spec.ChildByField(ast.FieldName); name != nil && name.Kind == ast.KindIdentifier {
				w.reference(name)
			}
		}
	}
}

func (w *walker) jsxElement(n *ast.Node) {
	for _, c := range n.Children {
		if c.Field != ast.FieldName {
			w.visit(c)
			continue
		}
		switch c.Kind {
		case ast.KindIdentifier:
			if IsComponentName(c.Text()) {
				w.reference(c)
			}
		case "nested_identifier":
			w.visit(leftmost(c))
		case ast.KindMember:
			w.visit(c)
		}
	}
}

// IsComponentName reports whether a JSX tag name refers to a binding rather
// than an intrinsic element such as <div>.
func IsComponentName(name string) bool {
	if name == "" {
		return false
	}
	return name[0] < 'a' || name[0] > 'z'
}

func leftmost(n *ast.Node) *ast.Node {
	for n != nil && n.Kind == "nested_identifier" {
		n = n.FirstNamed()
	}
	return n
}

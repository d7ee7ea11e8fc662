package inject

import (
	"bundler/internal/ast"
	"bundler/internal/module"
	"bundler/internal/symbols"
)

// Result describes what one Apply call did.
type Result struct {
	// Injected lists the names that received a statement, in statement order.
	Injected []string
	Format   module.Format
}

type pendingKey struct {
	name string
	tag  symbols.SymbolID
}

// Injector runs the injection pass over one module.
type Injector struct {
	Table    *Table
	Bindings *symbols.Result
}

// Inject runs an Injector over program.
func Inject(program *ast.Node, bindings *symbols.Result, table *Table, modulePath string) Result {
	in := Injector{Table: table, Bindings: bindings}
	return in.Apply(program, modulePath)
}

// Apply finds free references to watched names and prepends one import per
// name. Each rule fires at most once per module. CommonJS modules and rules
// with PreferRequire get `var name = require(from)...`; ES modules get an
// import declaration.
func (in *Injector) Apply(program *ast.Node, modulePath string) Result {
	res := Result{Format: Classify(program)}
	watch := in.Table.active(modulePath)
	if len(watch) == 0 {
		return res
	}

	var order []pendingKey
	pending := make(map[pendingKey]*Spec)
	ast.Walk(program, func(n, _ *ast.Node) bool {
		if len(watch) == 0 {
			return false
		}
		if n.Kind == ast.KindExportStatement && n.ChildByField(ast.FieldSource) != nil {
			return false
		}
		// only nodes the resolver visited as references are candidates, which
		// leaves out export aliases, property names and declarations
		if !in.Bindings.IsFreeReference(n) {
			return true
		}
		name := n.Text()
		spec, ok := watch[name]
		if !ok {
			return true
		}
		delete(watch, name)
		key := pendingKey{name: name, tag: in.Bindings.Tag(n)}
		if _, dup := pending[key]; !dup {
			pending[key] = spec
			order = append(order, key)
		}
		return true
	})
	if len(order) == 0 {
		return res
	}

	at := insertionPoint(program)
	for i, key := range order {
		spec := pending[key]
		ast.Insert(program, at+i, statement(spec, res.Format))
		res.Injected = append(res.Injected, spec.Name)
	}
	return res
}

// insertionPoint is the index after a hashbang line and the directive
// prologue, so "use strict" keeps its meaning.
func insertionPoint(program *ast.Node) int {
	at := 0
	for i, c := range program.Children {
		switch {
		case i == 0 && c.Kind == ast.KindHashBang:
			at = 1
		case c.Kind == ast.KindComment:
		case isDirective(c):
			at = i + 1
		default:
			return at
		}
	}
	return at
}

func isDirective(stmt *ast.Node) bool {
	if stmt.Kind != ast.KindExpressionStatement {
		return false
	}
	named := stmt.NamedChildren()
	return len(named) == 1 && named[0].Kind == ast.KindString
}

// Classify reports ESM when the top level holds an import or export
// declaration and CommonJS otherwise.
func Classify(program *ast.Node) module.Format {
	for _, c := range program.Children {
		if c.Kind == ast.KindImportStatement || c.Kind == ast.KindExportStatement {
			return module.FormatESM
		}
	}
	return module.FormatCJS
}

func statement(spec *Spec, format module.Format) *ast.Node {
	if format == module.FormatCJS || spec.PreferRequire {
		init := ast.Require(spec.From)
		switch {
		case spec.Namespace:
		case spec.Named != "":
			init = property(init, spec.Named)
		default:
			init = ast.Member(init, "default")
		}
		return ast.VarDecl(spec.Name, init)
	}
	switch {
	case spec.Namespace:
		return ast.ImportNamespace(spec.Name, spec.From)
	case spec.Named != "":
		return ast.ImportNamed(spec.Named, spec.Name, spec.From)
	default:
		return ast.ImportDefault(spec.Name, spec.From)
	}
}

func property(object *ast.Node, name string) *ast.Node {
	if ast.IsIdentifierName(name) {
		return ast.Member(object, name)
	}
	return ast.Index(object, name)
}

// Package deps lists the module specifiers a program depends on.
package deps

import (
	"bundler/internal/ast"
	"bundler/internal/module"
	"bundler/internal/symbols"
)

// Analyze returns the dependencies of program in source order: static imports,
// re-exports, require calls whose callee is the free require, and dynamic
// imports with a literal specifier. Order numbers follow that sequence.
func Analyze(program *ast.Node, bindings *symbols.Result) []module.Dependency {
	a := analyzer{bindings: bindings}
	ast.Walk(program, a.visit)
	return a.out
}

type analyzer struct {
	bindings *symbols.Result
	out      []module.Dependency
}

func (a *analyzer) add(spec *ast.Node, kind module.DependencyKind, at *ast.Node) {
	value, ok := ast.StringValue(spec)
	if !ok {
		return
	}
	a.out = append(a.out, module.Dependency{
		Specifier: value,
		Order:     len(a.out),
		Kind:      kind,
		Span:      at.Span(),
	})
}

func (a *analyzer) visit(n, _ *ast.Node) bool {
	switch n.Kind {
	case ast.KindImportStatement:
		if !n.HasToken("type") {
			a.add(n.ChildByField(ast.FieldSource), module.DepImport, n)
		}
		return false
	case ast.KindExportStatement:
		if src := n.ChildByField(ast.FieldSource); src != nil {
			if !n.HasToken("type") {
				a.add(src, module.DepExportFrom, n)
			}
			return false
		}
	case ast.KindCall:
		callee := ast.Unparen(n.ChildByField(ast.FieldFunction))
		arg := firstArgument(n)
		switch {
		case callee == nil || arg == nil:
		case callee.Kind == ast.KindImport:
			a.add(arg, module.DepDynamicImport, n)
		case callee.Kind == ast.KindIdentifier && callee.Text() == "require" && a.bindings.IsFree(callee):
			a.add(arg, module.DepRequire, n)
		}
	}
	return true
}

func firstArgument(call *ast.Node) *ast.Node {
	args := call.ChildByField(ast.FieldArguments)
	if args == nil || args.Kind != ast.KindArguments {
		return nil
	}
	return args.FirstNamed()
}

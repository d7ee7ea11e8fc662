package parser

import (
	"context"
	"errors"

	"bundler/internal/ast"
	"bundler/internal/source"
)

// ErrNotExpression is returned when a snippet is not exactly one expression.
var ErrNotExpression = errors.New("not an expression")

// ParseExpression parses src as a single JavaScript expression. The source must
// form exactly one expression statement; `{a: 1}` is a block, not an object,
// while `({a: 1})` is an object.
func ParseExpression(ctx context.Context, name, src string) (*ast.Node, error) {
	file := source.NewVirtualFile(name, []byte(src))
	root, err := ParseAs(ctx, file, JavaScript)
	if err != nil {
		return nil, err
	}
	var stmt *ast.Node
	for _, c := range root.NamedChildren() {
		if c.Kind == ast.KindComment {
			continue
		}
		if stmt != nil || c.Kind != ast.KindExpressionStatement {
			return nil, ErrNotExpression
		}
		stmt = c
	}
	if stmt == nil {
		return nil, ErrNotExpression
	}
	expr := stmt.FirstNamed()
	if expr == nil || startsAsDeclaration(stmt) {
		return nil, ErrNotExpression
	}
	expr.Field = ""
	return expr, nil
}

// startsAsDeclaration reports whether the leftmost expression of stmt is an
// object, function or class. JavaScript reads those at statement start as a
// block or a declaration, so `{a: 1}` and `function(){}` are not expression
// statements even though the grammar recovers them as such.
func startsAsDeclaration(stmt *ast.Node) bool {
	for n := stmt.FirstNamed(); n != nil && n.Start == stmt.Start; {
		switch n.Kind {
		case ast.KindObject, "function", "function_expression", "generator_function", "class":
			return true
		}
		if len(n.Children) == 0 {
			break
		}
		n = n.Children[0]
	}
	return false
}

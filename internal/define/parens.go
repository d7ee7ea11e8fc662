package define

import (
	"bundler/internal/ast"
)

// wrap parenthesizes repl when printing it in place of the child at field of
// parent would change how the surrounding code parses.
func wrap(repl, parent *ast.Node, field string) *ast.Node {
	if needsParens(repl, parent, field) {
		return ast.Paren(repl)
	}
	return repl
}

func needsParens(repl, parent *ast.Node, field string) bool {
	switch repl.Kind {
	case ast.KindIdentifier, ast.KindString, ast.KindTemplateString,
		ast.KindTrue, ast.KindFalse, ast.KindNull, ast.KindUndefined, ast.KindThis,
		ast.KindArray, ast.KindParenthesized, ast.KindMember, ast.KindSubscript,
		ast.KindCall, "regex":
		return false
	case ast.KindNumber:
		// 1.toFixed() does not parse
		return isCallee(parent, field)
	case ast.KindObject, "function", "function_expression", "generator_function", "class":
		// at statement start these read as a block or a declaration
		return !objectSafe(parent, field)
	case ast.KindSequence:
		return parent.Kind != ast.KindParenthesized && parent.Kind != ast.KindExpressionStatement
	}
	return !operandSafe(parent, field)
}

func isCallee(parent *ast.Node, field string) bool {
	switch parent.Kind {
	case ast.KindMember, ast.KindSubscript:
		return field == ast.FieldObject
	case ast.KindCall, "new_expression":
		return field == ast.FieldFunction || field == "constructor"
	}
	return false
}

// objectSafe lists positions where an object literal cannot be mistaken for a
// block or be split by the surrounding operator.
func objectSafe(parent *ast.Node, field string) bool {
	switch parent.Kind {
	case ast.KindArguments, ast.KindArray, ast.KindParenthesized,
		"return_statement", "spread_element", "jsx_expression", "template_substitution":
		return true
	case ast.KindPair, ast.KindVariableDeclarator:
		return field == ast.FieldValue
	case ast.KindAssignment:
		return field == ast.FieldRight
	}
	return false
}

// operandSafe lists positions where any expression may appear unwrapped.
func operandSafe(parent *ast.Node, field string) bool {
	if parent.Kind == ast.KindExpressionStatement {
		return true
	}
	return objectSafe(parent, field)
}

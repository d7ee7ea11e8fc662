package ast

import (
	"strconv"
)

func leaf(kind, value string) *Node {
	return &Node{Kind: kind, Named: true, Value: value}
}

func branch(kind string, children ...*Node) *Node {
	return &Node{Kind: kind, Named: true, Children: children}
}

func withField(field string, n *Node) *Node {
	n.Field = field
	return n
}

// Ident builds an identifier.
func Ident(name string) *Node { return leaf(KindIdentifier, name) }

// PropertyIdent builds a property name as used after a dot or as an object key.
func PropertyIdent(name string) *Node { return leaf(KindPropertyIdentifier, name) }

// String builds a double-quoted string literal.
func String(value string) *Node { return leaf(KindString, strconv.Quote(value)) }

// Number builds a numeric literal from its source spelling.
func Number(text string) *Node { return leaf(KindNumber, text) }

// Bool builds true or false.
func Bool(v bool) *Node {
	if v {
		return leaf(KindTrue, "true")
	}
	return leaf(KindFalse, "false")
}

// Null builds the null literal.
func Null() *Node { return leaf(KindNull, "null") }

// Undefined builds the undefined identifier.
func Undefined() *Node { return leaf(KindUndefined, "undefined") }

// Negate builds a unary minus applied to operand.
func Negate(operand *Node) *Node {
	return branch(KindUnary, withField(FieldOperator, &Node{Kind: "-", Value: "-"}), withField(FieldArgument, operand))
}

// Paren wraps expr in parentheses.
func Paren(expr *Node) *Node { return branch(KindParenthesized, expr) }

// Object builds an object literal from pair and shorthand nodes.
func Object(props ...*Node) *Node { return branch(KindObject, props...) }

// Pair builds a key: value property. Keys that are not identifier names are quoted.
func Pair(key string, value *Node) *Node {
	var k *Node
	if IsIdentifierName(key) {
		k = PropertyIdent(key)
	} else {
		k = String(key)
	}
	return branch(KindPair, withField(FieldKey, k), withField(FieldValue, value))
}

// Array builds an array literal.
func Array(elems ...*Node) *Node { return branch(KindArray, elems...) }

// Member builds object.property.
func Member(object *Node, property string) *Node {
	return branch(KindMember, withField(FieldObject, object), withField(FieldProperty, PropertyIdent(property)))
}

// Index builds object["key"].
func Index(object *Node, key string) *Node {
	return branch(KindSubscript, withField(FieldObject, object), withField(FieldIndex, String(key)))
}

// Call builds callee(args...).
func Call(callee *Node, args ...*Node) *Node {
	return branch(KindCall, withField(FieldFunction, callee), withField(FieldArguments, branch(KindArguments, args...)))
}

// Require builds require("from").
func Require(from string) *Node {
	return Call(Ident("require"), String(from))
}

// VarDecl builds `var name = init;`.
func VarDecl(name string, init *Node) *Node {
	decl := branch(KindVariableDeclarator, withField(FieldName, Ident(name)), withField(FieldValue, init))
	return branch(KindVariableDeclaration, decl)
}

// ImportDefault builds `import local from "from";`.
func ImportDefault(local, from string) *Node {
	return importStatement(branch(KindImportClause, Ident(local)), from)
}

// ImportNamed builds `import { imported as local } from "from";`. The alias is
// omitted when both names are equal.
func ImportNamed(imported, local, from string) *Node {
	name := Ident(imported)
	if !IsIdentifierName(imported) {
		name = String(imported)
	}
	spec := branch(KindImportSpecifier, withField(FieldName, name))
	if imported != local {
		spec.Children = append(spec.Children, withField(FieldAlias, Ident(local)))
	}
	return importStatement(branch(KindImportClause, branch(KindNamedImports, spec)), from)
}

// ImportNamespace builds `import * as local from "from";`.
func ImportNamespace(local, from string) *Node {
	return importStatement(branch(KindImportClause, branch(KindNamespaceImport, Ident(local))), from)
}

func importStatement(clause *Node, from string) *Node {
	return branch(KindImportStatement, clause, withField(FieldSource, String(from)))
}

// IsIdentifierName reports whether s can be written as a bare property name.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		case r > 0x7f:
		default:
			return false
		}
	}
	return true
}

package symbols

import (
	"bundler/internal/ast"
)

// Declarations are installed before a scope body is walked, so a reference
// that textually precedes its declaration still resolves to it.

func isFunctionKind(kind string) bool {
	switch kind {
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "generator_function",
		"arrow_function", "method_definition":
		return true
	}
	return false
}

func isFunctionExpression(kind string) bool {
	return kind == "function_expression" || kind == "function" || kind == "generator_function"
}

func isClassDeclaration(kind string) bool {
	return kind == "class_declaration" || kind == "abstract_class_declaration"
}

// typeOnly lists nodes whose subtrees never contain value references:
// TypeScript type syntax, property names, labels and literals.
var typeOnly = kindSet(
	"type_annotation", "type_arguments", "type_parameters",
	"interface_declaration", "type_alias_declaration", "ambient_declaration",
	"implements_clause", "type_predicate_annotation", "asserts_annotation",
	"opting_type_annotation", "omitting_type_annotation", "function_signature",
	"abstract_method_signature", "index_signature", "accessibility_modifier",
	"override_modifier", "type_identifier", "nested_type_identifier",
	"predefined_type", "generic_type", "property_identifier",
	"private_property_identifier", "statement_identifier", "meta_property",
	"comment", "hash_bang_line", "string", "regex", "number",
)

func kindSet(kinds ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		out[k] = struct{}{}
	}
	return out
}

// hoistVars declares every var binding below n up to the next function boundary.
func (w *walker) hoistVars(n *ast.Node, scope ScopeID) {
	for _, c := range n.Children {
		if !c.Named || isFunctionKind(c.Kind) {
			continue
		}
		if _, skip := typeOnly[c.Kind]; skip {
			continue
		}
		switch c.Kind {
		case ast.KindVariableDeclaration:
			for _, decl := range c.NamedChildren() {
				if decl.Kind == ast.KindVariableDeclarator {
					w.declarePattern(scope, decl.ChildByField(ast.FieldName), SymbolVar)
				}
			}
			w.hoistVars(c, scope)
			continue
		case ast.KindForIn:
			if kind := c.ChildByField(ast.FieldKind); kind != nil && kind.Kind == "var" {
				w.declarePattern(scope, c.ChildByField(ast.FieldLeft), SymbolVar)
			}
		}
		w.hoistVars(c, scope)
	}
}

// hoistLexical declares block-scoped bindings of the statements in stmts.
func (w *walker) hoistLexical(stmts []*ast.Node, scope ScopeID) {
	for _, stmt := range stmts {
		w.hoistStatement(stmt, scope)
	}
}

func (w *walker) hoistStatement(stmt *ast.Node, scope ScopeID) {
	if stmt == nil || !stmt.Named {
		return
	}
	switch {
	case stmt.Kind == ast.KindLexicalDeclaration:
		kind := SymbolLet
		if k := stmt.ChildByField(ast.FieldKind); k != nil && k.Kind == "const" {
			kind = SymbolConst
		}
		for _, decl := range stmt.NamedChildren() {
			if decl.Kind == ast.KindVariableDeclarator {
				w.declarePattern(scope, decl.ChildByField(ast.FieldName), kind)
			}
		}
	case stmt.Kind == "function_declaration" || stmt.Kind == "generator_function_declaration":
		w.declareName(scope, stmt.ChildByField(ast.FieldName), SymbolFunction)
	case isClassDeclaration(stmt.Kind):
		w.declareName(scope, stmt.ChildByField(ast.FieldName), SymbolClass)
	case stmt.Kind == "enum_declaration":
		w.declareName(scope, stmt.ChildByField(ast.FieldName), SymbolEnum)
	case stmt.Kind == "internal_module" || stmt.Kind == "module":
		w.declareName(scope, stmt.ChildByField(ast.FieldName), SymbolNamespace)
	case stmt.Kind == ast.KindImportStatement:
		w.hoistImport(stmt, scope)
	case stmt.Kind == ast.KindExportStatement:
		if stmt.ChildByField(ast.FieldSource) != nil {
			return
		}
		if decl := stmt.ChildByField(ast.FieldDecl); decl != nil {
			w.hoistStatement(decl, scope)
		}
		if value := stmt.ChildByField(ast.FieldValue); value != nil && (isClassDeclaration(value.Kind) || value.Kind == "function_declaration") {
			w.hoistStatement(value, scope)
		}
	case stmt.Kind == "expression_statement":
		// TypeScript parses `namespace X {}` as an expression statement
		if inner := stmt.FirstNamed(); inner != nil && inner.Kind == "internal_module" {
			w.hoistStatement(inner, scope)
		}
	}
}

func (w *walker) hoistImport(stmt *ast.Node, scope ScopeID) {
	if stmt.HasToken("type") {
		return
	}
	for _, c := range stmt.NamedChildren() {
		if c.Kind != ast.KindImportClause {
			continue
		}
		for _, part := range c.NamedChildren() {
			switch part.Kind {
			case ast.KindIdentifier:
				w.declareName(scope, part, SymbolImport)
			case ast.KindNamespaceImport:
				w.declareName(scope, part.FirstNamed(), SymbolImport)
			case ast.KindNamedImports:
				for _, spec := range part.NamedChildren() {
					if spec.Kind != ast.KindImportSpecifier || spec.HasToken("type") {
						continue
					}
					local := spec.ChildByField(ast.FieldAlias)
					if local == nil {
						local = spec.ChildByField(ast.FieldName)
					}
					w.declareName(scope, local, SymbolImport)
				}
			}
		}
	}
}

func (w *walker) declareName(scope ScopeID, name *ast.Node, kind SymbolKind) {
	if name == nil || name.Kind != ast.KindIdentifier {
		return
	}
	w.res.Declare(scope, name.Text(), kind, name)
}

// declarePattern declares every binding identifier of a destructuring pattern.
func (w *walker) declarePattern(scope ScopeID, pattern *ast.Node, kind SymbolKind) {
	if pattern == nil {
		return
	}
	switch pattern.Kind {
	case ast.KindIdentifier, ast.KindShorthandPattern:
		w.res.Declare(scope, pattern.Text(), kind, pattern)
	case "pair_pattern":
		w.declarePattern(scope, pattern.ChildByField(ast.FieldValue), kind)
	case "assignment_pattern", "object_assignment_pattern":
		w.declarePattern(scope, pattern.ChildByField(ast.FieldLeft), kind)
	case "required_parameter", "optional_parameter":
		w.declarePattern(scope, pattern.ChildByField(ast.FieldPattern), kind)
	case "object_pattern", "array_pattern", "rest_pattern", "formal_parameters":
		for _, c := range pattern.NamedChildren() {
			w.declarePattern(scope, c, kind)
		}
	}
}

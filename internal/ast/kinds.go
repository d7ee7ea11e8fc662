package ast

// Node kinds used by the passes. The names match the tree-sitter JavaScript and
// TypeScript grammars so parsed and synthesized nodes share one vocabulary.
const (
	KindProgram             = "program"
	KindHashBang            = "hash_bang_line"
	KindComment             = "comment"
	KindExpressionStatement = "expression_statement"
	KindIdentifier          = "identifier"
	KindPropertyIdentifier  = "property_identifier"
	KindShorthandProperty   = "shorthand_property_identifier"
	KindShorthandPattern    = "shorthand_property_identifier_pattern"
	KindStatementIdentifier = "statement_identifier"
	KindTypeIdentifier      = "type_identifier"
	KindPrivateProperty     = "private_property_identifier"
	KindString              = "string"
	KindTemplateString      = "template_string"
	KindNumber              = "number"
	KindTrue                = "true"
	KindFalse               = "false"
	KindNull                = "null"
	KindUndefined           = "undefined"
	KindThis                = "this"
	KindObject              = "object"
	KindPair                = "pair"
	KindArray               = "array"
	KindMember              = "member_expression"
	KindSubscript           = "subscript_expression"
	KindCall                = "call_expression"
	KindArguments           = "arguments"
	KindParenthesized       = "parenthesized_expression"
	KindUnary               = "unary_expression"
	KindBinary              = "binary_expression"
	KindSequence            = "sequence_expression"
	KindAssignment          = "assignment_expression"
	KindAugmentedAssignment = "augmented_assignment_expression"
	KindUpdate              = "update_expression"
	KindMetaProperty        = "meta_property"
	KindImport              = "import"
	KindVariableDeclaration = "variable_declaration"
	KindLexicalDeclaration  = "lexical_declaration"
	KindVariableDeclarator  = "variable_declarator"
	KindImportStatement     = "import_statement"
	KindImportClause        = "import_clause"
	KindNamedImports        = "named_imports"
	KindImportSpecifier     = "import_specifier"
	KindNamespaceImport     = "namespace_import"
	KindExportStatement     = "export_statement"
	KindExportClause        = "export_clause"
	KindExportSpecifier     = "export_specifier"
	KindNamespaceExport     = "namespace_export"
	KindArrowFunction       = "arrow_function"
	KindForIn               = "for_in_statement"
	KindError               = "ERROR"
)

// Field names attached to children by the grammar.
const (
	FieldObject    = "object"
	FieldProperty  = "property"
	FieldIndex     = "index"
	FieldFunction  = "function"
	FieldArguments = "arguments"
	FieldKey       = "key"
	FieldValue     = "value"
	FieldName      = "name"
	FieldAlias     = "alias"
	FieldSource    = "source"
	FieldLeft      = "left"
	FieldRight     = "right"
	FieldArgument  = "argument"
	FieldOperator  = "operator"
	FieldBody      = "body"
	FieldParameter = "parameter"
	FieldParams    = "parameters"
	FieldDecl      = "declaration"
	FieldKind      = "kind"
	FieldPattern   = "pattern"
	FieldLabel     = "label"
	FieldType      = "type"
)

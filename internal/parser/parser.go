// Package parser turns JavaScript and TypeScript sources into ast trees using
// tree-sitter grammars.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"bundler/internal/ast"
	"bundler/internal/source"
)

// ErrParse is wrapped by every syntax error returned from this package.
var ErrParse = errors.New("parse error")

// Language selects the grammar used for a file.
type Language uint8

const (
	JavaScript Language = iota
	TypeScript
	TSX
)

func (l Language) String() string {
	switch l {
	case TypeScript:
		return "typescript"
	case TSX:
		return "tsx"
	default:
		return "javascript"
	}
}

// LanguageFor picks the grammar from the file extension. Unknown extensions
// are parsed as JavaScript.
func LanguageFor(path string) Language {
	switch source.Ext(path) {
	case ".ts", ".mts", ".cts":
		return TypeScript
	case ".tsx":
		return TSX
	default:
		return JavaScript
	}
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case TypeScript:
		return typescript.GetLanguage()
	case TSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// ParseError reports the first syntax error of a file.
type ParseError struct {
	Path    string
	Pos     source.LineCol
	Span    source.Span
	Snippet string
}

func (e *ParseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("%s:%d:%d: syntax error near %q", e.Path, e.Pos.Line, e.Pos.Col, e.Snippet)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Pos.Line, e.Pos.Col)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Parse parses file with the grammar matching its extension.
func Parse(ctx context.Context, file *source.File) (*ast.Node, error) {
	return ParseAs(ctx, file, LanguageFor(file.Path))
}

// ParseAs parses file with an explicit grammar. A tree-sitter parser is not
// safe for concurrent use, so every call builds its own.
func ParseAs(ctx context.Context, file *source.File, lang Language) (*ast.Node, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang.grammar())

	tree, err := p.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path, err)
	}
	defer tree.Close()

	c := converter{file: file}
	root := c.convert(tree.RootNode(), "")
	if c.bad != nil {
		return root, c.errorAt(c.bad)
	}
	return root, nil
}

type converter struct {
	file *source.File
	bad  *sitter.Node
}

func (c *converter) convert(n *sitter.Node, field string) *ast.Node {
	if c.bad == nil && (n.Type() == ast.KindError || n.IsMissing()) {
		c.bad = n
	}
	out := &ast.Node{
		Kind:  n.Type(),
		Field: field,
		Named: n.IsNamed(),
		File:  c.file,
		Start: n.StartByte(),
		End:   n.EndByte(),
	}
	count := int(n.ChildCount())
	if count == 0 {
		return out
	}
	out.Children = make([]*ast.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		out.Children = append(out.Children, c.convert(child, n.FieldNameForChild(i)))
	}
	return out
}

func (c *converter) errorAt(n *sitter.Node) *ParseError {
	start, end := n.StartByte(), n.EndByte()
	snippet := ""
	if end > start && int(end) <= len(c.file.Content) {
		snippet = strings.TrimSpace(string(c.file.Content[start:end]))
		if len(snippet) > 24 {
			snippet = snippet[:24]
		}
	}
	return &ParseError{
		Path:    c.file.Path,
		Pos:     c.file.Position(start),
		Span:    source.Span{File: c.file.ID, Start: start, End: end},
		Snippet: snippet,
	}
}

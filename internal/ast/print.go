package ast

import (
	"strings"
)

// Print renders the tree rooted at n.
//
// Parsed regions are copied verbatim from their file, so an unchanged tree
// prints back to its exact input. Synthesized nodes are generated from their
// kind. Children inserted into a parsed node without a source range are written
// on their own line.
func Print(n *Node) string {
	p := printer{}
	if n.Sourced() && n.slot == nil {
		content := n.File.Content
		p.sb.Write(content[:n.Start])
		p.node(n)
		p.sb.Write(content[n.End:])
		return p.sb.String()
	}
	p.node(n)
	return p.sb.String()
}

type printer struct {
	sb strings.Builder
}

func (p *printer) node(n *Node) {
	if n == nil {
		return
	}
	if n.File != nil {
		p.sourced(n)
		return
	}
	p.synthesized(n)
}

func (p *printer) sourced(n *Node) {
	src := n.File.Content
	cursor := n.Start
	afterInsert := false
	for _, c := range n.Children {
		r, ok := c.placement(n)
		if !ok {
			p.inserted(c)
			afterInsert = true
			continue
		}
		if r.Start > cursor {
			gap := src[cursor:r.Start]
			if afterInsert && gap[0] == '\n' {
				// the inserted line already ended with a newline
				gap = gap[1:]
			}
			p.sb.Write(gap)
		}
		afterInsert = false
		p.node(c)
		if r.End > cursor {
			cursor = r.End
		}
	}
	if n.End > cursor {
		p.sb.Write(src[cursor:n.End])
	}
}

func (p *printer) inserted(c *Node) {
	if p.sb.Len() > 0 && !strings.HasSuffix(p.sb.String(), "\n") {
		p.sb.WriteByte('\n')
	}
	p.node(c)
	p.sb.WriteByte('\n')
}

func (p *printer) list(items []*Node, sep string) {
	for i, c := range items {
		if i > 0 {
			p.sb.WriteString(sep)
		}
		p.node(c)
	}
}

func (p *printer) synthesized(n *Node) {
	switch n.Kind {
	case KindObject:
		if len(n.Children) == 0 {
			p.sb.WriteString("{}")
			return
		}
		p.sb.WriteString("{ ")
		p.list(n.Children, ", ")
		p.sb.WriteString(" }")
	case KindPair:
		p.node(n.ChildByField(FieldKey))
		p.sb.WriteString(": ")
		p.node(n.ChildByField(FieldValue))
	case KindArray:
		p.sb.WriteByte('[')
		p.list(n.Children, ", ")
		p.sb.WriteByte(']')
	case KindMember:
		p.node(n.ChildByField(FieldObject))
		p.sb.WriteByte('.')
		p.node(n.ChildByField(FieldProperty))
	case KindSubscript:
		p.node(n.ChildByField(FieldObject))
		p.sb.WriteByte('[')
		p.node(n.ChildByField(FieldIndex))
		p.sb.WriteByte(']')
	case KindCall:
		p.node(n.ChildByField(FieldFunction))
		p.node(n.ChildByField(FieldArguments))
	case KindArguments:
		p.sb.WriteByte('(')
		p.list(n.Children, ", ")
		p.sb.WriteByte(')')
	case KindParenthesized:
		p.sb.WriteByte('(')
		p.list(n.Children, ", ")
		p.sb.WriteByte(')')
	case KindUnary:
		p.node(n.ChildByField(FieldOperator))
		p.node(n.ChildByField(FieldArgument))
	case KindExpressionStatement:
		p.list(n.Children, " ")
		p.sb.WriteByte(';')
	case KindVariableDeclaration:
		p.sb.WriteString("var ")
		p.list(n.Children, ", ")
		p.sb.WriteByte(';')
	case KindVariableDeclarator:
		p.node(n.ChildByField(FieldName))
		if v := n.ChildByField(FieldValue); v != nil {
			p.sb.WriteString(" = ")
			p.node(v)
		}
	case KindImportStatement:
		p.sb.WriteString("import ")
		for _, c := range n.Children {
			if c.Field != FieldSource {
				p.node(c)
				p.sb.WriteString(" from ")
			}
		}
		p.node(n.ChildByField(FieldSource))
		p.sb.WriteByte(';')
	case KindImportClause:
		p.list(n.Children, ", ")
	case KindNamedImports:
		p.sb.WriteString("{ ")
		p.list(n.Children, ", ")
		p.sb.WriteString(" }")
	case KindImportSpecifier:
		p.node(n.ChildByField(FieldName))
		if alias := n.ChildByField(FieldAlias); alias != nil {
			p.sb.WriteString(" as ")
			p.node(alias)
		}
	case KindNamespaceImport:
		p.sb.WriteString("* as ")
		p.list(n.Children, "")
	default:
		if len(n.Children) == 0 {
			p.sb.WriteString(n.Value)
			return
		}
		p.list(n.Children, " ")
	}
}

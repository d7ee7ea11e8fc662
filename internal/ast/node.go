package ast

import (
	"bundler/internal/source"
)

// Range is a half-open byte range inside the file of the enclosing node.
type Range struct {
	Start uint32
	End   uint32
}

// Node is one vertex of a mutable syntax tree.
//
// Parsed nodes point at their File and byte range; anonymous tokens such as
// punctuation and keywords are kept as unnamed children so that the printer can
// reproduce untouched regions verbatim. Synthesized nodes have a nil File and
// carry their text in Value when they are leaves.
type Node struct {
	Kind     string
	Field    string
	Named    bool
	Children []*Node
	File     *source.File
	Start    uint32
	End      uint32
	Value    string

	// slot is the source range a replacement took over from the node it replaced.
	slot *Range
}

// Sourced reports whether n was produced by the parser.
func (n *Node) Sourced() bool {
	return n != nil && n.File != nil
}

// Span returns the node position as a source span. Synthesized nodes report
// the range they replaced, if any.
func (n *Node) Span() source.Span {
	if n == nil {
		return source.Span{}
	}
	if n.slot != nil {
		return source.Span{Start: n.slot.Start, End: n.slot.End}
	}
	if n.File == nil {
		return source.Span{}
	}
	return source.Span{File: n.File.ID, Start: n.Start, End: n.End}
}

// Text returns the source text of a parsed node, the value of a synthesized
// leaf, or the printed form of a synthesized subtree.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	if n.File != nil {
		return string(n.File.Content[n.Start:n.End])
	}
	if len(n.Children) == 0 {
		return n.Value
	}
	return Print(n)
}

// ChildByField returns the first child attached under field.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns every child attached under field.
func (n *Node) ChildrenByField(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named children of n in order.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// FirstNamed returns the first named child or nil.
func (n *Node) FirstNamed() *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Named {
			return c
		}
	}
	return nil
}

// HasToken reports whether n has an anonymous child spelled tok.
func (n *Node) HasToken(tok string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Children {
		if !c.Named && c.Kind == tok {
			return true
		}
	}
	return false
}

// IndexOf returns the position of child in n.Children or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Replace swaps the i-th child of parent for repl. The replacement inherits the
// field name and the source range of the old child so the printer skips the old text.
func Replace(parent *Node, i int, repl *Node) {
	old := parent.Children[i]
	repl.Field = old.Field
	if r, ok := old.placement(parent); ok {
		repl.slot = &r
	}
	parent.Children[i] = repl
}

// Insert places child at position i of parent. Inserted nodes own no source text.
func Insert(parent *Node, i int, child *Node) {
	child.slot = nil
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[i+1:], parent.Children[i:])
	parent.Children[i] = child
}

// Clone deep-copies n. The copy keeps its source reference; only the root
// loses its slot, descendants stay placed inside their parents.
func Clone(n *Node) *Node {
	return cloneNode(n, false)
}

func cloneNode(n *Node, keepSlot bool) *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:  n.Kind,
		Field: n.Field,
		Named: n.Named,
		File:  n.File,
		Start: n.Start,
		End:   n.End,
		Value: n.Value,
	}
	if keepSlot && n.slot != nil {
		r := *n.slot
		out.slot = &r
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = cloneNode(c, true)
		}
	}
	return out
}

// placement reports the range n occupies in the text of parent.
func (n *Node) placement(parent *Node) (Range, bool) {
	if n.slot != nil {
		return *n.slot, true
	}
	if n.File != nil && parent != nil && n.File == parent.File {
		return Range{Start: n.Start, End: n.End}, true
	}
	return Range{}, false
}

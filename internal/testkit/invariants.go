package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"bundler/internal/ast"
	"bundler/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed tree:
// 1) the root belongs to sf and lies within its content
// 2) every parsed child lies inside its parsed parent
// 3) parsed siblings appear in source order and do not overlap
//
// Synthesized nodes are skipped, their parsed descendants are checked
// against the nearest parsed ancestor.
func CheckSpanInvariants(root *ast.Node, sf *source.File) error {
	if root == nil || sf == nil {
		return fmt.Errorf("nil root or file")
	}
	if root.File != sf {
		return fmt.Errorf("root points to a different file: %q", pathOf(root.File))
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if root.Start > root.End || root.End > lenContent {
		return fmt.Errorf("root span %v is outside content of length %d", root.Span(), lenContent)
	}
	return checkChildren(root, root, sf)
}

func checkChildren(n, anchor *ast.Node, sf *source.File) error {
	var prev *ast.Node
	for _, child := range n.Children {
		if child == nil {
			return fmt.Errorf("nil child under %s at %v", n.Kind, n.Span())
		}
		next := anchor
		if child.Sourced() {
			if child.File != sf {
				return fmt.Errorf("%s node points to a different file: %q", child.Kind, pathOf(child.File))
			}
			if child.Start > child.End {
				return fmt.Errorf("%s node has inverted span %v", child.Kind, child.Span())
			}
			if child.Start < anchor.Start || child.End > anchor.End {
				return fmt.Errorf("%s span %v is outside %s span %v", child.Kind, child.Span(), anchor.Kind, anchor.Span())
			}
			if prev != nil && child.Start < prev.End {
				return fmt.Errorf("%s span %v overlaps %s span %v", child.Kind, child.Span(), prev.Kind, prev.Span())
			}
			prev = child
			next = child
		}
		if err := checkChildren(child, next, sf); err != nil {
			return err
		}
	}
	return nil
}

func pathOf(f *source.File) string {
	if f == nil {
		return "<synthesized>"
	}
	return f.Path
}

package ast

// Visitor is called for every node in pre-order. Returning false skips the
// children of n.
type Visitor func(n, parent *Node) bool

// Walk traverses the tree rooted at root in pre-order.
func Walk(root *Node, visit Visitor) {
	walk(root, nil, visit)
}

func walk(n, parent *Node, visit Visitor) {
	if n == nil {
		return
	}
	if !visit(n, parent) {
		return
	}
	for _, c := range n.Children {
		walk(c, n, visit)
	}
}

// Count returns the number of nodes of the given kind below root, root included.
func Count(root *Node, kind string) int {
	total := 0
	Walk(root, func(n, _ *Node) bool {
		if n.Kind == kind {
			total++
		}
		return true
	})
	return total
}

// Unparen strips any number of parenthesized_expression wrappers.
func Unparen(n *Node) *Node {
	for n != nil && n.Kind == KindParenthesized {
		inner := n.FirstNamed()
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

// StringValue returns the unquoted contents of a string literal node.
// Escape sequences are decoded only for the common single-character forms.
func StringValue(n *Node) (string, bool) {
	if n == nil || n.Kind != KindString {
		return "", false
	}
	raw := n.Text()
	if len(raw) < 2 {
		return "", false
	}
	quote := raw[0]
	if (quote != '"' && quote != '\'') || raw[len(raw)-1] != quote {
		return "", false
	}
	body := raw[1 : len(raw)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' || i+1 == len(body) {
			out = append(out, ch)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0':
			out = append(out, 0)
		default:
			out = append(out, body[i])
		}
	}
	return string(out), true
}

package define

import (
	"strings"

	"bundler/internal/ast"
	"bundler/internal/symbols"
)

// Stats counts the substitutions of one Apply call.
type Stats struct {
	Identifiers int
	ProcessEnv  int
	MetaEnv     int
	MetaObject  int
}

// Total is the number of rewritten expressions.
func (s Stats) Total() int {
	return s.Identifiers + s.ProcessEnv + s.MetaEnv + s.MetaObject
}

// Replacer rewrites environment accesses in one module tree.
type Replacer struct {
	Env      *Map
	Bindings *symbols.Result
	stats    Stats
}

// Replace runs a Replacer over program.
func Replace(program *ast.Node, bindings *symbols.Result, env *Map) Stats {
	r := Replacer{Env: env, Bindings: bindings}
	return r.Apply(program)
}

// Apply substitutes, in one walk over program:
//   - free identifiers named by a map key;
//   - process.env.NAME and process.env["NAME"] with the map entry or undefined;
//   - import.meta.env.NAME against the meta map, or undefined;
//   - a bare import.meta.env with an object literal of the meta map.
//
// Bound identifiers, assignment targets, export specifiers and JSX tag names
// are left alone. Every replacement is a fresh copy of the map's tree.
func (r *Replacer) Apply(program *ast.Node) Stats {
	r.stats = Stats{}
	if r.Env.Empty() && !mentionsEnv(program) {
		return r.stats
	}
	r.walk(program)
	return r.stats
}

func (r *Replacer) walk(n *ast.Node) {
	for i := 0; i < len(n.Children); i++ {
		c := n.Children[i]
		if !c.Named || skipSubtree(n, c) {
			continue
		}
		if r.rewrite(n, i, c) {
			continue
		}
		r.walk(c)
	}
}

func skipSubtree(parent, c *ast.Node) bool {
	switch c.Kind {
	case ast.KindImportStatement, ast.KindExportClause, ast.KindNamespaceExport:
		return true
	case ast.KindExportStatement:
		return c.ChildByField(ast.FieldSource) != nil
	}
	return isAssignTarget(parent, c)
}

func isAssignTarget(parent, c *ast.Node) bool {
	switch parent.Kind {
	case ast.KindAssignment, ast.KindAugmentedAssignment, ast.KindForIn:
		return c.Field == ast.FieldLeft
	case ast.KindUpdate:
		return true
	}
	return false
}

func isJSXName(parent, c *ast.Node) bool {
	switch parent.Kind {
	case "jsx_opening_element", "jsx_closing_element", "jsx_self_closing_element":
		return c.Field == ast.FieldName
	}
	return false
}

func (r *Replacer) rewrite(parent *ast.Node, i int, c *ast.Node) bool {
	switch c.Kind {
	case ast.KindIdentifier:
		if !r.Bindings.IsFreeReference(c) || isJSXName(parent, c) {
			return false
		}
		value, ok := r.Env.Lookup(c.Text())
		if !ok {
			return false
		}
		r.replace(parent, i, ast.Clone(value))
		r.stats.Identifiers++
		return true
	case ast.KindShorthandProperty:
		if !r.Bindings.IsFreeReference(c) {
			return false
		}
		value, ok := r.Env.Lookup(c.Text())
		if !ok {
			return false
		}
		pair := ast.Pair(c.Text(), ast.Clone(value))
		pair.Children[1] = wrap(pair.Children[1], pair, ast.FieldValue)
		pair.Children[1].Field = ast.FieldValue
		ast.Replace(parent, i, pair)
		r.stats.Identifiers++
		return true
	case ast.KindMember, ast.KindSubscript:
		if isJSXName(parent, c) {
			return false
		}
		if repl, meta, ok := r.envAccess(c); ok {
			r.replace(parent, i, repl)
			if meta {
				r.stats.MetaEnv++
			} else {
				r.stats.ProcessEnv++
			}
			return true
		}
		if c.Kind == ast.KindMember && memberName(c) == "env" && isImportMeta(c.ChildByField(ast.FieldObject)) {
			r.replace(parent, i, r.Env.metaObject())
			r.stats.MetaObject++
			return true
		}
	}
	return false
}

// envAccess matches process.env.NAME and import.meta.env.NAME, including the
// bracket form with a string literal.
func (r *Replacer) envAccess(n *ast.Node) (repl *ast.Node, meta, ok bool) {
	env := ast.Unparen(n.ChildByField(ast.FieldObject))
	if env == nil || env.Kind != ast.KindMember || memberName(env) != "env" {
		return nil, false, false
	}
	base := ast.Unparen(env.ChildByField(ast.FieldObject))
	switch {
	case base == nil:
		return nil, false, false
	case base.Kind == ast.KindIdentifier && base.Text() == "process" && r.Bindings.IsFreeReference(base):
	case isImportMeta(base):
		meta = true
	default:
		return nil, false, false
	}

	var name string
	if n.Kind == ast.KindMember {
		name = memberName(n)
	} else if value, isString := ast.StringValue(ast.Unparen(n.ChildByField(ast.FieldIndex))); isString {
		name = value
	}
	if name == "" {
		return nil, false, false
	}

	var value *ast.Node
	var found bool
	if meta {
		value, found = r.Env.LookupMeta(name)
	} else {
		value, found = r.Env.Lookup(name)
	}
	if !found {
		return ast.Undefined(), meta, true
	}
	return ast.Clone(value), meta, true
}

func (r *Replacer) replace(parent *ast.Node, i int, repl *ast.Node) {
	ast.Replace(parent, i, wrap(repl, parent, parent.Children[i].Field))
}

func memberName(n *ast.Node) string {
	prop := n.ChildByField(ast.FieldProperty)
	if prop == nil || prop.Kind != ast.KindPropertyIdentifier {
		return ""
	}
	return prop.Text()
}

func isImportMeta(n *ast.Node) bool {
	switch {
	case n == nil:
		return false
	case n.Kind == ast.KindMetaProperty:
		return strings.HasPrefix(n.Text(), "import")
	case n.Kind == ast.KindMember:
		obj := n.ChildByField(ast.FieldObject)
		return obj != nil && obj.Kind == ast.KindImport && memberName(n) == "meta"
	}
	return false
}

// mentionsEnv reports whether program could contain an env access that must
// become undefined even with an empty map.
func mentionsEnv(program *ast.Node) bool {
	found := false
	ast.Walk(program, func(n, _ *ast.Node) bool {
		if found {
			return false
		}
		if n.Kind == ast.KindMember && memberName(n) == "env" {
			found = true
		}
		return true
	})
	return found
}

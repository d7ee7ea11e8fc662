// Package define builds the environment map from configuration values and
// substitutes its entries into module trees.
package define

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"bundler/internal/ast"
	"bundler/internal/parser"
)

// ErrInvalidDefine is wrapped by every error about a define value.
var ErrInvalidDefine = errors.New("invalid define value")

// InvalidDefineError names the define entry whose string could not be parsed
// as a single expression. Source is the offending string, which may belong to
// a nested object or array under Key.
type InvalidDefineError struct {
	Key    string
	Source string
}

func (e *InvalidDefineError) Error() string {
	return fmt.Sprintf("define value '%s' is not an expression", e.Source)
}

func (e *InvalidDefineError) Unwrap() error { return ErrInvalidDefine }

const (
	nodeEnvKey = "NODE_ENV"
	modeKey    = "MODE"
)

// Map is the immutable environment map. It is built once per build and read
// concurrently by every module task; Lookup results must be cloned before
// they are placed into a tree.
type Map struct {
	entries  map[string]*ast.Node
	meta     map[string]*ast.Node
	keys     []string
	metaKeys []string
}

// Build converts configuration values into expression trees. Strings are
// parsed as JavaScript expressions, so "\"production\"" is a string literal and
// "production" is an identifier. Keys are processed in ascending order, which
// makes the first reported error deterministic.
func Build(ctx context.Context, values map[string]any) (*Map, error) {
	m := &Map{
		entries: make(map[string]*ast.Node, len(values)),
		meta:    make(map[string]*ast.Node, len(values)),
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		expr, err := toExpr(ctx, key, values[key])
		if err != nil {
			return nil, err
		}
		m.entries[key] = expr
	}
	m.keys = keys

	_, explicitMode := m.entries[modeKey]
	for _, key := range keys {
		metaKey := key
		if key == nodeEnvKey {
			if explicitMode {
				continue
			}
			metaKey = modeKey
		}
		m.meta[metaKey] = m.entries[key]
	}
	m.metaKeys = make([]string, 0, len(m.meta))
	for k := range m.meta {
		m.metaKeys = append(m.metaKeys, k)
	}
	slices.Sort(m.metaKeys)
	return m, nil
}

// MustBuild is Build for values known to be valid, such as test fixtures.
func MustBuild(values map[string]any) *Map {
	m, err := Build(context.Background(), values)
	if err != nil {
		panic(err)
	}
	return m
}

// Lookup returns the expression bound to name in the environment map.
func (m *Map) Lookup(name string) (*ast.Node, bool) {
	if m == nil {
		return nil, false
	}
	expr, ok := m.entries[name]
	return expr, ok
}

// LookupMeta returns the expression for import.meta.env.<name>. The meta map
// is consulted first, then the environment map, so NODE_ENV and MODE agree.
func (m *Map) LookupMeta(name string) (*ast.Node, bool) {
	if m == nil {
		return nil, false
	}
	if expr, ok := m.meta[name]; ok {
		return expr, true
	}
	expr, ok := m.entries[name]
	return expr, ok
}

// Keys returns the environment map keys in ascending order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// MetaKeys returns the meta map keys in ascending order.
func (m *Map) MetaKeys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.metaKeys)
}

// Len reports the number of environment entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Empty reports whether the map has nothing to substitute.
func (m *Map) Empty() bool { return m.Len() == 0 }

// Source returns the printed expression bound to name.
func (m *Map) Source(name string) string {
	expr, ok := m.Lookup(name)
	if !ok {
		return ""
	}
	return ast.Print(ast.Clone(expr))
}

// Fingerprint renders the whole map deterministically. It keys caches that
// depend on the map contents.
func (m *Map) Fingerprint() string {
	var sb strings.Builder
	for _, k := range m.Keys() {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(m.Source(k))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// metaObject builds the object literal that replaces a bare import.meta.env.
func (m *Map) metaObject() *ast.Node {
	props := make([]*ast.Node, 0, len(m.metaKeys))
	for _, k := range m.metaKeys {
		props = append(props, ast.Pair(k, ast.Clone(m.meta[k])))
	}
	return ast.Object(props...)
}

func toExpr(ctx context.Context, key string, v any) (*ast.Node, error) {
	switch val := v.(type) {
	case nil:
		return ast.Null(), nil
	case bool:
		return ast.Bool(val), nil
	case string:
		expr, err := parser.ParseExpression(ctx, "define:"+key, val)
		if err != nil {
			return nil, &InvalidDefineError{Key: key, Source: val}
		}
		return expr, nil
	case int:
		return intExpr(int64(val)), nil
	case int8:
		return intExpr(int64(val)), nil
	case int16:
		return intExpr(int64(val)), nil
	case int32:
		return intExpr(int64(val)), nil
	case int64:
		return intExpr(val), nil
	case uint:
		return ast.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint8:
		return ast.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint16:
		return ast.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint32:
		return ast.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return ast.Number(strconv.FormatUint(val, 10)), nil
	case float32:
		return floatExpr(float64(val)), nil
	case float64:
		return floatExpr(val), nil
	case json.Number:
		text := val.String()
		if rest, neg := strings.CutPrefix(text, "-"); neg {
			return ast.Negate(ast.Number(rest)), nil
		}
		return ast.Number(text), nil
	case []any:
		elems := make([]*ast.Node, 0, len(val))
		for _, item := range val {
			expr, err := toExpr(ctx, key, item)
			if err != nil {
				return nil, err
			}
			elems = append(elems, expr)
		}
		return ast.Array(elems...), nil
	case map[string]any:
		names := make([]string, 0, len(val))
		for k := range val {
			names = append(names, k)
		}
		slices.Sort(names)
		props := make([]*ast.Node, 0, len(names))
		for _, name := range names {
			expr, err := toExpr(ctx, key, val[name])
			if err != nil {
				return nil, err
			}
			props = append(props, ast.Pair(name, expr))
		}
		return ast.Object(props...), nil
	case map[any]any:
		converted := make(map[string]any, len(val))
		for k, item := range val {
			converted[fmt.Sprint(k)] = item
		}
		return toExpr(ctx, key, converted)
	default:
		return nil, fmt.Errorf("define %q: unsupported value of type %T: %w", key, v, ErrInvalidDefine)
	}
}

func intExpr(v int64) *ast.Node {
	if v < 0 {
		return ast.Negate(ast.Number(strconv.FormatUint(uint64(-(v+1))+1, 10)))
	}
	return ast.Number(strconv.FormatInt(v, 10))
}

func floatExpr(v float64) *ast.Node {
	switch {
	case math.IsNaN(v):
		return ast.Ident("NaN")
	case math.IsInf(v, 1):
		return ast.Ident("Infinity")
	case math.IsInf(v, -1):
		return ast.Negate(ast.Ident("Infinity"))
	case v < 0 || (v == 0 && math.Signbit(v)):
		return ast.Negate(ast.Number(strconv.FormatFloat(-v, 'f', -1, 64)))
	}
	return ast.Number(strconv.FormatFloat(v, 'f', -1, 64))
}

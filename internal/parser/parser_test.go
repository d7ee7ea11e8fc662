package parser

import (
	"context"
	"errors"
	"testing"

	"bundler/internal/ast"
	"bundler/internal/source"
	"bundler/internal/testkit"
)

func parseString(t *testing.T, name, src string) *ast.Node {
	t.Helper()
	root, err := Parse(context.Background(), source.NewVirtualFile(name, []byte(src)))
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return root
}

func TestParseRoundTrip(t *testing.T) {
	src := "#!/usr/bin/env node\n// header\nimport a from \"./a\";\nconst b = require('b');\nexport { a };\n"
	root := parseString(t, "entry.js", src)
	if root.Kind != ast.KindProgram {
		t.Fatalf("root kind = %s, want program", root.Kind)
	}
	if got := ast.Print(root); got != src {
		t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, src)
	}
}

func TestParseFieldsAttached(t *testing.T) {
	root := parseString(t, "m.js", "foo.bar(1);")
	call := root.Children[0].FirstNamed()
	if call.Kind != ast.KindCall {
		t.Fatalf("kind = %s, want call_expression", call.Kind)
	}
	fn := call.ChildByField(ast.FieldFunction)
	if fn == nil || fn.Kind != ast.KindMember {
		t.Fatalf("function field = %+v", fn)
	}
	if prop := fn.ChildByField(ast.FieldProperty); prop == nil || prop.Text() != "bar" {
		t.Fatalf("property field = %+v", prop)
	}
}

func TestParseSpanInvariants(t *testing.T) {
	sources := map[string]string{
		"entry.js": "#!/usr/bin/env node\nimport a, { b as c } from \"./a\";\nexport default function f() { return a(c); }\n",
		"cjs.cjs":  "const { x } = require(\"x\");\nmodule.exports = () => x?.y ?? import.meta.env.MODE;\n",
		"m.ts":     "enum E { A, B }\nexport type T = { a: E };\n",
		"view.jsx": "export const V = ({ n }) => <ul>{[n].map((i) => <li key={i}>{i}</li>)}</ul>;\n",
	}
	for name, src := range sources {
		file := source.NewVirtualFile(name, []byte(src))
		root, err := Parse(context.Background(), file)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		if err := testkit.CheckSpanInvariants(root, file); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestParseTypeScriptAndTSX(t *testing.T) {
	parseString(t, "m.ts", "const x: number = 1;\ninterface Foo { a: string }\n")
	parseString(t, "view.tsx", "export const V = () => <div>{1}</div>;\n")
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse(context.Background(), source.NewVirtualFile("broken.js", []byte("let = ;\n")))
	if err == nil {
		t.Fatalf("expected syntax error")
	}
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error %v does not wrap ErrParse", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Path != "broken.js" || perr.Pos.Line != 1 {
		t.Fatalf("unexpected parse error %#v", err)
	}
}

func TestLanguageFor(t *testing.T) {
	cases := map[string]Language{
		"a.js": JavaScript, "a.mjs": JavaScript, "a.jsx": JavaScript,
		"a.ts": TypeScript, "a.MTS": TypeScript, "a.tsx": TSX,
	}
	for path, want := range cases {
		if got := LanguageFor(path); got != want {
			t.Errorf("LanguageFor(%s) = %v, want %v", path, got, want)
		}
	}
}

func TestParseExpression(t *testing.T) {
	ctx := context.Background()
	for _, src := range []string{`"production"`, `true`, `1 + 2`, `foo.bar`, `[1, 2]`, `({a: 1})`, `(function () {})`, `[{}]`, `x || {}`} {
		expr, err := ParseExpression(ctx, "define", src)
		if err != nil {
			t.Fatalf("ParseExpression(%q): %v", src, err)
		}
		if expr.Kind == ast.KindExpressionStatement {
			t.Fatalf("ParseExpression(%q) returned the statement", src)
		}
	}
	for _, src := range []string{`{a: 1}`, `{}.x`, `function () {}`, `function* () {}`, `class {}`, `a; b`, `let x = 1`, `)`, ``} {
		if _, err := ParseExpression(ctx, "define", src); err == nil {
			t.Fatalf("ParseExpression(%q) succeeded, want error", src)
		}
	}
}

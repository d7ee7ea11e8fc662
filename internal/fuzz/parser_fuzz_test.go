package fuzztests

import (
	"context"
	"errors"
	"testing"
	"time"

	"bundler/internal/ast"
	"bundler/internal/define"
	"bundler/internal/deps"
	"bundler/internal/inject"
	"bundler/internal/parser"
	"bundler/internal/source"
	"bundler/internal/symbols"
)

// parseTimeout bounds a single parse; hitting it points at a runaway grammar.
const parseTimeout = 5 * time.Second

func parse(t *testing.T, input []byte) (*ast.Node, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
	defer cancel()
	file := source.NewVirtualFile("fuzz.jsx", input)
	root, err := parser.Parse(ctx, file)
	if ctx.Err() != nil {
		t.Fatalf("parse exceeded %s", parseTimeout)
	}
	return root, err
}

func FuzzParserRoundTrip(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		root, err := parse(t, input)
		if err != nil {
			if !errors.Is(err, parser.ErrParse) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		if got := ast.Print(root); got != string(input) {
			t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, input)
		}
	})
}

var (
	fuzzEnv = define.MustBuild(map[string]any{
		"DEBUG":                "false",
		"process.env.NODE_ENV": "\"production\"",
		"process.env.API":      "\"https://api\"",
		"import.meta.env.MODE": "\"production\"",
	})
	fuzzInject = mustCompile(map[string]inject.Config{
		"$":       {From: "jquery"},
		"console": {From: "console-shim", Namespace: true},
	})
)

func mustCompile(rules map[string]inject.Config) *inject.Table {
	table, err := inject.Compile(rules)
	if err != nil {
		panic(err)
	}
	return table
}

func FuzzPasses(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		root, err := parse(t, input)
		if err != nil {
			return
		}
		bindings := symbols.Resolve(root)
		define.Replace(root, bindings, fuzzEnv)
		inject.Inject(root, bindings, fuzzInject, "/fuzz.jsx")
		_ = ast.Print(root)
		_ = deps.Analyze(root, bindings)
	})
}

package deps

import (
	"context"
	"testing"

	"bundler/internal/ast"
	"bundler/internal/module"
	"bundler/internal/parser"
	"bundler/internal/source"
	"bundler/internal/symbols"
)

func analyze(t *testing.T, src string) []module.Dependency {
	t.Helper()
	root, err := parser.Parse(context.Background(), source.NewVirtualFile("m.js", []byte(src)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return Analyze(root, symbols.Resolve(root))
}

func TestAnalyzeSourceOrder(t *testing.T) {
	src := `import a from "./a";
const b = require("./b");
export { c } from "./c";
async function load() { return import("./d"); }
`
	got := analyze(t, src)
	want := []struct {
		spec string
		kind module.DependencyKind
	}{
		{"./a", module.DepImport},
		{"./b", module.DepRequire},
		{"./c", module.DepExportFrom},
		{"./d", module.DepDynamicImport},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d deps, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Specifier != w.spec || got[i].Kind != w.kind || got[i].Order != i {
			t.Fatalf("dep %d = %+v, want %s %s order %d", i, got[i], w.spec, w.kind, i)
		}
	}
}

func TestAnalyzeIgnoresShadowedRequire(t *testing.T) {
	got := analyze(t, "function f(require) { return require(\"./x\"); }\nrequire(`./tpl`);\n")
	if len(got) != 0 {
		t.Fatalf("got %+v, want no deps", got)
	}
}

func TestAnalyzeSynthesizedRequire(t *testing.T) {
	root, err := parser.Parse(context.Background(), source.NewVirtualFile("m.js", []byte("x;\n")))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bindings := symbols.Resolve(root)
	ast.Insert(root, 0, ast.VarDecl("x", ast.Require("mock-lib")))
	got := Analyze(root, bindings)
	if len(got) != 1 || got[0].Specifier != "mock-lib" || got[0].Kind != module.DepRequire {
		t.Fatalf("got %+v, want require of mock-lib", got)
	}
}

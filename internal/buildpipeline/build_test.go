package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"bundler/internal/cache"
	"bundler/internal/config"
	"bundler/internal/define"
	"bundler/internal/diag"
	"bundler/internal/graph"
	"bundler/internal/inject"
	"bundler/internal/module"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func id(root, name string) module.ID {
	return module.ID(filepath.ToSlash(filepath.Join(root, filepath.FromSlash(name))))
}

func newRequest(t *testing.T, root string, defines map[string]any, rules map[string]inject.Config, entries ...string) *Request {
	t.Helper()
	table, err := inject.Compile(rules)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	abs := make([]string, len(entries))
	for i, e := range entries {
		abs[i] = filepath.Join(root, filepath.FromSlash(e))
	}
	return &Request{
		Root:    root,
		Entries: abs,
		Define:  define.MustBuild(defines),
		Inject:  table,
		Jobs:    4,
	}
}

func moduleCode(t *testing.T, g *graph.Graph, mid module.ID) string {
	t.Helper()
	m, ok := g.Module(mid)
	if !ok {
		t.Fatalf("module %s missing; have %v", mid, g.ModuleIDs())
	}
	return m.Code
}

func TestBuildTransformsAndLinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.js": "import { helper } from \"./util\";\nhelper(__VERSION__);\n",
		"src/util.js": "export function helper(v) { return v; }\n",
	})
	req := newRequest(t, root, map[string]any{"__VERSION__": `"1.0"`}, nil, "src/main.js")

	res, err := Build(context.Background(), req)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	main, util := id(root, "src/main.js"), id(root, "src/util.js")
	if got, want := res.Graph.ModuleIDs(), []module.ID{main, util}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got, want := moduleCode(t, res.Graph, main), "import { helper } from \"./util\";\nhelper(\"1.0\");\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	edges, err := res.Graph.Dependencies(main)
	if err != nil || len(edges) != 1 || edges[0].To != util || edges[0].Dep.Kind != module.DepImport {
		t.Fatalf("unexpected edges %+v (%v)", edges, err)
	}
	if got, want := res.Order.Order, []module.ID{util, main}; !slices.Equal(got, want) {
		t.Fatalf("got order %v, want %v", got, want)
	}
	if got := res.Graph.EntryModules(); !slices.Equal(got, []module.ID{main}) {
		t.Fatalf("got entries %v", got)
	}
	if res.Modules != 2 || res.Processed != 2 {
		t.Fatalf("got modules=%d processed=%d", res.Modules, res.Processed)
	}
	if !res.Timings.Has(StageParse) || !res.Timings.Has(StageCommit) {
		t.Fatalf("missing stage timings")
	}
}

func TestBuildInjectsAndAddsExternal(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.js": "my.run();\n"})
	rules := map[string]inject.Config{"my": {From: "mock-lib"}}
	res, err := Build(context.Background(), newRequest(t, root, nil, rules, "main.js"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	main := id(root, "main.js")
	if got, want := moduleCode(t, res.Graph, main), "var my = require(\"mock-lib\").default;\nmy.run();\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	ext, ok := res.Graph.Module(module.External("mock-lib"))
	if !ok || !ext.IsExternal {
		t.Fatalf("external module missing: %v", res.Graph.ModuleIDs())
	}
	edges, _ := res.Graph.Dependencies(main)
	if len(edges) != 1 || edges[0].Dep.Kind != module.DepRequire {
		t.Fatalf("unexpected edges %+v", edges)
	}
	m, _ := res.Graph.Module(main)
	if m.Format != module.FormatCJS || !slices.Equal(m.Injected, []string{"my"}) {
		t.Fatalf("got format %v injected %v", m.Format, m.Injected)
	}
}

func TestBuildReportsUnresolvedAndSyntaxErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.js":   "import a from \"./missing\";\nimport b from \"./broken\";\n",
		"broken.js": "const = ;\n",
	})
	res, err := Build(context.Background(), newRequest(t, root, nil, nil, "main.js"))
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("got %v, want ErrBuildFailed", err)
	}
	var codes []diag.Code
	for _, d := range res.Bag.Items() {
		codes = append(codes, d.Code)
		if d.Code == diag.ResUnresolved {
			if d.Message != `cannot resolve "./missing"` {
				t.Fatalf("got message %q", d.Message)
			}
			if len(d.Notes) != 1 || !strings.HasPrefix(d.Notes[0].Msg, "tried ") {
				t.Fatalf("got notes %+v", d.Notes)
			}
		}
	}
	if !slices.Contains(codes, diag.ResUnresolved) || !slices.Contains(codes, diag.SynParseError) {
		t.Fatalf("got codes %v", codes)
	}
	if !res.Graph.HasModule(id(root, "broken.js")) {
		t.Fatalf("broken module must stay in the graph")
	}
}

func TestBuildCycleIsWarning(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.js": "import \"./b\";\n",
		"b.js": "import \"./a\";\n",
	})
	res, err := Build(context.Background(), newRequest(t, root, nil, nil, "a.js"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !res.Order.Cyclic {
		t.Fatalf("expected cycle")
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.GraphCycle || items[0].Severity != diag.SevWarning {
		t.Fatalf("unexpected diagnostics %+v", items)
	}
}

func TestBuildUsesCache(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.js": "import \"./dep\";\nlog(DEBUG);\n",
		"dep.js":  "export {};\n",
	})
	c := cache.New(cache.NewMemory(16), nil)
	defs := map[string]any{"DEBUG": true}

	req := newRequest(t, root, defs, nil, "main.js")
	req.Cache = c
	first, err := Build(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHits != 0 || second.CacheHits != 2 {
		t.Fatalf("got hits %d then %d, want 0 then 2", first.CacheHits, second.CacheHits)
	}
	main := id(root, "main.js")
	if a, b := moduleCode(t, first.Graph, main), moduleCode(t, second.Graph, main); a != b || !strings.Contains(b, "log(true);") {
		t.Fatalf("cached code differs: %q vs %q", a, b)
	}
	if second.Graph.EdgeCount() != 1 {
		t.Fatalf("cached deps not linked")
	}

	// the define fingerprint is part of every key
	req2 := newRequest(t, root, map[string]any{"DEBUG": false}, nil, "main.js")
	req2.Cache = c
	third, err := Build(context.Background(), req2)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHits != 0 || !strings.Contains(moduleCode(t, third.Graph, main), "log(false);") {
		t.Fatalf("got hits %d code %q", third.CacheHits, moduleCode(t, third.Graph, main))
	}
}

func TestSessionRebuild(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.js": "import { helper } from \"./util\";\nhelper();\n",
		"util.js": "export function helper() {}\n",
	})
	s := NewSession(newRequest(t, root, nil, nil, "main.js"))
	if _, err := s.Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	main, util, extra := id(root, "main.js"), id(root, "util.js"), id(root, "extra.js")
	mainHandle, _ := s.Graph().Handle(main)
	utilHandle, _ := s.Graph().Handle(util)

	writeTree(t, root, map[string]string{
		"util.js":  "import { x } from \"./extra\";\nexport function helper() { return x; }\n",
		"extra.js": "export const x = 1;\n",
	})
	res, err := s.Rebuild(context.Background(), []string{filepath.Join(root, "util.js")})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if res.Processed != 2 {
		t.Fatalf("got %d processed, want 2 (util and extra)", res.Processed)
	}
	if got, want := res.Graph.ModuleIDs(), []module.ID{extra, main, util}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, err := res.Graph.ModuleAt(mainHandle); err != nil {
		t.Fatalf("untouched module handle invalidated: %v", err)
	}
	if _, err := res.Graph.ModuleAt(utilHandle); !errors.Is(err, graph.ErrStaleHandle) {
		t.Fatalf("got %v, want ErrStaleHandle", err)
	}
	if deps, _ := res.Graph.Dependents(util); !slices.Equal(deps, []module.ID{main}) {
		t.Fatalf("edge main -> util not restored: %v", deps)
	}

	writeTree(t, root, map[string]string{"main.js": "export const y = 1;\n"})
	res, err = s.Rebuild(context.Background(), []string{filepath.Join(root, "main.js")})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if got := res.Graph.ModuleIDs(); !slices.Equal(got, []module.ID{main}) {
		t.Fatalf("unreachable modules kept: %v", got)
	}
}

func TestBuildProgressEvents(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.js": "import \"./a\";\n", "a.js": ""})
	var mu sync.Mutex
	var events []Event
	req := newRequest(t, root, nil, nil, "main.js")
	req.Progress = FuncSink(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	if _, err := Build(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	queued := map[string]bool{}
	commitDone := false
	for _, e := range events {
		if e.Stage == StageLoad && e.Status == StatusQueued {
			queued[e.File] = true
		}
		if e.Stage == StageCommit && e.Status == StatusDone {
			commitDone = true
		}
	}
	if !queued["main.js"] || !queued["a.js"] || !commitDone {
		t.Fatalf("missing events: queued=%v commit=%v", queued, commitDone)
	}
}

func TestBuildCanceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.js": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Build(ctx, newRequest(t, root, nil, nil, "main.js"))
	if !errors.Is(err, context.Canceled) || res != nil {
		t.Fatalf("got %v, %v, want context.Canceled", res, err)
	}
}

func TestFromConfigRejectsInvalidDefine(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.js": ""})
	cfg := config.Default(root)
	cfg.Entries = []string{"main.js"}
	cfg.Define["BAD"] = "{a: 1}"

	_, bag, err := FromConfig(context.Background(), cfg, nil)
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, define.ErrInvalidDefine) {
		t.Fatalf("got %v", err)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.CfgInvalidDefine {
		t.Fatalf("unexpected diagnostics %+v", items)
	}
	if want := "define value '{a: 1}' is not an expression"; items[0].Message != want {
		t.Fatalf("got %q, want %q", items[0].Message, want)
	}
}

func TestFromConfigRejectsConflictingInject(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.js": ""})
	cfg := config.Default(root)
	cfg.Entries = []string{"main.js"}
	cfg.Inject["x"] = inject.Config{From: "lib", Named: "y", Namespace: true}

	_, bag, err := FromConfig(context.Background(), cfg, nil)
	if !errors.Is(err, inject.ErrConflictingSelectors) {
		t.Fatalf("got %v", err)
	}
	if items := bag.Items(); len(items) != 1 || items[0].Code != diag.CfgConflictingInject {
		t.Fatalf("unexpected diagnostics %+v", items)
	}
}

func TestWriteOutput(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/main.js": "log(A);\n"})
	res, err := Build(context.Background(), newRequest(t, root, map[string]any{"A": 1}, nil, "src/main.js"))
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(root, "dist")
	written, err := WriteOutput(res, root, out)
	if err != nil || len(written) != 1 {
		t.Fatalf("got %v, %v", written, err)
	}
	data, err := os.ReadFile(filepath.Join(out, "src", "main.js"))
	if err != nil || string(data) != "log(1);\n" {
		t.Fatalf("got %q, %v", data, err)
	}
}

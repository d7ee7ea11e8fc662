package graph

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"bundler/internal/module"
)

func addModules(t *testing.T, g *Graph, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := g.AddModule(module.New(module.ID(id), id)); err != nil {
			t.Fatalf("AddModule(%s): %v", id, err)
		}
	}
}

func dep(spec string, order int) module.Dependency {
	return module.Dependency{Specifier: spec, Order: order, Kind: module.DepImport}
}

func targets(edges []Edge) []module.ID {
	out := make([]module.ID, len(edges))
	for i, e := range edges {
		out[i] = e.To
	}
	return out
}

func TestAddModuleRejectsDuplicate(t *testing.T) {
	g := New()
	addModules(t, g, "/a.js")
	err := g.AddModule(module.New("/a.js", "/a.js"))
	if !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("got %v, want ErrDuplicateModule", err)
	}
	if g.Len() != 1 {
		t.Fatalf("got %d modules, want 1", g.Len())
	}
}

func TestDependenciesOrderedByDeclaration(t *testing.T) {
	g := New()
	addModules(t, g, "/main.js", "/a.js", "/b.js", "/c.js")
	mustAdd := func(to string, order int) {
		t.Helper()
		if _, err := g.AddDependency("/main.js", module.ID(to), dep(to, order)); err != nil {
			t.Fatalf("AddDependency(%s): %v", to, err)
		}
	}
	mustAdd("/c.js", 2)
	mustAdd("/a.js", 0)
	mustAdd("/b.js", 1)

	for range 3 {
		edges, err := g.Dependencies("/main.js")
		if err != nil {
			t.Fatalf("Dependencies: %v", err)
		}
		got := targets(edges)
		want := []module.ID{"/a.js", "/b.js", "/c.js"}
		if !slices.Equal(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDependenciesTieBrokenByTarget(t *testing.T) {
	g := New()
	addModules(t, g, "/main.js", "/z.js", "/y.js")
	if _, err := g.AddDependency("/main.js", "/z.js", dep("z", 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddDependency("/main.js", "/y.js", dep("y", 0)); err != nil {
		t.Fatal(err)
	}
	edges, _ := g.Dependencies("/main.js")
	if got, want := targets(edges), []module.ID{"/y.js", "/z.js"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAddDependencyUpserts(t *testing.T) {
	g := New()
	addModules(t, g, "/a.js", "/b.js")
	h1, err := g.AddDependency("/a.js", "/b.js", dep("./b", 3))
	if err != nil {
		t.Fatal(err)
	}
	h2, err := g.AddDependency("/a.js", "/b.js", dep("./b.js", 1))
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("got handle %v, want %v", h2, h1)
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("got %d edges, want 1", g.EdgeCount())
	}
	edges, _ := g.Dependencies("/a.js")
	if edges[0].Dep.Specifier != "./b.js" || edges[0].Dep.Order != 1 {
		t.Fatalf("got %+v, want replaced payload", edges[0].Dep)
	}
}

func TestAddDependencyMissingEndpoint(t *testing.T) {
	g := New()
	addModules(t, g, "/a.js")
	_, err := g.AddDependency("/a.js", "/missing.js", dep("./missing", 0))
	if !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("got %v, want ErrModuleNotFound", err)
	}
	if want := "module not found: /missing.js"; err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
	if _, err := g.AddDependency("/nope.js", "/a.js", dep("./a", 0)); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("got %v, want ErrModuleNotFound", err)
	}
	if g.EdgeCount() != 0 {
		t.Fatalf("got %d edges, want 0", g.EdgeCount())
	}
}

func TestEntryModulesSorted(t *testing.T) {
	g := New()
	for _, id := range []string{"/z.js", "/lib.js", "/a.js"} {
		m := module.New(module.ID(id), id)
		m.IsEntry = id != "/lib.js"
		if err := g.AddModule(m); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := g.EntryModules(), []module.ID{"/a.js", "/z.js"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got, want := g.ModuleIDs(), []module.ID{"/a.js", "/lib.js", "/z.js"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRemoveModuleKeepsOtherHandles(t *testing.T) {
	g := New()
	addModules(t, g, "/a.js", "/b.js", "/c.js")
	if _, err := g.AddDependency("/a.js", "/b.js", dep("./b", 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddDependency("/b.js", "/c.js", dep("./c", 0)); err != nil {
		t.Fatal(err)
	}
	hb, _ := g.Handle("/b.js")
	hc, _ := g.Handle("/c.js")

	if _, err := g.RemoveModule("/b.js"); err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() != 0 {
		t.Fatalf("got %d edges, want 0", g.EdgeCount())
	}
	if _, err := g.ModuleAt(hb); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("got %v, want ErrStaleHandle", err)
	}
	m, err := g.ModuleAt(hc)
	if err != nil || m.ID != "/c.js" {
		t.Fatalf("got %v, %v, want /c.js", m, err)
	}

	// the freed slot is reused with a new generation
	addModules(t, g, "/d.js")
	hd, _ := g.Handle("/d.js")
	if hd.Index != hb.Index || hd.Gen == hb.Gen {
		t.Fatalf("got %+v, want reused slot of %+v with new gen", hd, hb)
	}
	if _, err := g.ModuleAt(hb); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("got %v, want ErrStaleHandle", err)
	}
	if g.HasModule("/b.js") {
		t.Fatalf("removed module still present")
	}
}

func TestDependentsAndRemoveDependency(t *testing.T) {
	g := New()
	addModules(t, g, "/a.js", "/b.js", "/shared.js")
	for _, from := range []module.ID{"/b.js", "/a.js"} {
		if _, err := g.AddDependency(from, "/shared.js", dep("./shared", 0)); err != nil {
			t.Fatal(err)
		}
	}
	got, err := g.Dependents("/shared.js")
	if err != nil {
		t.Fatal(err)
	}
	if want := []module.ID{"/a.js", "/b.js"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if err := g.RemoveDependency("/a.js", "/shared.js"); err != nil {
		t.Fatal(err)
	}
	got, _ = g.Dependents("/shared.js")
	if want := []module.ID{"/b.js"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUpdateModule(t *testing.T) {
	g := New()
	addModules(t, g, "/a.js")
	if err := g.UpdateModule("/a.js", func(m *module.Module) { m.Code = "x" }); err != nil {
		t.Fatal(err)
	}
	m, _ := g.Module("/a.js")
	if m.Code != "x" {
		t.Fatalf("got %q, want %q", m.Code, "x")
	}
	if err := g.UpdateModule("/b.js", func(*module.Module) {}); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("got %v, want ErrModuleNotFound", err)
	}
}

func TestToposortBatches(t *testing.T) {
	g := New()
	addModules(t, g, "/main.js", "/a.js", "/b.js", "/util.js")
	edges := [][2]module.ID{
		{"/main.js", "/a.js"},
		{"/main.js", "/b.js"},
		{"/a.js", "/util.js"},
		{"/b.js", "/util.js"},
	}
	for i, e := range edges {
		if _, err := g.AddDependency(e[0], e[1], dep(string(e[1]), i)); err != nil {
			t.Fatal(err)
		}
	}
	topo := g.Toposort()
	if topo.Cyclic {
		t.Fatalf("unexpected cycle: %v", topo.Cycles)
	}
	want := [][]module.ID{{"/util.js"}, {"/a.js", "/b.js"}, {"/main.js"}}
	if len(topo.Batches) != len(want) {
		t.Fatalf("got %v, want %v", topo.Batches, want)
	}
	for i := range want {
		if !slices.Equal(topo.Batches[i], want[i]) {
			t.Fatalf("batch %d: got %v, want %v", i, topo.Batches[i], want[i])
		}
	}
}

func TestToposortReportsCycle(t *testing.T) {
	g := New()
	addModules(t, g, "/a.js", "/b.js", "/leaf.js")
	for _, e := range [][2]module.ID{{"/a.js", "/b.js"}, {"/b.js", "/a.js"}, {"/a.js", "/leaf.js"}} {
		if _, err := g.AddDependency(e[0], e[1], dep(string(e[1]), 0)); err != nil {
			t.Fatal(err)
		}
	}
	topo := g.Toposort()
	if !topo.Cyclic {
		t.Fatalf("expected cycle")
	}
	if want := []module.ID{"/a.js", "/b.js"}; !slices.Equal(topo.Cycles, want) {
		t.Fatalf("got %v, want %v", topo.Cycles, want)
	}
	if want := []module.ID{"/leaf.js"}; !slices.Equal(topo.Order, want) {
		t.Fatalf("got %v, want %v", topo.Order, want)
	}
}

func TestFormat(t *testing.T) {
	g := New()
	addModules(t, g, "/b.js", "/a.js")
	if _, err := g.AddDependency("/a.js", "/b.js", dep("./b", 0)); err != nil {
		t.Fatal(err)
	}
	want := "graph\n nodes:\n  /a.js\n  /b.js\n references:\n  /a.js -> /b.js\n"
	if got := g.Format(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestConcurrentProducers(t *testing.T) {
	g := New()
	addModules(t, g, "/root.js")
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := module.ID(fmt.Sprintf("/m%02d.js", i))
			if err := g.AddModule(module.New(id, string(id))); err != nil {
				t.Errorf("AddModule: %v", err)
				return
			}
			if _, err := g.AddDependency("/root.js", id, dep(string(id), i)); err != nil {
				t.Errorf("AddDependency: %v", err)
			}
		}()
	}
	wg.Wait()
	edges, _ := g.Dependencies("/root.js")
	if len(edges) != 32 {
		t.Fatalf("got %d edges, want 32", len(edges))
	}
	for i, e := range edges {
		if e.Dep.Order != i {
			t.Fatalf("edge %d: got order %d", i, e.Dep.Order)
		}
	}
}

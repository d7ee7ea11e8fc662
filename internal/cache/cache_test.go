package cache

import (
	"slices"
	"testing"

	"bundler/internal/module"
	"bundler/internal/source"
)

func samplePayload() *Payload {
	m := module.New("/app/main.js", "/app/main.js")
	m.Code = "var my = require(\"lib\").default;\nmy;\n"
	m.Format = module.FormatCJS
	m.Injected = []string{"my"}
	m.Deps = []module.Dependency{{Specifier: "lib", Order: 0, Kind: module.DepRequire}}
	return FromModule(m, 2)
}

func TestKeyDependsOnSalts(t *testing.T) {
	content := source.Sum([]byte("x"))
	a := Key(content, "/a.js", "DEBUG=true\n")
	b := Key(content, "/a.js", "DEBUG=false\n")
	c := Key(content, "/b.js", "DEBUG=true\n")
	if a == b || a == c {
		t.Fatalf("keys collide: %s %s %s", a, b, c)
	}
	if a != Key(content, "/a.js", "DEBUG=true\n") {
		t.Fatalf("key not deterministic")
	}
}

func TestDiskRoundTrip(t *testing.T) {
	disk, err := OpenDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key(source.Sum([]byte("src")), "/app/main.js")
	if _, ok, err := disk.Get(key); ok || err != nil {
		t.Fatalf("got ok=%v err=%v on empty cache", ok, err)
	}
	if err := disk.Put(key, samplePayload()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := disk.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}

	m := module.New("/app/main.js", "/app/main.js")
	got.Apply(m)
	if m.Format != module.FormatCJS || !slices.Equal(m.Injected, []string{"my"}) {
		t.Fatalf("unexpected module %+v", m)
	}
	if len(m.Deps) != 1 || m.Deps[0].Kind != module.DepRequire || m.Deps[0].Specifier != "lib" {
		t.Fatalf("unexpected deps %+v", m.Deps)
	}

	if err := disk.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := disk.Get(key); ok {
		t.Fatalf("payload survived DropAll")
	}
}

func TestDiskRejectsOtherSchema(t *testing.T) {
	disk, err := OpenDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key(source.Sum([]byte("src")), "/x.js")
	p := samplePayload()
	p.Schema = schemaVersion + 1
	if err := disk.Put(key, p); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := disk.Get(key); ok || err != nil {
		t.Fatalf("got ok=%v err=%v, want miss", ok, err)
	}
}

func TestCachePromotesDiskHits(t *testing.T) {
	disk, err := OpenDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key(source.Sum([]byte("src")), "/x.js")
	if err := disk.Put(key, samplePayload()); err != nil {
		t.Fatal(err)
	}
	mem := NewMemory(4)
	c := New(mem, disk)
	if _, ok := c.Get(key); !ok {
		t.Fatalf("expected disk hit")
	}
	if mem.Len() != 1 {
		t.Fatalf("got %d memory entries, want 1", mem.Len())
	}
	if _, ok := c.Get(Key(source.Sum([]byte("other")), "/x.js")); ok {
		t.Fatalf("unexpected hit")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("got hits=%d misses=%d, want 1/1", hits, misses)
	}
}

func TestMemoryEvicts(t *testing.T) {
	mem := NewMemory(2)
	for i := range 3 {
		mem.Put(source.Sum([]byte{byte(i)}), samplePayload())
	}
	if mem.Len() != 2 {
		t.Fatalf("got %d, want 2", mem.Len())
	}
	if _, ok := mem.Get(source.Sum([]byte{0})); ok {
		t.Fatalf("oldest entry not evicted")
	}
}

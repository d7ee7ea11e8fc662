// Package graph stores modules and their dependency edges in stable,
// generation-checked arenas.
package graph

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"fortio.org/safecast"

	"bundler/internal/module"
)

var (
	// ErrModuleNotFound is returned when an operation names an unknown module.
	ErrModuleNotFound = errors.New("module not found")
	// ErrDuplicateModule is returned when a module ID is added twice.
	ErrDuplicateModule = errors.New("module already in graph")
	// ErrStaleHandle is returned for handles whose slot was freed or reused.
	ErrStaleHandle = errors.New("stale graph handle")
)

// NodeHandle addresses a module slot. Gen changes whenever the slot is freed,
// so a handle to a removed module never aliases a later one.
type NodeHandle struct {
	Index uint32
	Gen   uint32
}

// EdgeHandle addresses a dependency edge slot.
type EdgeHandle struct {
	Index uint32
	Gen   uint32
}

// Edge is a dependency as returned by queries.
type Edge struct {
	Handle EdgeHandle
	From   module.ID
	To     module.ID
	Dep    module.Dependency
}

type nodeSlot struct {
	gen    uint32
	live   bool
	module *module.Module
	out    []uint32
	in     []uint32
}

type edgeSlot struct {
	gen  uint32
	live bool
	from uint32
	to   uint32
	dep  module.Dependency
}

type pair struct{ from, to uint32 }

// Graph is the module dependency graph. Writers are serialized by an internal
// lock; readers may run concurrently with each other.
type Graph struct {
	mu        sync.RWMutex
	index     map[module.ID]NodeHandle
	nodes     []nodeSlot
	edges     []edgeSlot
	pairs     map[pair]uint32
	freeNodes []uint32
	freeEdges []uint32
	edgeCount int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[module.ID]NodeHandle),
		pairs: make(map[pair]uint32),
	}
}

func notFound(id module.ID) error {
	return fmt.Errorf("%w: %s", ErrModuleNotFound, id)
}

func toIndex(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("graph arena overflow: %w", err))
	}
	return v
}

// AddModule inserts m under m.ID.
func (g *Graph) AddModule(m *module.Module) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.index[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, m.ID)
	}
	var idx uint32
	if n := len(g.freeNodes); n > 0 {
		idx = g.freeNodes[n-1]
		g.freeNodes = g.freeNodes[:n-1]
	} else {
		idx = toIndex(len(g.nodes))
		g.nodes = append(g.nodes, nodeSlot{})
	}
	slot := &g.nodes[idx]
	slot.live = true
	slot.module = m
	slot.out = nil
	slot.in = nil
	g.index[m.ID] = NodeHandle{Index: idx, Gen: slot.gen}
	return nil
}

// HasModule reports whether id is in the graph.
func (g *Graph) HasModule(id module.ID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.index[id]
	return ok
}

// Module returns the module stored under id.
func (g *Graph) Module(id module.ID) (*module.Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	h, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[h.Index].module, true
}

// UpdateModule runs fn on the module under id while holding the write lock.
func (g *Graph) UpdateModule(id module.ID, fn func(*module.Module)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	h, ok := g.index[id]
	if !ok {
		return notFound(id)
	}
	fn(g.nodes[h.Index].module)
	return nil
}

// ModuleIDs returns every module ID in ascending order.
func (g *Graph) ModuleIDs() []module.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]module.ID, 0, len(g.index))
	for id := range g.index {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// EntryModules returns the IDs of entry modules in ascending order.
func (g *Graph) EntryModules() []module.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var ids []module.ID
	for id, h := range g.index {
		if g.nodes[h.Index].module.IsEntry {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Handle returns the stable handle of id.
func (g *Graph) Handle(id module.ID) (NodeHandle, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	h, ok := g.index[id]
	return h, ok
}

// ModuleAt resolves a handle obtained earlier.
func (g *Graph) ModuleAt(h NodeHandle) (*module.Module, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if int(h.Index) >= len(g.nodes) {
		return nil, ErrStaleHandle
	}
	slot := &g.nodes[h.Index]
	if !slot.live || slot.gen != h.Gen {
		return nil, ErrStaleHandle
	}
	return slot.module, nil
}

// Len reports the number of modules.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.index)
}

// EdgeCount reports the number of dependency edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgeCount
}

// AddDependency records that from depends on to. A second call for the same
// ordered pair replaces the payload instead of adding a parallel edge.
func (g *Graph) AddDependency(from, to module.ID, dep module.Dependency) (EdgeHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fh, ok := g.index[from]
	if !ok {
		return EdgeHandle{}, notFound(from)
	}
	th, ok := g.index[to]
	if !ok {
		return EdgeHandle{}, notFound(to)
	}
	key := pair{from: fh.Index, to: th.Index}
	if idx, ok := g.pairs[key]; ok {
		g.edges[idx].dep = dep
		return EdgeHandle{Index: idx, Gen: g.edges[idx].gen}, nil
	}

	var idx uint32
	if n := len(g.freeEdges); n > 0 {
		idx = g.freeEdges[n-1]
		g.freeEdges = g.freeEdges[:n-1]
	} else {
		idx = toIndex(len(g.edges))
		g.edges = append(g.edges, edgeSlot{})
	}
	e := &g.edges[idx]
	e.live = true
	e.from = fh.Index
	e.to = th.Index
	e.dep = dep
	g.pairs[key] = idx
	g.nodes[fh.Index].out = append(g.nodes[fh.Index].out, idx)
	g.nodes[th.Index].in = append(g.nodes[th.Index].in, idx)
	g.edgeCount++
	return EdgeHandle{Index: idx, Gen: e.gen}, nil
}

// Dependencies returns the outgoing edges of id ordered by declaration order,
// ties broken by target ID.
func (g *Graph) Dependencies(id module.ID) ([]Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	h, ok := g.index[id]
	if !ok {
		return nil, notFound(id)
	}
	out := make([]Edge, 0, len(g.nodes[h.Index].out))
	for _, idx := range g.nodes[h.Index].out {
		e := &g.edges[idx]
		out = append(out, Edge{
			Handle: EdgeHandle{Index: idx, Gen: e.gen},
			From:   id,
			To:     g.nodes[e.to].module.ID,
			Dep:    e.dep,
		})
	}
	slices.SortStableFunc(out, func(a, b Edge) int {
		if c := cmp.Compare(a.Dep.Order, b.Dep.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return out, nil
}

// Dependents returns the IDs of modules that depend on id, ascending.
func (g *Graph) Dependents(id module.ID) ([]module.ID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	h, ok := g.index[id]
	if !ok {
		return nil, notFound(id)
	}
	out := make([]module.ID, 0, len(g.nodes[h.Index].in))
	for _, idx := range g.nodes[h.Index].in {
		out = append(out, g.nodes[g.edges[idx].from].module.ID)
	}
	slices.Sort(out)
	return out, nil
}

// RemoveDependency deletes the edge from -> to if present.
func (g *Graph) RemoveDependency(from, to module.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	fh, ok := g.index[from]
	if !ok {
		return notFound(from)
	}
	th, ok := g.index[to]
	if !ok {
		return notFound(to)
	}
	if idx, ok := g.pairs[pair{from: fh.Index, to: th.Index}]; ok {
		g.freeEdge(idx)
	}
	return nil
}

// RemoveModule deletes id and every edge touching it. Handles of other
// modules and edges stay valid.
func (g *Graph) RemoveModule(id module.ID) (*module.Module, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	h, ok := g.index[id]
	if !ok {
		return nil, notFound(id)
	}
	slot := &g.nodes[h.Index]
	for _, idx := range slices.Clone(slot.out) {
		g.freeEdge(idx)
	}
	for _, idx := range slices.Clone(slot.in) {
		g.freeEdge(idx)
	}
	m := slot.module
	slot.live = false
	slot.module = nil
	slot.out = nil
	slot.in = nil
	slot.gen++
	delete(g.index, id)
	g.freeNodes = append(g.freeNodes, h.Index)
	return m, nil
}

// ClearDependencies removes every outgoing edge of id.
func (g *Graph) ClearDependencies(id module.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	h, ok := g.index[id]
	if !ok {
		return notFound(id)
	}
	for _, idx := range slices.Clone(g.nodes[h.Index].out) {
		g.freeEdge(idx)
	}
	return nil
}

func (g *Graph) freeEdge(idx uint32) {
	e := &g.edges[idx]
	if !e.live {
		return
	}
	from, to := &g.nodes[e.from], &g.nodes[e.to]
	from.out = slices.DeleteFunc(from.out, func(i uint32) bool { return i == idx })
	to.in = slices.DeleteFunc(to.in, func(i uint32) bool { return i == idx })
	delete(g.pairs, pair{from: e.from, to: e.to})
	e.live = false
	e.dep = module.Dependency{}
	e.gen++
	g.freeEdges = append(g.freeEdges, idx)
	g.edgeCount--
}

// Format renders the graph for debugging: sorted node IDs followed by sorted
// "from -> to" references.
func (g *Graph) Format() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make([]string, 0, len(g.index))
	for id := range g.index {
		nodes = append(nodes, string(id))
	}
	refs := make([]string, 0, g.edgeCount)
	for i := range g.edges {
		e := &g.edges[i]
		if !e.live {
			continue
		}
		refs = append(refs, fmt.Sprintf("%s -> %s", g.nodes[e.from].module.ID, g.nodes[e.to].module.ID))
	}
	slices.Sort(nodes)
	slices.Sort(refs)

	var sb strings.Builder
	sb.WriteString("graph\n nodes:\n")
	for _, n := range nodes {
		fmt.Fprintf(&sb, "  %s\n", n)
	}
	sb.WriteString(" references:\n")
	for _, r := range refs {
		fmt.Fprintf(&sb, "  %s\n", r)
	}
	return sb.String()
}

package graph

import (
	"slices"

	"bundler/internal/module"
)

// Topo is a topological ordering of the graph. Dependencies come before
// their dependents.
type Topo struct {
	Order   []module.ID   // linear order of acyclic modules
	Batches [][]module.ID // waves of independent modules
	Cyclic  bool
	Cycles  []module.ID // modules left with unresolved edges
}

// Toposort orders modules with Kahn's algorithm. Each batch is sorted by ID
// so the result does not depend on insertion order.
func (g *Graph) Toposort() *Topo {
	g.mu.RLock()
	defer g.mu.RUnlock()

	// Edges point from importer to imported; count outgoing edges so leaves
	// are emitted first.
	pending := make(map[module.ID]int, len(g.index))
	for id, h := range g.index {
		pending[id] = len(g.nodes[h.Index].out)
	}

	topo := &Topo{
		Order:   make([]module.ID, 0, len(g.index)),
		Batches: make([][]module.ID, 0),
	}

	current := make([]module.ID, 0, len(g.index))
	for id, n := range pending {
		if n == 0 {
			current = append(current, id)
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]module.ID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]module.ID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			h := g.index[id]
			for _, idx := range g.nodes[h.Index].in {
				from := g.nodes[g.edges[idx].from].module.ID
				pending[from]--
				if pending[from] == 0 {
					next = append(next, from)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != len(g.index) {
		topo.Cyclic = true
		for id, n := range pending {
			if n > 0 {
				topo.Cycles = append(topo.Cycles, id)
			}
		}
		slices.Sort(topo.Cycles)
	}
	return topo
}

package survivable

import (
	"context"
	"log/slog"
	"testing"

	"github.com/rhartert/survivable-routing/network"
)

// edge is a compact edge definition by node names.
type edge struct {
	from, to string
	dist     float64
	capacity float64
}

func newTopology(t *testing.T, names []string, edges ...edge) *network.Topology {
	t.Helper()
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	es := make([]network.Edge, len(edges))
	for i, e := range edges {
		es[i] = network.Edge{From: index[e.from], To: index[e.to], Distance: e.dist, Capacity: e.capacity}
	}
	topo, err := network.NewTopology(names, es)
	if err != nil {
		t.Fatalf("NewTopology(): %v", err)
	}
	return topo
}

// ring returns the ring A-B-C-D-A with unit distances.
func ring(t *testing.T, capacity float64) *network.Topology {
	return newTopology(t, []string{"A", "B", "C", "D"},
		edge{"A", "B", 1, capacity},
		edge{"B", "C", 1, capacity},
		edge{"C", "D", 1, capacity},
		edge{"D", "A", 1, capacity},
	)
}

type dem struct {
	src, dst string
	vol      float64
}

func demandSet(t *testing.T, topo *network.Topology, demands ...dem) *network.DemandSet {
	t.Helper()
	ds := &network.DemandSet{}
	for _, d := range demands {
		if err := ds.AddByName(topo, d.src, d.dst, d.vol); err != nil {
			t.Fatalf("AddByName(%v): %v", d, err)
		}
	}
	return ds
}

func quiet() Options {
	return Options{Logger: slog.New(slog.DiscardHandler)}
}

func solve(t *testing.T, v Variant, topo *network.Topology, ds *network.DemandSet, srgs *network.SRGs, opts Options) *Solution {
	t.Helper()
	o, err := NewOptimizer(v, topo, ds, srgs, opts)
	if err != nil {
		t.Fatalf("NewOptimizer(%v): %v", v, err)
	}
	sol, err := o.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve(%v): %v", v, err)
	}
	return sol
}

// nodeNames returns the names of the nodes visited by p.
func nodeNames(topo *network.Topology, p Path) []string {
	var names []string
	for _, n := range p.Nodes() {
		names = append(names, topo.Name(n))
	}
	return names
}

// sharedEdges returns the edges used by both paths.
func sharedEdges(p, q Path) []int {
	used := map[int]bool{}
	for _, a := range p.Arcs {
		used[a.Edge] = true
	}
	var shared []int
	for _, a := range q.Arcs {
		if used[a.Edge] {
			shared = append(shared, a.Edge)
		}
	}
	return shared
}

// sharedNodes returns the nodes visited by both paths, except the endpoints
// of demand d.
func sharedNodes(d network.Demand, p, q Path) []int {
	used := map[int]bool{}
	for _, a := range p.Arcs {
		used[a.From] = true
		used[a.To] = true
	}
	var shared []int
	for _, a := range q.Arcs {
		if a.To != d.Source && a.To != d.Target && used[a.To] {
			shared = append(shared, a.To)
		}
	}
	return shared
}

// resum returns the sum of the distances of the path's arcs.
func resum(p Path) float64 {
	total := 0.0
	for _, a := range p.Arcs {
		total += a.Distance
	}
	return total
}

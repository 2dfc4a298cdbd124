package network

// LinkLoads accumulates the traffic routed over each arc of a topology.
type LinkLoads struct {
	topo  *Topology
	loads []float64
}

// NewLinkLoads returns an empty LinkLoads for topology t.
func NewLinkLoads(t *Topology) *LinkLoads {
	return &LinkLoads{
		topo:  t,
		loads: make([]float64, len(t.arcs)),
	}
}

// Load returns the current load on the arc.
func (l *LinkLoads) Load(arc int) float64 {
	return l.loads[arc]
}

// AddLoad adds the load on the arc.
func (l *LinkLoads) AddLoad(arc int, load float64) {
	l.loads[arc] += load
}

// Utilization returns the load of the arc divided by its capacity. Arcs
// without capacity have a utilization of zero.
func (l *LinkLoads) Utilization(arc int) float64 {
	c := l.topo.arcs[arc].Capacity
	if c <= 0 {
		return 0
	}
	return l.loads[arc] / c
}

// MostUtilized returns the arc with the highest utilization and its
// utilization. If several arcs have the same highest utilization, the one with
// the smallest ID is returned. It returns -1 if the topology has no arcs.
func (l *LinkLoads) MostUtilized() (int, float64) {
	best := -1
	util := 0.0
	for a := range l.loads {
		if u := l.Utilization(a); best == -1 || u > util {
			best = a
			util = u
		}
	}
	return best, util
}

// Overloaded returns the arcs whose load exceeds their capacity by more than
// tol. Arcs without capacity are never overloaded.
func (l *LinkLoads) Overloaded(tol float64) []int {
	var arcs []int
	for a, load := range l.loads {
		c := l.topo.arcs[a].Capacity
		if c > 0 && load > c+tol {
			arcs = append(arcs, a)
		}
	}
	return arcs
}

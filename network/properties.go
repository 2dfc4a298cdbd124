package network

import "github.com/rhartert/sparsesets"

// Properties summarizes the structure of a topology.
type Properties struct {
	Nodes             int
	Edges             int
	Diameter          int // in hops, -1 if the topology is not connected
	AverageDegree     float64
	AverageEdgeLength float64
	MaxEdgeLength     float64
}

// Properties computes the structural properties of the topology.
func (t *Topology) Properties() Properties {
	p := Properties{
		Nodes:    t.NumNodes(),
		Edges:    len(t.edges),
		Diameter: t.hopDiameter(),
	}
	if p.Nodes > 0 {
		p.AverageDegree = float64(2*p.Edges) / float64(p.Nodes)
	}
	if p.Edges == 0 {
		return p
	}
	total := 0.0
	for _, e := range t.edges {
		total += e.Distance
		if e.Distance > p.MaxEdgeLength {
			p.MaxEdgeLength = e.Distance
		}
	}
	p.AverageEdgeLength = total / float64(p.Edges)
	return p
}

// hopDiameter returns the largest hop eccentricity over all nodes. It runs
// one breadth-first traversal per node.
func (t *Topology) hopDiameter() int {
	n := t.NumNodes()
	if n == 0 {
		return 0
	}

	visited := sparsesets.New(n)
	depth := make([]int, n)
	queue := make([]int, 0, n)
	diameter := 0

	for src := 0; src < n; src++ {
		visited.Clear()
		queue = queue[:0]

		queue = append(queue, src)
		visited.Insert(src)
		depth[src] = 0
		for i := 0; i < len(queue); i++ {
			u := queue[i]
			for _, a := range t.nexts[u] {
				v := t.arcs[a].To
				if visited.Contains(v) {
					continue
				}
				visited.Insert(v)
				depth[v] = depth[u] + 1
				diameter = max(diameter, depth[v])
				queue = append(queue, v)
			}
		}

		if len(queue) != n {
			return -1
		}
	}

	return diameter
}

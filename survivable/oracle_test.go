package survivable

import (
	"math"

	"github.com/rhartert/yagh"

	"github.com/rhartert/survivable-routing/network"
)

// shortestDistance returns the length of the shortest path from src to dst
// with Dijkstra's algorithm, or +Inf if dst is not reachable.
func shortestDistance(topo *network.Topology, src int, dst int) float64 {
	n := topo.NumNodes()
	arcs := topo.Arcs()

	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[src] = 0

	h := yagh.New[float64](n)
	h.Put(src, 0)

	for h.Size() > 0 {
		entry := h.Pop()
		u, d := entry.Elem, entry.Cost
		if u == dst {
			return d
		}

		for _, a := range topo.Outgoing(u) {
			v := arcs[a].To
			newDist := d + arcs[a].Distance

			// Path src -> u -> v is not better than the best known path.
			if dist[v] <= newDist {
				continue
			}
			dist[v] = newDist
			h.Put(v, newDist)
		}
	}

	return dist[dst]
}

// simplePaths returns every simple path from src to dst as a list of arcs.
func simplePaths(topo *network.Topology, src int, dst int) [][]int {
	var found [][]int
	visited := make([]bool, topo.NumNodes())
	var arcs []int

	var visit func(u int)
	visit = func(u int) {
		if u == dst {
			found = append(found, append([]int(nil), arcs...))
			return
		}
		visited[u] = true
		for _, a := range topo.Outgoing(u) {
			v := topo.Arcs()[a].To
			if visited[v] {
				continue
			}
			arcs = append(arcs, a)
			visit(v)
			arcs = arcs[:len(arcs)-1]
		}
		visited[u] = false
	}
	visit(src)
	return found
}

// pathPair is a candidate (working, protection) pair of a demand.
type pathPair struct {
	arcs     []int // arcs of both paths
	distance float64
}

// disjointPairs returns the pairs of simple paths of demand d that share no
// edge and, if nodeDisjoint is true, no node but the demand's endpoints.
func disjointPairs(topo *network.Topology, d network.Demand, nodeDisjoint bool) []pathPair {
	arcs := topo.Arcs()
	paths := simplePaths(topo, d.Source, d.Target)

	var pairs []pathPair
	for i := range paths {
		for j := i + 1; j < len(paths); j++ {
			edges := map[int]bool{}
			nodes := map[int]bool{}
			for _, a := range paths[i] {
				edges[arcs[a].Edge] = true
				nodes[arcs[a].To] = true
			}
			ok := true
			for _, a := range paths[j] {
				if edges[arcs[a].Edge] {
					ok = false
				}
				n := arcs[a].To
				if nodeDisjoint && n != d.Target && nodes[n] {
					ok = false
				}
			}
			if !ok {
				continue
			}
			p := pathPair{arcs: append(append([]int(nil), paths[i]...), paths[j]...)}
			for _, a := range p.arcs {
				p.distance += arcs[a].Distance
			}
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// bestProtectedRouting returns the smallest total distance of a routing of
// all the demands with protected variant v, by enumerating every combination
// of disjoint path pairs. It returns +Inf if no routing exists.
func bestProtectedRouting(v Variant, topo *network.Topology, demands []network.Demand) float64 {
	candidates := make([][]pathPair, len(demands))
	for i, d := range demands {
		candidates[i] = disjointPairs(topo, d, v.NodeDisjoint())
	}

	arcs := topo.Arcs()
	loads := make([]float64, len(arcs))
	best := math.Inf(1)

	var assign func(i int, total float64)
	assign = func(i int, total float64) {
		if total >= best {
			return
		}
		if i == len(demands) {
			best = total
			return
		}
		for _, p := range candidates[i] {
			fits := true
			for _, a := range p.arcs {
				loads[a] += demands[i].Volume
				if v.Capacitated() && loads[a] > arcs[a].Capacity+1e-9 {
					fits = false
				}
			}
			if fits {
				assign(i+1, total+p.distance)
			}
			for _, a := range p.arcs {
				loads[a] -= demands[i].Volume
			}
		}
	}
	assign(0, 0)
	return best
}

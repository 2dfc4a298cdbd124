package survivable

import (
	"github.com/rhartert/survivable-routing/network"
	"github.com/rhartert/survivable-routing/network/paths"
	"github.com/rhartert/survivable-routing/solver"
)

// Path is the route followed by one role of a demand.
type Path struct {
	// Arcs lists the arcs of the path ordered from the demand's source. Arcs
	// that are not reachable on the walk from the source (only possible in
	// unproven solutions) are appended at the end.
	Arcs []network.Arc

	// Distance is the sum of the arcs' distances, in the order of Arcs.
	Distance float64

	walk *paths.Path
	name func(int) string
}

// Complete returns true if the arcs form a single walk from the demand's
// source to its destination.
func (p Path) Complete() bool {
	return p.walk != nil && p.walk.Complete()
}

// ArcIDs returns the indexes of the arcs of the path, in the order of Arcs.
func (p Path) ArcIDs() []int {
	if p.walk == nil {
		return nil
	}
	ids := make([]int, len(p.walk.Hops()))
	for i, h := range p.walk.Hops() {
		ids[i] = h.ID
	}
	return ids
}

// Nodes returns the nodes visited by the walk from the demand's source.
func (p Path) Nodes() []int {
	if p.walk == nil {
		return nil
	}
	return p.walk.Nodes()
}

// String returns the path as a list of node names, e.g. "A -> B -> C".
func (p Path) String() string {
	if p.walk == nil {
		return ""
	}
	return p.walk.Format(p.name)
}

// Route holds the path(s) computed for one demand.
type Route struct {
	Demand  network.Demand
	Working Path

	// Protection is nil for the Unprotected variant.
	Protection *Path
}

// Distances returns the distance of the working path followed by the
// distance of the protection path, if any.
func (r Route) Distances() []float64 {
	if r.Protection == nil {
		return []float64{r.Working.Distance}
	}
	return []float64{r.Working.Distance, r.Protection.Distance}
}

// Solution is the result of an Optimizer.
//
// A solution without routes is the "no solution" sentinel: the whole variant
// is reported as unsolved, not individual demands. Status tells why.
type Solution struct {
	Variant Variant
	Status  solver.Status

	// Proven is true if the routes are proven optimal. Routes of a solve
	// stopped by a budget are feasible but not necessarily optimal.
	Proven bool

	// Objective is the total distance of all the paths, and Bound the best
	// proven lower bound on it.
	Objective float64
	Bound     float64

	// Routes has one entry per demand, in the order of the demand set.
	Routes []Route

	topo *network.Topology
}

// Found returns true if the solution carries routes.
func (s *Solution) Found() bool {
	return s.Routes != nil
}

// Route returns the route of the demand with the given endpoints.
func (s *Solution) Route(k network.DemandKey) (Route, bool) {
	for _, r := range s.Routes {
		if r.Demand.Key() == k {
			return r, true
		}
	}
	return Route{}, false
}

// Distances returns the distance(s) of each demand's paths: one value for the
// Unprotected variant and (working, protection) otherwise. It returns nil if
// no solution was found.
func (s *Solution) Distances() map[network.DemandKey][]float64 {
	if !s.Found() {
		return nil
	}
	dist := make(map[network.DemandKey][]float64, len(s.Routes))
	for _, r := range s.Routes {
		dist[r.Demand.Key()] = r.Distances()
	}
	return dist
}

// Loads returns the traffic routed over each arc by all the paths of the
// solution. It returns nil if no solution was found.
func (s *Solution) Loads() *network.LinkLoads {
	if !s.Found() {
		return nil
	}
	loads := network.NewLinkLoads(s.topo)
	for _, r := range s.Routes {
		addPathLoad(loads, r.Working, r.Demand.Volume)
		if r.Protection != nil {
			addPathLoad(loads, *r.Protection, r.Demand.Volume)
		}
	}
	return loads
}

func addPathLoad(loads *network.LinkLoads, p Path, volume float64) {
	for _, a := range p.ArcIDs() {
		loads.AddLoad(a, volume)
	}
}

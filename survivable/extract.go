package survivable

import (
	"github.com/rhartert/survivable-routing/network"
	"github.com/rhartert/survivable-routing/network/paths"
	"github.com/rhartert/survivable-routing/solver"
)

// selected is the threshold above which a binary indicator is read as 1.
const selected = 0.5

// extract converts the assignment of res into one route per demand.
func (o *Optimizer) extract(res *solver.Result) []Route {
	routes := make([]Route, len(o.demands))
	for d, dem := range o.demands {
		first := o.rolePath(res, d, dem, roleFirst)
		routes[d] = Route{Demand: dem, Working: first}
		if !o.variant.Protected() {
			continue
		}

		// The shortest of the two paths is the working path. Ties keep the
		// first role as working.
		second := o.rolePath(res, d, dem, roleSecond)
		if first.Distance <= second.Distance {
			routes[d].Protection = &second
		} else {
			routes[d].Working = second
			routes[d].Protection = &first
		}
	}
	return routes
}

// rolePath returns the path formed by the arcs selected for demand d and the
// given role.
func (o *Optimizer) rolePath(res *solver.Result, d int, dem network.Demand, role int) Path {
	arcs := o.topo.Arcs()
	var hops []paths.Hop
	for a, arc := range arcs {
		if res.Value(o.layout.arc(d, role, a)) > selected {
			hops = append(hops, paths.Hop{ID: a, From: arc.From, To: arc.To})
		}
	}

	walk := paths.Order(dem.Source, dem.Target, hops)
	p := Path{
		Arcs: make([]network.Arc, 0, len(hops)),
		walk: walk,
		name: o.topo.Name,
	}
	for _, h := range walk.Hops() {
		p.Arcs = append(p.Arcs, arcs[h.ID])
		p.Distance += arcs[h.ID].Distance
	}
	return p
}

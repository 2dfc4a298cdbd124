package survivable

import (
	"fmt"

	"github.com/rhartert/survivable-routing/network"
	"github.com/rhartert/survivable-routing/solver"
)

// Path roles. Only the first one exists in single-role variants. Which role
// ends up as the working path is decided at extraction.
const (
	roleFirst  = 0
	roleSecond = 1
)

var roleNames = [2]string{"w", "p"}

// layout maps (demand, role, arc) and (demand, role, node) triples to model
// variables. Arc indicators come first, followed by the node-used
// auxiliaries of node-disjoint variants:
//
//	arc(d, r, a)  = (d*roles + r)*arcs + a
//	node(d, r, n) = demands*roles*arcs + (d*roles + r)*nodes + n
type layout struct {
	demands int
	roles   int
	arcs    int
	nodes   int
	aux     bool
}

func (l layout) arc(d, role, a int) solver.Var {
	return solver.Var((d*l.roles+role)*l.arcs + a)
}

func (l layout) node(d, role, n int) solver.Var {
	return solver.Var(l.demands*l.roles*l.arcs + (d*l.roles+role)*l.nodes + n)
}

func (l layout) numArcVars() int {
	return l.demands * l.roles * l.arcs
}

func (l layout) numVars() int {
	n := l.numArcVars()
	if l.aux {
		n += l.demands * l.roles * l.nodes
	}
	return n
}

// constraintBuilder assembles the model of one variant.
type constraintBuilder struct {
	variant Variant
	mode    DisjointnessMode
	topo    *network.Topology
	demands []network.Demand
	srgs    network.SRGs
	layout  layout
	model   *solver.Model
}

func newConstraintBuilder(v Variant, mode DisjointnessMode, t *network.Topology, demands []network.Demand, srgs network.SRGs) *constraintBuilder {
	return &constraintBuilder{
		variant: v,
		mode:    mode,
		topo:    t,
		demands: demands,
		srgs:    srgs,
		layout: layout{
			demands: len(demands),
			roles:   v.Roles(),
			arcs:    len(t.Arcs()),
			nodes:   t.NumNodes(),
			aux:     v.NodeDisjoint(),
		},
		model: solver.NewModel(v.String()),
	}
}

// build returns the complete model of the variant.
func (b *constraintBuilder) build() *solver.Model {
	b.declareVariables()
	b.setObjective()
	b.addFlowConservation()

	if b.variant.Protected() {
		switch {
		case b.mode == EdgeDisjoint:
			b.addEdgeDisjointness()
		case b.variant.LinkDisjoint():
			b.addArcDisjointness()
		}
	}
	if b.variant.Capacitated() {
		b.addCapacities()
	}
	if b.variant.NodeDisjoint() {
		b.addNodeDisjointness()
	}
	if b.variant.UsesLinkSRGs() {
		b.addLinkSRGs()
	}
	if b.variant.UsesNodeSRGs() {
		b.addNodeSRGs()
	}
	return b.model
}

func (b *constraintBuilder) roleName(role int) string {
	if b.layout.roles == 1 {
		return "x"
	}
	return roleNames[role]
}

func (b *constraintBuilder) declareVariables() {
	arcs := b.topo.Arcs()
	for d := range b.demands {
		for r := 0; r < b.layout.roles; r++ {
			for _, a := range arcs {
				b.model.AddBinary(fmt.Sprintf("%s[%d:%s->%s]", b.roleName(r), d, b.topo.Name(a.From), b.topo.Name(a.To)))
			}
		}
	}
	if !b.layout.aux {
		return
	}
	for d := range b.demands {
		for r := 0; r < b.layout.roles; r++ {
			for n := 0; n < b.layout.nodes; n++ {
				b.model.AddBinary(fmt.Sprintf("used_%s[%d:%s]", b.roleName(r), d, b.topo.Name(n)))
			}
		}
	}
}

// setObjective minimizes the total distance of all the paths. Node-used
// auxiliaries must never be given a cost: they are only lower-bounded and
// the minimization is what keeps them equal to the actual node usage.
func (b *constraintBuilder) setObjective() {
	arcs := b.topo.Arcs()
	terms := make([]solver.Term, 0, b.layout.numArcVars())
	for d := range b.demands {
		for r := 0; r < b.layout.roles; r++ {
			for a, arc := range arcs {
				terms = append(terms, solver.Term{Var: b.layout.arc(d, r, a), Coef: arc.Distance})
			}
		}
	}
	b.model.SetObjective(terms)
}

// addFlowConservation forces inflow - outflow to be -1 at the source of each
// demand, +1 at its destination and 0 elsewhere, for each role.
func (b *constraintBuilder) addFlowConservation() {
	for d, dem := range b.demands {
		for r := 0; r < b.layout.roles; r++ {
			for n := 0; n < b.layout.nodes; n++ {
				in, out := b.topo.Incoming(n), b.topo.Outgoing(n)
				terms := make([]solver.Term, 0, len(in)+len(out))
				for _, a := range in {
					terms = append(terms, solver.Term{Var: b.layout.arc(d, r, a), Coef: 1})
				}
				for _, a := range out {
					terms = append(terms, solver.Term{Var: b.layout.arc(d, r, a), Coef: -1})
				}

				rhs := 0.0
				switch n {
				case dem.Source:
					rhs = -1
				case dem.Target:
					rhs = 1
				}
				name := fmt.Sprintf("flow_%s[%d:%s]", b.roleName(r), d, b.topo.Name(n))
				b.model.AddConstraint(name, terms, solver.Equal, rhs)
			}
		}
	}
}

// addArcDisjointness forbids both roles to use the same arc.
func (b *constraintBuilder) addArcDisjointness() {
	for d := range b.demands {
		for a := range b.topo.Arcs() {
			b.model.AddConstraint(
				fmt.Sprintf("disjoint[%d:%d]", d, a),
				[]solver.Term{
					{Var: b.layout.arc(d, roleFirst, a), Coef: 1},
					{Var: b.layout.arc(d, roleSecond, a), Coef: 1},
				},
				solver.LessEq, 1,
			)
		}
	}
}

// addEdgeDisjointness forbids both roles to use the same edge, whatever the
// direction in which they traverse it.
func (b *constraintBuilder) addEdgeDisjointness() {
	for d := range b.demands {
		for e := range b.topo.Edges() {
			fwd, rev := b.topo.ArcOf(e, false), b.topo.ArcOf(e, true)
			b.model.AddConstraint(
				fmt.Sprintf("disjoint[%d:e%d]", d, e),
				[]solver.Term{
					{Var: b.layout.arc(d, roleFirst, fwd), Coef: 1},
					{Var: b.layout.arc(d, roleFirst, rev), Coef: 1},
					{Var: b.layout.arc(d, roleSecond, fwd), Coef: 1},
					{Var: b.layout.arc(d, roleSecond, rev), Coef: 1},
				},
				solver.LessEq, 1,
			)
		}
	}
}

// addCapacities bounds the traffic of all the paths using an arc by the
// arc's capacity.
func (b *constraintBuilder) addCapacities() {
	for a, arc := range b.topo.Arcs() {
		terms := make([]solver.Term, 0, len(b.demands)*b.layout.roles)
		for d, dem := range b.demands {
			for r := 0; r < b.layout.roles; r++ {
				terms = append(terms, solver.Term{Var: b.layout.arc(d, r, a), Coef: dem.Volume})
			}
		}
		name := fmt.Sprintf("capacity[%s->%s]", b.topo.Name(arc.From), b.topo.Name(arc.To))
		b.model.AddConstraint(name, terms, solver.LessEq, arc.Capacity)
	}
}

// addNodeDisjointness links the node-used auxiliaries to the arc indicators
// (used >= Σ outgoing arcs) and forbids both roles to use the same node,
// except the demand's own endpoints.
func (b *constraintBuilder) addNodeDisjointness() {
	for d, dem := range b.demands {
		for n := 0; n < b.layout.nodes; n++ {
			out := b.topo.Outgoing(n)
			for r := 0; r < b.layout.roles; r++ {
				terms := make([]solver.Term, 0, len(out)+1)
				terms = append(terms, solver.Term{Var: b.layout.node(d, r, n), Coef: 1})
				for _, a := range out {
					terms = append(terms, solver.Term{Var: b.layout.arc(d, r, a), Coef: -1})
				}
				name := fmt.Sprintf("used_%s[%d:%s]", b.roleName(r), d, b.topo.Name(n))
				b.model.AddConstraint(name, terms, solver.GreaterEq, 0)
			}

			if n == dem.Source || n == dem.Target {
				continue
			}
			b.model.AddConstraint(
				fmt.Sprintf("node_disjoint[%d:%s]", d, b.topo.Name(n)),
				[]solver.Term{
					{Var: b.layout.node(d, roleFirst, n), Coef: 1},
					{Var: b.layout.node(d, roleSecond, n), Coef: 1},
				},
				solver.LessEq, 1,
			)
		}
	}
}

// addLinkSRGs forbids, for each group and each ordered pair of distinct
// member edges (e1, e2), the first role to use e1 while the second role uses
// e2, in any combination of directions. Ordered pairs cover both "working on
// e1, protection on e2" and the reverse.
func (b *constraintBuilder) addLinkSRGs() {
	for d := range b.demands {
		for _, g := range b.srgs.Links {
			for _, e1 := range g.Edges {
				for _, e2 := range g.Edges {
					if e1 == e2 {
						continue
					}
					b.addLinkSRGPair(d, g.ID, e1, e2)
				}
			}
		}
	}
}

func (b *constraintBuilder) addLinkSRGPair(d int, id string, e1, e2 int) {
	for _, rev1 := range [2]bool{false, true} {
		for _, rev2 := range [2]bool{false, true} {
			a1, a2 := b.topo.ArcOf(e1, rev1), b.topo.ArcOf(e2, rev2)
			b.model.AddConstraint(
				fmt.Sprintf("srg_%s[%d:%d:%d]", id, d, a1, a2),
				[]solver.Term{
					{Var: b.layout.arc(d, roleFirst, a1), Coef: 1},
					{Var: b.layout.arc(d, roleSecond, a2), Coef: 1},
				},
				solver.LessEq, 1,
			)
		}
	}
}

// addNodeSRGs forbids, for each group and each ordered pair of distinct
// member nodes (n1, n2), the first role to use n1 while the second role uses
// n2. Pairs that involve an endpoint of the demand are skipped since both
// paths necessarily use it.
func (b *constraintBuilder) addNodeSRGs() {
	for d, dem := range b.demands {
		isEndpoint := func(n int) bool { return n == dem.Source || n == dem.Target }
		for _, g := range b.srgs.Nodes {
			for _, n1 := range g.Nodes {
				for _, n2 := range g.Nodes {
					if n1 == n2 || isEndpoint(n1) || isEndpoint(n2) {
						continue
					}
					b.model.AddConstraint(
						fmt.Sprintf("srg_%s[%d:%s:%s]", g.ID, d, b.topo.Name(n1), b.topo.Name(n2)),
						[]solver.Term{
							{Var: b.layout.node(d, roleFirst, n1), Coef: 1},
							{Var: b.layout.node(d, roleSecond, n2), Coef: 1},
						},
						solver.LessEq, 1,
					)
				}
			}
		}
	}
}

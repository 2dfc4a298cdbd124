// Package network models the inputs of a survivable routing problem: an
// undirected capacitated topology, the demands routed over it and the shared
// risk groups that protection paths must avoid.
package network

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownNode     = errors.New("unknown node")
	ErrInvalidEdge     = errors.New("invalid edge")
	ErrMissingCapacity = errors.New("missing capacity")
)

// Edge represents an undirected edge between two nodes. A Capacity of zero
// means that the edge carries no capacity attribute.
type Edge struct {
	From     int
	To       int
	Distance float64
	Capacity float64
}

// Arc represents one traversal direction of an edge. Arcs inherit the
// distance and capacity of their edge.
type Arc struct {
	Edge     int
	From     int
	To       int
	Distance float64
	Capacity float64
}

// Topology represents an undirected network together with its directed arc
// expansion. Edge e is expanded into arc 2e (From -> To) and arc 2e+1
// (To -> From).
type Topology struct {
	names []string
	index map[string]int
	edges []Edge
	arcs  []Arc
	nexts [][]int // outgoing arcs of each node
	prevs [][]int // incoming arcs of each node
}

// NewTopology creates a new topology with the given node names and edges.
// Edge endpoints are indexes in names. Self loops, parallel edges, unknown
// endpoints and non-positive distances are rejected.
func NewTopology(names []string, edges []Edge) (*Topology, error) {
	t := &Topology{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
		edges: make([]Edge, len(edges)),
		arcs:  make([]Arc, 0, 2*len(edges)),
		nexts: make([][]int, len(names)),
		prevs: make([][]int, len(names)),
	}

	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("node %d has an empty name", i)
		}
		if _, ok := t.index[name]; ok {
			return nil, fmt.Errorf("duplicate node %q", name)
		}
		t.names[i] = name
		t.index[name] = i
	}

	seen := make(map[[2]int]bool, len(edges))
	for i, e := range edges {
		if e.From < 0 || len(names) <= e.From || e.To < 0 || len(names) <= e.To {
			return nil, fmt.Errorf("edge %d (%d-%d): %w", i, e.From, e.To, ErrUnknownNode)
		}
		if e.From == e.To {
			return nil, fmt.Errorf("edge %d is a self loop on %q: %w", i, names[e.From], ErrInvalidEdge)
		}
		if !(e.Distance > 0) {
			return nil, fmt.Errorf("edge %d (%s-%s) has distance %v: %w", i, names[e.From], names[e.To], e.Distance, ErrInvalidEdge)
		}
		if e.Capacity < 0 {
			return nil, fmt.Errorf("edge %d (%s-%s) has capacity %v: %w", i, names[e.From], names[e.To], e.Capacity, ErrInvalidEdge)
		}
		key := [2]int{min(e.From, e.To), max(e.From, e.To)}
		if seen[key] {
			return nil, fmt.Errorf("edge %d (%s-%s) is a parallel edge: %w", i, names[e.From], names[e.To], ErrInvalidEdge)
		}
		seen[key] = true

		t.edges[i] = e
		t.addArc(Arc{Edge: i, From: e.From, To: e.To, Distance: e.Distance, Capacity: e.Capacity})
		t.addArc(Arc{Edge: i, From: e.To, To: e.From, Distance: e.Distance, Capacity: e.Capacity})
	}

	return t, nil
}

func (t *Topology) addArc(a Arc) {
	id := len(t.arcs)
	t.arcs = append(t.arcs, a)
	t.nexts[a.From] = append(t.nexts[a.From], id)
	t.prevs[a.To] = append(t.prevs[a.To], id)
}

// NumNodes returns the number of nodes in the topology.
func (t *Topology) NumNodes() int {
	return len(t.names)
}

// Name returns the name of node n.
func (t *Topology) Name(n int) string {
	return t.names[n]
}

// Index returns the index of the node with the given name.
func (t *Topology) Index(name string) (int, error) {
	n, ok := t.index[name]
	if !ok {
		return -1, fmt.Errorf("node %q: %w", name, ErrUnknownNode)
	}
	return n, nil
}

// Edges returns the undirected edges of the topology.
//
// Important: the slice is a view on the topology's internal structure and
// should only be used in read-only operations.
func (t *Topology) Edges() []Edge {
	return t.edges
}

// Arcs returns the directed arcs of the topology.
//
// Important: the slice is a view on the topology's internal structure and
// should only be used in read-only operations.
func (t *Topology) Arcs() []Arc {
	return t.arcs
}

// Outgoing returns the arcs leaving node n.
func (t *Topology) Outgoing(n int) []int {
	return t.nexts[n]
}

// Incoming returns the arcs entering node n.
func (t *Topology) Incoming(n int) []int {
	return t.prevs[n]
}

// ArcOf returns the arc of edge e in its declared direction, or in the
// opposite direction if reversed is true.
func (t *Topology) ArcOf(e int, reversed bool) int {
	if reversed {
		return 2*e + 1
	}
	return 2 * e
}

// Reverse returns the arc traversing the same edge as arc a in the opposite
// direction.
func (t *Topology) Reverse(a int) int {
	return a ^ 1
}

// FindEdge returns the edge between nodes a and b in either direction.
func (t *Topology) FindEdge(a int, b int) (int, bool) {
	for _, arc := range t.nexts[a] {
		if t.arcs[arc].To == b {
			return t.arcs[arc].Edge, true
		}
	}
	return -1, false
}

// CheckCapacities returns an error wrapping ErrMissingCapacity if any edge of
// the topology has no capacity attribute.
func (t *Topology) CheckCapacities() error {
	for i, e := range t.edges {
		if e.Capacity <= 0 {
			return fmt.Errorf("edge %d (%s-%s): %w", i, t.names[e.From], t.names[e.To], ErrMissingCapacity)
		}
	}
	return nil
}

// WithUniformCapacity returns a copy of the topology where every edge (and
// thus every arc) has the given capacity.
func (t *Topology) WithUniformCapacity(capacity float64) (*Topology, error) {
	if !(capacity > 0) {
		return nil, fmt.Errorf("uniform capacity must be positive, got %v", capacity)
	}
	edges := make([]Edge, len(t.edges))
	for i, e := range t.edges {
		e.Capacity = capacity
		edges[i] = e
	}
	return NewTopology(t.names, edges)
}

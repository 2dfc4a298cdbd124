// Package paths provides functions for turning an unordered set of selected
// arcs into a path between two nodes of a network.
package paths

import (
	"fmt"
	"strings"

	"github.com/rhartert/sparsesets"
)

// Hop is a directed traversal from node From to node To. ID identifies the
// hop in the caller's structures (e.g. an arc index).
type Hop struct {
	ID   int
	From int
	To   int
}

// Path is a walk from a source to a target made of hops.
//
// A Path respects the following invariants:
//
//   - Source node: the walk starts at Source
//   - Connected: each hop of the walk starts where the previous one ended
//   - Extra hops: hops that could not be placed on the walk (e.g. cycles
//     disconnected from it) are kept after the walk, in their input order
//
// A Path is complete if its walk ends at the target and no extra hops exist.
type Path struct {
	source int
	target int
	hops   []Hop
	walk   int // number of hops on the walk
}

// Order arranges hops into a walk starting at source. At each node, the first
// unused hop leaving it (in input order) is followed. The walk stops when it
// reaches target or when no unused hop leaves the current node.
func Order(source int, target int, hops []Hop) *Path {
	p := &Path{
		source: source,
		target: target,
		hops:   make([]Hop, 0, len(hops)),
	}
	if len(hops) == 0 {
		return p
	}

	used := sparsesets.New(len(hops))
	for node := source; node != target; {
		next := -1
		for i, h := range hops {
			if h.From == node && !used.Contains(i) {
				next = i
				break
			}
		}
		if next == -1 {
			break
		}
		used.Insert(next)
		p.hops = append(p.hops, hops[next])
		node = hops[next].To
	}
	p.walk = len(p.hops)

	for i, h := range hops {
		if !used.Contains(i) {
			p.hops = append(p.hops, h)
		}
	}
	return p
}

// Source returns the node at which the path starts.
func (p *Path) Source() int {
	return p.source
}

// Target returns the node at which the path is expected to end.
func (p *Path) Target() int {
	return p.target
}

// Complete returns true if the walk reaches the target and every hop is on
// the walk.
func (p *Path) Complete() bool {
	return p.walk == len(p.hops) && p.last() == p.target
}

// Hops returns all the hops of the path, walk first.
//
// Important: the slice is a view on one of the path's internal structure and
// should only be used in read-only operations.
func (p *Path) Hops() []Hop {
	return p.hops
}

// Extra returns the hops that are not on the walk.
func (p *Path) Extra() []Hop {
	return p.hops[p.walk:]
}

// Nodes returns the sequence of nodes visited by the walk (including the
// source and, if reached, the target).
func (p *Path) Nodes() []int {
	nodes := make([]int, 0, p.walk+1)
	nodes = append(nodes, p.source)
	for _, h := range p.hops[:p.walk] {
		nodes = append(nodes, h.To)
	}
	return nodes
}

// Length returns the number of nodes visited by the walk.
func (p *Path) Length() int {
	return p.walk + 1
}

func (p *Path) last() int {
	if p.walk == 0 {
		return p.source
	}
	return p.hops[p.walk-1].To
}

// String returns a string representation of the walk as a sequence of nodes
// separated by " -> ". For example: "0 -> 4 -> 3 -> 1".
func (p *Path) String() string {
	return p.Format(func(n int) string { return fmt.Sprintf("%d", n) })
}

// Format is like String but renders each node with the given function. Hops
// that are not on the walk are rendered after a " + " separator.
func (p *Path) Format(name func(int) string) string {
	sb := strings.Builder{}
	for i, n := range p.Nodes() {
		if i > 0 {
			sb.WriteString(" -> ")
		}
		sb.WriteString(name(n))
	}
	for _, h := range p.Extra() {
		sb.WriteString(fmt.Sprintf(" + (%s -> %s)", name(h.From), name(h.To)))
	}
	return sb.String()
}

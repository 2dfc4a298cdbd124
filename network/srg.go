package network

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSRG = errors.New("invalid shared risk group")
	ErrNoSRGs     = errors.New("no shared risk groups defined")
)

// LinkSRG is a group of edges that are likely to fail together.
type LinkSRG struct {
	ID    string
	Edges []int
}

// NodeSRG is a group of nodes that are likely to fail together.
type NodeSRG struct {
	ID    string
	Nodes []int
}

// SRGs holds the shared risk groups defined for a topology.
type SRGs struct {
	Links []LinkSRG
	Nodes []NodeSRG
}

// Validate checks that every group has at least two distinct members that
// exist in topology t.
func (s *SRGs) Validate(t *Topology) error {
	ids := map[string]bool{}
	for _, g := range s.Links {
		if ids["link/"+g.ID] {
			return fmt.Errorf("link SRG %q defined twice: %w", g.ID, ErrInvalidSRG)
		}
		ids["link/"+g.ID] = true
		if err := checkMembers(g.Edges, len(t.Edges())); err != nil {
			return fmt.Errorf("link SRG %q: %w", g.ID, err)
		}
	}
	for _, g := range s.Nodes {
		if ids["node/"+g.ID] {
			return fmt.Errorf("node SRG %q defined twice: %w", g.ID, ErrInvalidSRG)
		}
		ids["node/"+g.ID] = true
		if err := checkMembers(g.Nodes, t.NumNodes()); err != nil {
			return fmt.Errorf("node SRG %q: %w", g.ID, err)
		}
	}
	return nil
}

func checkMembers(members []int, n int) error {
	if len(members) < 2 {
		return fmt.Errorf("%d member(s), need at least 2: %w", len(members), ErrInvalidSRG)
	}
	seen := make(map[int]bool, len(members))
	for _, m := range members {
		if m < 0 || n <= m {
			return fmt.Errorf("member %d out of range: %w", m, ErrInvalidSRG)
		}
		if seen[m] {
			return fmt.Errorf("member %d listed twice: %w", m, ErrInvalidSRG)
		}
		seen[m] = true
	}
	return nil
}

// NewLinkSRG returns a link SRG made of the edges between the given pairs of
// named nodes. Pairs are matched regardless of their direction.
func NewLinkSRG(t *Topology, id string, pairs ...[2]string) (LinkSRG, error) {
	g := LinkSRG{ID: id, Edges: make([]int, 0, len(pairs))}
	for _, p := range pairs {
		a, err := t.Index(p[0])
		if err != nil {
			return LinkSRG{}, fmt.Errorf("link SRG %q: %w", id, err)
		}
		b, err := t.Index(p[1])
		if err != nil {
			return LinkSRG{}, fmt.Errorf("link SRG %q: %w", id, err)
		}
		e, ok := t.FindEdge(a, b)
		if !ok {
			return LinkSRG{}, fmt.Errorf("link SRG %q: no edge %s-%s: %w", id, p[0], p[1], ErrInvalidSRG)
		}
		g.Edges = append(g.Edges, e)
	}
	return g, nil
}

// NewNodeSRG returns a node SRG made of the named nodes.
func NewNodeSRG(t *Topology, id string, names ...string) (NodeSRG, error) {
	g := NodeSRG{ID: id, Nodes: make([]int, 0, len(names))}
	for _, name := range names {
		n, err := t.Index(name)
		if err != nil {
			return NodeSRG{}, fmt.Errorf("node SRG %q: %w", id, err)
		}
		g.Nodes = append(g.Nodes, n)
	}
	return g, nil
}

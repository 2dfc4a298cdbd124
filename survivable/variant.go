package survivable

import (
	"fmt"
	"strings"
)

// Variant selects the ILP formulation solved by an Optimizer.
type Variant int8

const (
	// Unprotected routes each demand on a single shortest path.
	Unprotected Variant = iota

	// LinkDisjoint routes each demand on a working and a protection path
	// that share no link.
	LinkDisjoint

	// LinkDisjointCapacitated is LinkDisjoint with arc capacities.
	LinkDisjointCapacitated

	// NodeDisjointCapacitated routes each demand on a working and a
	// protection path that share no intermediate node, with arc capacities.
	NodeDisjointCapacitated

	// LinkDisjointSRG is LinkDisjointCapacitated with link shared risk
	// groups: the two paths of a demand cannot use members of the same group.
	LinkDisjointSRG

	// NodeDisjointSRG is NodeDisjointCapacitated with node shared risk
	// groups.
	NodeDisjointSRG
)

var variantNames = [...]string{
	Unprotected:             "unprotected",
	LinkDisjoint:            "link_disjoint",
	LinkDisjointCapacitated: "link_disjoint_capacitated",
	NodeDisjointCapacitated: "node_disjoint_capacitated",
	LinkDisjointSRG:         "link_disjoint_srg",
	NodeDisjointSRG:         "node_disjoint_srg",
}

// Variants returns all the variants in declaration order.
func Variants() []Variant {
	return []Variant{
		Unprotected,
		LinkDisjoint,
		LinkDisjointCapacitated,
		NodeDisjointCapacitated,
		LinkDisjointSRG,
		NodeDisjointSRG,
	}
}

func (v Variant) valid() bool {
	return v >= Unprotected && v <= NodeDisjointSRG
}

func (v Variant) String() string {
	if !v.valid() {
		return fmt.Sprintf("Variant(%d)", int8(v))
	}
	return variantNames[v]
}

// ParseVariant returns the variant with the given name. Names are case
// insensitive and accept dashes in place of underscores.
func ParseVariant(s string) (Variant, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for v, n := range variantNames {
		if n == name {
			return Variant(v), nil
		}
	}
	return 0, fmt.Errorf("unknown variant %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if !v.valid() {
		return nil, fmt.Errorf("invalid variant %d", int8(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	p, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Roles returns the number of paths computed per demand: 1 for Unprotected
// and 2 (working and protection) for the other variants.
func (v Variant) Roles() int {
	if v == Unprotected {
		return 1
	}
	return 2
}

// Protected returns true if the variant computes a protection path.
func (v Variant) Protected() bool {
	return v.Roles() == 2
}

// Capacitated returns true if the variant enforces arc capacities.
func (v Variant) Capacitated() bool {
	switch v {
	case LinkDisjointCapacitated, NodeDisjointCapacitated, LinkDisjointSRG, NodeDisjointSRG:
		return true
	default:
		return false
	}
}

// LinkDisjoint returns true if the working and protection paths must not
// share a link.
func (v Variant) LinkDisjoint() bool {
	return v == LinkDisjoint || v == LinkDisjointCapacitated || v == LinkDisjointSRG
}

// NodeDisjoint returns true if the working and protection paths must not
// share an intermediate node.
func (v Variant) NodeDisjoint() bool {
	return v == NodeDisjointCapacitated || v == NodeDisjointSRG
}

// UsesLinkSRGs returns true if the variant requires link shared risk groups.
func (v Variant) UsesLinkSRGs() bool {
	return v == LinkDisjointSRG
}

// UsesNodeSRGs returns true if the variant requires node shared risk groups.
func (v Variant) UsesNodeSRGs() bool {
	return v == NodeDisjointSRG
}

// DisjointnessMode controls how link disjointness is encoded.
type DisjointnessMode int8

const (
	// EdgeDisjoint forbids the working and protection paths of a demand to
	// use the same undirected edge, in any direction. It is enforced by all
	// the protected variants, including the node-disjoint ones (a direct
	// link between the endpoints is a shared failure).
	EdgeDisjoint DisjointnessMode = iota

	// ArcDisjoint only forbids the two paths to use the same directed arc,
	// and only in link-disjoint variants. The two paths may then traverse
	// the same edge in opposite directions.
	ArcDisjoint
)

func (m DisjointnessMode) String() string {
	switch m {
	case EdgeDisjoint:
		return "edge"
	case ArcDisjoint:
		return "arc"
	default:
		return fmt.Sprintf("DisjointnessMode(%d)", int8(m))
	}
}

// ParseDisjointnessMode returns the mode with the given name ("edge" or
// "arc"). The empty string is EdgeDisjoint.
func ParseDisjointnessMode(s string) (DisjointnessMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "edge":
		return EdgeDisjoint, nil
	case "arc":
		return ArcDisjoint, nil
	default:
		return 0, fmt.Errorf("unknown disjointness mode %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *DisjointnessMode) UnmarshalText(text []byte) error {
	p, err := ParseDisjointnessMode(string(text))
	if err != nil {
		return err
	}
	*m = p
	return nil
}

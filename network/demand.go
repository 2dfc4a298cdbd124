package network

import (
	"errors"
	"fmt"
)

var (
	ErrDegenerateDemand = errors.New("demand source equals its destination")
	ErrDuplicateDemand  = errors.New("duplicate demand")
	ErrInvalidVolume    = errors.New("demand volume must be positive")
)

// Demand is a request to route Volume units of traffic from Source to Target.
type Demand struct {
	Source int
	Target int
	Volume float64
}

// DemandKey identifies a demand by its endpoints.
type DemandKey struct {
	Source int
	Target int
}

// Key returns the key of the demand.
func (d Demand) Key() DemandKey {
	return DemandKey{d.Source, d.Target}
}

// DemandSet is an ordered set of demands with unique keys. The enumeration
// order is the insertion order and never changes.
type DemandSet struct {
	demands []Demand
	keys    map[DemandKey]int
}

// NewDemandSet returns a new DemandSet containing the given demands. It
// returns an error if any demand is invalid for topology t.
func NewDemandSet(t *Topology, demands ...Demand) (*DemandSet, error) {
	ds := &DemandSet{keys: make(map[DemandKey]int, len(demands))}
	for _, d := range demands {
		if err := ds.Add(t, d); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Add appends the demand to the set. It returns an error if the demand
// references nodes that are not in t, if its source equals its target, if its
// volume is not positive or if a demand with the same key already exists.
func (ds *DemandSet) Add(t *Topology, d Demand) error {
	if err := ValidateDemand(t, d); err != nil {
		return err
	}
	if ds.keys == nil {
		ds.keys = map[DemandKey]int{}
	}
	if _, ok := ds.keys[d.Key()]; ok {
		return fmt.Errorf("demand %s -> %s: %w", t.Name(d.Source), t.Name(d.Target), ErrDuplicateDemand)
	}
	ds.keys[d.Key()] = len(ds.demands)
	ds.demands = append(ds.demands, d)
	return nil
}

// AddByName appends the demand between the named nodes to the set.
func (ds *DemandSet) AddByName(t *Topology, source string, target string, volume float64) error {
	s, err := t.Index(source)
	if err != nil {
		return fmt.Errorf("demand %s -> %s: %w", source, target, err)
	}
	d, err := t.Index(target)
	if err != nil {
		return fmt.Errorf("demand %s -> %s: %w", source, target, err)
	}
	return ds.Add(t, Demand{Source: s, Target: d, Volume: volume})
}

// Len returns the number of demands in the set.
func (ds *DemandSet) Len() int {
	return len(ds.demands)
}

// At returns the i-th demand of the set.
func (ds *DemandSet) At(i int) Demand {
	return ds.demands[i]
}

// Demands returns the demands in enumeration order.
//
// Important: the slice is a view on the set's internal structure and should
// only be used in read-only operations.
func (ds *DemandSet) Demands() []Demand {
	return ds.demands
}

// Position returns the position of the demand with the given key.
func (ds *DemandSet) Position(k DemandKey) (int, bool) {
	i, ok := ds.keys[k]
	return i, ok
}

// ValidateDemand checks that demand d is well formed for topology t.
func ValidateDemand(t *Topology, d Demand) error {
	n := t.NumNodes()
	if d.Source < 0 || n <= d.Source {
		return fmt.Errorf("demand source %d: %w", d.Source, ErrUnknownNode)
	}
	if d.Target < 0 || n <= d.Target {
		return fmt.Errorf("demand target %d: %w", d.Target, ErrUnknownNode)
	}
	if d.Source == d.Target {
		return fmt.Errorf("demand %s -> %s: %w", t.Name(d.Source), t.Name(d.Target), ErrDegenerateDemand)
	}
	if !(d.Volume > 0) {
		return fmt.Errorf("demand %s -> %s with volume %v: %w", t.Name(d.Source), t.Name(d.Target), d.Volume, ErrInvalidVolume)
	}
	return nil
}

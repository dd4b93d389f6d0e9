package model

import (
	"fmt"
	"maps"
)

// LoadingVector maps a node ID to its weekly loading for one period.
type LoadingVector map[string]int

// Clone returns an independent copy of the vector.
func (v LoadingVector) Clone() LoadingVector {
	return maps.Clone(v)
}

// Equal reports whether both vectors hold the same loadings.
func (v LoadingVector) Equal(o LoadingVector) bool {
	return maps.Equal(v, o)
}

// LoadingPlan is the sequence of loading vectors, index-aligned to periods.
type LoadingPlan []LoadingVector

// Clone deep copies the plan.
func (p LoadingPlan) Clone() LoadingPlan {
	if p == nil {
		return nil
	}
	out := make(LoadingPlan, len(p))
	for i, v := range p {
		out[i] = v.Clone()
	}
	return out
}

// Validate checks that the plan has the shape expected for the scenario:
// one vector per period, every node present, no negative loading and the
// first vector equal to the scenario's initial loading.
func (p LoadingPlan) Validate(s *Scenario) error {
	if len(p) != len(s.Periods) {
		return fmt.Errorf("%w: plan has %d periods, want %d", ErrMalformedInput, len(p), len(s.Periods))
	}
	for i, v := range p {
		if len(v) != len(s.Nodes) {
			return fmt.Errorf("%w: period %d has %d nodes, want %d", ErrMalformedInput, i, len(v), len(s.Nodes))
		}
		for _, n := range s.Nodes {
			l, ok := v[n.ID]
			if !ok {
				return fmt.Errorf("%w: period %d misses node %s", ErrMalformedInput, i, n.ID)
			}
			if l < 0 {
				return fmt.Errorf("%w: period %d node %s has negative loading %d", ErrMalformedInput, i, n.ID, l)
			}
		}
	}
	if len(p) > 0 && !p[0].Equal(s.Initial) {
		return fmt.Errorf("%w: first period differs from initial loading", ErrMalformedInput)
	}
	return nil
}

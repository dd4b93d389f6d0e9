package model

import (
	"fmt"
	"slices"
)

// Scenario bundles the static planning tables. It is treated as immutable
// once validated; solvers only read from it.
type Scenario struct {
	Nodes   []Node        `json:"nodes" yaml:"nodes"`
	Periods []Period      `json:"periods" yaml:"periods"`
	Initial LoadingVector `json:"initial" yaml:"initial"`
	// MaxRamp bounds the period-over-period change of a node's loading.
	MaxRamp        int     `json:"max_ramp" yaml:"max_ramp"`
	WeeksPerPeriod float64 `json:"weeks_per_period" yaml:"weeks_per_period"`
	// OutputScale divides raw output to express it in forecast units.
	OutputScale float64 `json:"output_scale" yaml:"output_scale"`
}

// NodeIDs returns node identifiers in scenario order.
func (s *Scenario) NodeIDs() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Node looks up a node by ID.
func (s *Scenario) Node(id string) (Node, bool) {
	i := slices.IndexFunc(s.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// Clone returns a deep copy so callers can derive variants without touching
// a scenario other solvers may hold.
func (s *Scenario) Clone() *Scenario {
	cp := *s
	cp.Nodes = make([]Node, len(s.Nodes))
	for i, n := range s.Nodes {
		n.Yield = slices.Clone(n.Yield)
		cp.Nodes[i] = n
	}
	cp.Periods = slices.Clone(s.Periods)
	cp.Initial = s.Initial.Clone()
	return &cp
}

// Validate checks every table for consistency.
//
//nolint:gocyclo
func (s *Scenario) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: scenario is nil", ErrMalformedInput)
	}
	if len(s.Nodes) == 0 {
		return fmt.Errorf("%w: at least one node is required", ErrMalformedInput)
	}
	if len(s.Periods) == 0 {
		return fmt.Errorf("%w: at least one period is required", ErrMalformedInput)
	}
	if s.WeeksPerPeriod <= 0 {
		return fmt.Errorf("%w: weeks_per_period must be > 0 (got %v)", ErrMalformedInput, s.WeeksPerPeriod)
	}
	if s.OutputScale <= 0 {
		return fmt.Errorf("%w: output_scale must be > 0 (got %v)", ErrMalformedInput, s.OutputScale)
	}
	if s.MaxRamp < 0 {
		return fmt.Errorf("%w: max_ramp must be >= 0 (got %d)", ErrMalformedInput, s.MaxRamp)
	}
	seen := make(map[string]struct{}, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has no id", ErrMalformedInput, i)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node %s", ErrMalformedInput, n.ID)
		}
		seen[n.ID] = struct{}{}
		if n.ThroughputPerUnit <= 0 {
			return fmt.Errorf("%w: node %s throughput must be > 0", ErrMalformedInput, n.ID)
		}
		if len(n.Yield) != len(s.Periods) {
			return fmt.Errorf("%w: node %s has %d yields, want %d", ErrMalformedInput, n.ID, len(n.Yield), len(s.Periods))
		}
		for p, y := range n.Yield {
			if y < 0 || y > 1 {
				return fmt.Errorf("%w: node %s yield %v at period %d outside [0,1]", ErrMalformedInput, n.ID, y, p)
			}
		}
	}
	for i, p := range s.Periods {
		if p.Demand < 0 {
			return fmt.Errorf("%w: period %d demand must be >= 0", ErrMalformedInput, i)
		}
		if p.Tolerance <= 0 {
			return fmt.Errorf("%w: period %d tolerance must be > 0", ErrMalformedInput, i)
		}
	}
	for id, l := range s.Initial {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("%w: initial loading references unknown node %s", ErrMalformedInput, id)
		}
		if l < 0 {
			return fmt.Errorf("%w: initial loading for %s is negative", ErrMalformedInput, id)
		}
	}
	for _, n := range s.Nodes {
		if _, ok := s.Initial[n.ID]; !ok {
			return fmt.Errorf("%w: initial loading misses node %s", ErrMalformedInput, n.ID)
		}
	}
	return nil
}

// Package constraint holds the feasibility predicates shared by all solvers.
package constraint

import (
	"fmt"

	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/production"
)

// Band returns the inclusive demand band for a period.
func Band(s *model.Scenario, period int) (lo, hi float64) {
	p := s.Periods[period]
	return p.Lower(), p.Upper()
}

// WithinBand reports whether output lies inside the period's demand band.
func WithinBand(s *model.Scenario, output float64, period int) bool {
	lo, hi := Band(s, period)
	return lo <= output && output <= hi
}

// RampOK reports whether no node of cand moved more than maxRamp from prev.
func RampOK(prev, cand model.LoadingVector, maxRamp int) bool {
	for id, c := range cand {
		if abs(c-prev[id]) > maxRamp {
			return false
		}
	}
	for id, p := range prev {
		if _, ok := cand[id]; !ok && p > maxRamp {
			return false
		}
	}
	return true
}

// Feasible combines the band and ramp predicates for cand against the
// finalized vector of the previous period.
func Feasible(s *model.Scenario, prev, cand model.LoadingVector, period int) bool {
	return RampOK(prev, cand, s.MaxRamp) && WithinBand(s, production.Output(s, cand, period), period)
}

// Kind classifies a Violation.
type Kind string

const (
	KindBand Kind = "band"
	KindRamp Kind = "ramp"
)

// Violation describes one broken constraint in a plan.
type Violation struct {
	Period int
	Kind   Kind
	Node   string  // set for ramp violations
	Value  float64 // output for band, absolute change for ramp
}

func (v Violation) String() string {
	if v.Kind == KindRamp {
		return fmt.Sprintf("period %d: node %s ramps by %.0f", v.Period, v.Node, v.Value)
	}
	return fmt.Sprintf("period %d: output %.3f outside demand band", v.Period, v.Value)
}

// Violations lists every band and ramp breach of the plan, in period order.
// Period 0 is only checked against its band since it has no predecessor.
func Violations(s *model.Scenario, plan model.LoadingPlan) []Violation {
	var out []Violation
	for i, v := range plan {
		o := production.Output(s, v, i)
		if !WithinBand(s, o, i) {
			out = append(out, Violation{Period: i, Kind: KindBand, Value: o})
		}
		if i == 0 {
			continue
		}
		for _, n := range s.Nodes {
			d := abs(v[n.ID] - plan[i-1][n.ID])
			if d > s.MaxRamp {
				out = append(out, Violation{Period: i, Kind: KindRamp, Node: n.ID, Value: float64(d)})
			}
		}
	}
	return out
}

// OutOfBand returns the periods whose output misses the demand band.
func OutOfBand(s *model.Scenario, plan model.LoadingPlan) []int {
	var periods []int
	for i, v := range plan {
		if !WithinBand(s, production.Output(s, v, i), i) {
			periods = append(periods, i)
		}
	}
	return periods
}

// TotalRamp sums the absolute loading changes over all periods and nodes.
func TotalRamp(plan model.LoadingPlan) int {
	var total int
	for i := 1; i < len(plan); i++ {
		for id, l := range plan[i] {
			total += abs(l - plan[i-1][id])
		}
	}
	return total
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

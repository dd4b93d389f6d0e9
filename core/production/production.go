// Package production converts loading vectors into yield-adjusted output.
package production

import "github.com/kilianp07/loadplan/core/model"

// Output returns the total yield-adjusted output of v during period,
// expressed in forecast units (raw output divided by the scenario scale).
func Output(s *model.Scenario, v model.LoadingVector, period int) float64 {
	var out float64
	for _, n := range s.Nodes {
		out += float64(v[n.ID]) * s.WeeksPerPeriod * n.ThroughputPerUnit * n.Yield[period]
	}
	return out / s.OutputScale
}

// Efficiency is the per-unit weekly output of a node after yield, the key
// used to rank nodes.
func Efficiency(n model.Node, period int) float64 {
	return n.ThroughputPerUnit * n.Yield[period]
}

// UnitContribution is the output, in forecast units, added by one more
// loading unit on node n during period.
func UnitContribution(s *model.Scenario, n model.Node, period int) float64 {
	return n.ThroughputPerUnit * n.Yield[period] * s.WeeksPerPeriod / s.OutputScale
}

// PlanOutputs computes Output for every period of the plan.
func PlanOutputs(s *model.Scenario, plan model.LoadingPlan) []float64 {
	outs := make([]float64, len(plan))
	for i, v := range plan {
		outs[i] = Output(s, v, i)
	}
	return outs
}

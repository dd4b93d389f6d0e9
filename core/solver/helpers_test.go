package solver

import (
	"github.com/kilianp07/loadplan/core/model"
)

// singleNode builds a one-node scenario whose output equals the loading, so
// expected values can be read off directly.
func singleNode(initial, ramp int, tol float64, demand ...float64) *model.Scenario {
	s := &model.Scenario{
		Nodes:          []model.Node{{ID: "A", ThroughputPerUnit: 1}},
		Initial:        model.LoadingVector{"A": initial},
		MaxRamp:        ramp,
		WeeksPerPeriod: 1,
		OutputScale:    1,
	}
	for i, d := range demand {
		s.Periods = append(s.Periods, model.Period{Label: model.QuarterLabel(i, 2026), Demand: d, Tolerance: tol})
		s.Nodes[0].Yield = append(s.Nodes[0].Yield, 1)
	}
	return s
}

// truncate keeps the first n periods of a scenario.
func truncate(s *model.Scenario, n int) *model.Scenario {
	cp := s.Clone()
	cp.Periods = cp.Periods[:n]
	for i := range cp.Nodes {
		cp.Nodes[i].Yield = cp.Nodes[i].Yield[:n]
	}
	return cp
}

func vec(n1, n2, n3 int) model.LoadingVector {
	return model.LoadingVector{"Node1": n1, "Node2": n2, "Node3": n3}
}

package report

import (
	"context"
	"time"

	"github.com/kilianp07/loadplan/core/evaluator"
	"github.com/kilianp07/loadplan/core/model"
	corereport "github.com/kilianp07/loadplan/core/report"
	"github.com/kilianp07/loadplan/core/solver"
)

// greedySummary solves a two-period slice of the reference scenario.
func greedySummary(priced bool) corereport.Summary {
	s := model.ReferenceScenario()
	s.Periods = s.Periods[:2]
	for i := range s.Nodes {
		s.Nodes[i].Yield = s.Nodes[i].Yield[:2]
	}
	g, _ := solver.NewGreedy(solver.DefaultGreedyConfig())
	res, _ := g.Solve(context.Background(), s)
	sum := corereport.Summary{
		RunID:     "run-1",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Outcome:   solver.Outcome(res, nil),
		Scenario:  s,
		Result:    res,
	}
	if priced {
		e, _ := evaluator.New(evaluator.ReferenceTables(), nil)
		rep, _ := e.Evaluate(s, res.Plan)
		sum.Financials = &rep
	}
	return sum
}

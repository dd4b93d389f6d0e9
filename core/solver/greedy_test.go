package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadplan/core/constraint"
	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/production"
)

func newGreedy(t *testing.T, cfg GreedyConfig) *Greedy {
	t.Helper()
	g, err := NewGreedy(cfg)
	require.NoError(t, err)
	return g
}

func TestGreedyReferencePlan(t *testing.T) {
	s := model.ReferenceScenario()
	res, err := newGreedy(t, DefaultGreedyConfig()).Solve(context.Background(), s)
	require.NoError(t, err)

	want := model.LoadingPlan{
		vec(12000, 5000, 1000),
		vec(12000, 5776, 1000),
		vec(12826, 8276, 1000),
		vec(12826, 9893, 1000),
		vec(12826, 9893, 3268),
		vec(12826, 9893, 4778),
		vec(12826, 9893, 4778),
		vec(12826, 9893, 4778),
	}
	assert.Equal(t, want, res.Plan)
	assert.Equal(t, StatusFeasible, res.Status)
	assert.Empty(t, constraint.Violations(s, res.Plan))

	iters := make([]int, 0, 7)
	for _, st := range res.Periods[1:] {
		iters = append(iters, st.Iterations)
	}
	assert.Equal(t, []int{776, 3326, 1617, 2268, 1510, 0, 0}, iters)
	assert.Equal(t, 9497, res.Iterations)
}

func TestGreedyIterationBound(t *testing.T) {
	s := truncate(model.ReferenceScenario(), 2)
	res, err := newGreedy(t, DefaultGreedyConfig()).Solve(context.Background(), s)
	require.NoError(t, err)

	d0 := s.Periods[1].Demand - production.Output(s, s.Initial, 1)
	c := production.UnitContribution(s, s.Nodes[1], 1)
	bound := int(math.Ceil(math.Abs(d0) / c))
	assert.LessOrEqual(t, res.Periods[1].Iterations, bound)
	assert.InDelta(t, 25.4013, res.Periods[1].Output, 1e-4)
}

func TestGreedyRanking(t *testing.T) {
	s := model.ReferenceScenario()
	ids := func(ns []model.Node) []string {
		out := make([]string, len(ns))
		for i, n := range ns {
			out[i] = n.ID
		}
		return out
	}
	assert.Equal(t, []string{"Node2", "Node1", "Node3"}, ids(rankNodes(s, 1)))
	// Node3 overtakes Node2 once its yield reaches 0.65: 175500 > 147000.
	assert.Equal(t, []string{"Node2", "Node3", "Node1"}, ids(rankNodes(s, 3)))
	assert.Equal(t, []string{"Node3", "Node2", "Node1"}, ids(rankNodes(s, 4)))
}

func TestGreedyTieKeepsScenarioOrder(t *testing.T) {
	s := &model.Scenario{
		Nodes: []model.Node{
			{ID: "B", ThroughputPerUnit: 1, Yield: []float64{1, 1}},
			{ID: "A", ThroughputPerUnit: 1, Yield: []float64{1, 1}},
		},
		Periods: []model.Period{
			{Label: "p0", Demand: 0, Tolerance: 1},
			{Label: "p1", Demand: 1000, Tolerance: 10},
		},
		Initial:        model.LoadingVector{"A": 0, "B": 0},
		MaxRamp:        2500,
		WeeksPerPeriod: 1,
		OutputScale:    1,
	}
	res, err := newGreedy(t, DefaultGreedyConfig()).Solve(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, model.LoadingVector{"A": 0, "B": 990}, res.Plan[1])
}

func TestGreedyStallIsBestEffort(t *testing.T) {
	s := singleNode(1000, 2500, 100, 1000, 5000)
	res, err := newGreedy(t, DefaultGreedyConfig()).Solve(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, StatusBestEffort, res.Status)
	assert.False(t, res.Feasible())
	assert.Equal(t, []int{1}, res.OutOfBand)
	assert.Equal(t, 3500, res.Plan[1]["A"])
	assert.Equal(t, 2500, res.Periods[1].Iterations)
	assert.InDelta(t, 1500, res.Periods[1].Deficit, 1e-9)
}

func TestGreedyCorrectsSurplus(t *testing.T) {
	s := singleNode(1000, 2500, 100, 1000, 400)
	res, err := newGreedy(t, DefaultGreedyConfig()).Solve(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 500, res.Plan[1]["A"])
	assert.Equal(t, 500, res.Iterations)
	assert.True(t, res.Feasible())
}

func TestGreedyRampDownBound(t *testing.T) {
	s := singleNode(200, 100, 10, 200, 0)
	res, err := newGreedy(t, DefaultGreedyConfig()).Solve(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Plan[1]["A"])
	assert.Equal(t, StatusBestEffort, res.Status)
}

func TestGreedyIterationCap(t *testing.T) {
	s := singleNode(1000, 2500, 100, 1000, 3000)
	res, err := newGreedy(t, GreedyConfig{MaxIterations: 10}).Solve(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 1010, res.Plan[1]["A"])
	assert.Equal(t, 10, res.Iterations)
	assert.Equal(t, StatusBestEffort, res.Status)
}

func TestGreedyRejectsMalformedScenario(t *testing.T) {
	s := model.ReferenceScenario()
	s.MaxRamp = -1
	_, err := newGreedy(t, DefaultGreedyConfig()).Solve(context.Background(), s)
	assert.ErrorIs(t, err, model.ErrMalformedInput)

	_, err = NewGreedy(GreedyConfig{MaxIterations: -1})
	assert.Error(t, err)
}

func TestUnitStep(t *testing.T) {
	assert.Equal(t, 1, unitStep(5, 1))
	assert.Equal(t, -1, unitStep(-5, 1))
	assert.Equal(t, 0, unitStep(0.4, 1))
	assert.Equal(t, 0, unitStep(5, 0))
}

package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadplan/core/model"
)

func TestWithinBandEdges(t *testing.T) {
	s := model.ReferenceScenario()
	checks := []struct {
		output float64
		want   bool
	}{
		{25.4, true},
		{29.4, true},
		{27.4, true},
		{25.39, false},
		{29.41, false},
	}
	for _, c := range checks {
		if got := WithinBand(s, c.output, 1); got != c.want {
			t.Errorf("WithinBand(%v) = %v, want %v", c.output, got, c.want)
		}
	}
}

func TestRampOK(t *testing.T) {
	prev := model.LoadingVector{"A": 1000, "B": 5000}
	assert.True(t, RampOK(prev, model.LoadingVector{"A": 3500, "B": 2500}, 2500))
	assert.False(t, RampOK(prev, model.LoadingVector{"A": 3501, "B": 5000}, 2500))
	assert.False(t, RampOK(prev, model.LoadingVector{"A": 1000, "B": 2499}, 2500))
	// A node dropped from the candidate counts as loading zero.
	assert.False(t, RampOK(prev, model.LoadingVector{"A": 1000}, 2500))
	assert.True(t, RampOK(prev, model.LoadingVector{"A": 1000}, 5000))
}

func TestFeasibleReferencePeriodOne(t *testing.T) {
	s := model.ReferenceScenario()
	cand := model.LoadingVector{"Node1": 10500, "Node2": 6500, "Node3": 2000}
	assert.True(t, Feasible(s, s.Initial, cand, 1))
	// Output stays low when loading is unchanged.
	assert.False(t, Feasible(s, s.Initial, s.Initial, 1))
	// In band but ramps Node2 by 3000.
	jump := model.LoadingVector{"Node1": 12000, "Node2": 8000, "Node3": 0}
	assert.False(t, Feasible(s, s.Initial, jump, 1))
}

func TestViolationsAndTotalRamp(t *testing.T) {
	s := model.ReferenceScenario()
	plan := model.LoadingPlan{
		s.Initial,
		{"Node1": 10500, "Node2": 6500, "Node3": 2000},
		{"Node1": 10500, "Node2": 9100, "Node3": 2000},
	}
	s.Periods = s.Periods[:3]
	for i := range s.Nodes {
		s.Nodes[i].Yield = s.Nodes[i].Yield[:3]
	}
	require.NoError(t, s.Validate())

	v := Violations(s, plan)
	require.Len(t, v, 2)
	assert.Equal(t, KindBand, v[0].Kind)
	assert.Equal(t, 2, v[0].Period)
	assert.Equal(t, KindRamp, v[1].Kind)
	assert.Equal(t, "Node2", v[1].Node)
	assert.Equal(t, 2600.0, v[1].Value)
	assert.Contains(t, v[1].String(), "Node2")

	assert.Equal(t, []int{2}, OutOfBand(s, plan))
	assert.Equal(t, 1500+1500+1000+2600, TotalRamp(plan))
}

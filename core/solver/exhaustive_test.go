package solver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadplan/core/constraint"
	"github.com/kilianp07/loadplan/core/model"
)

func newExhaustive(t *testing.T, cfg ExhaustiveConfig) *Exhaustive {
	t.Helper()
	e, err := NewExhaustive(cfg)
	require.NoError(t, err)
	return e
}

func TestExhaustiveReferencePlan(t *testing.T) {
	s := model.ReferenceScenario()
	res, err := newExhaustive(t, DefaultExhaustiveConfig()).Solve(context.Background(), s)
	require.NoError(t, err)

	want := model.LoadingPlan{
		vec(12000, 5000, 1000),
		vec(10500, 6500, 2000),
		vec(11000, 8000, 3500),
		vec(9500, 8500, 5000),
		vec(8000, 9500, 6500),
		vec(6500, 9500, 8000),
		vec(5000, 8000, 9000),
		vec(3500, 6500, 10500),
	}
	if diff := cmp.Diff(want, res.Plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, StatusFeasible, res.Status)
	assert.Empty(t, res.OutOfBand)
	assert.Empty(t, constraint.Violations(s, res.Plan))

	evals := make([]int, 0, 7)
	for _, st := range res.Periods[1:] {
		evals = append(evals, st.Evaluations)
	}
	assert.Equal(t, []int{41, 245, 35, 42, 28, 6, 7}, evals)
	assert.Equal(t, 404, res.Evaluations)
	assert.Equal(t, 26500, res.TotalRamp)
	assert.InDelta(t, 25.5255, res.Periods[1].Output, 1e-9)
}

func TestExhaustiveEndToEndPeriodOne(t *testing.T) {
	s := truncate(model.ReferenceScenario(), 2)
	res, err := newExhaustive(t, DefaultExhaustiveConfig()).Solve(context.Background(), s)
	require.NoError(t, err)
	out := res.Periods[1].Output
	assert.GreaterOrEqual(t, out, 25.4)
	assert.LessOrEqual(t, out, 29.4)
	assert.True(t, constraint.RampOK(res.Plan[0], res.Plan[1], 2500))
}

func TestExhaustiveDeterministic(t *testing.T) {
	s := model.ReferenceScenario()
	e := newExhaustive(t, DefaultExhaustiveConfig())
	a, err := e.Solve(context.Background(), s)
	require.NoError(t, err)
	b, err := e.Solve(context.Background(), s)
	require.NoError(t, err)

	ja, _ := json.Marshal(a.Plan)
	jb, _ := json.Marshal(b.Plan)
	assert.Equal(t, string(ja), string(jb))
}

func TestExhaustiveNoLookahead(t *testing.T) {
	s := model.ReferenceScenario()
	e := newExhaustive(t, DefaultExhaustiveConfig())
	full, err := e.Solve(context.Background(), s)
	require.NoError(t, err)
	short, err := e.Solve(context.Background(), truncate(s, 4))
	require.NoError(t, err)
	assert.Equal(t, full.Plan[:4], short.Plan)
}

// A radius below the ramp bound can miss vectors the ramp allows.
func TestExhaustiveRadiusBelowRampReportsInfeasible(t *testing.T) {
	s := singleNode(1000, 2500, 100, 1000, 3000)
	require.True(t, constraint.Feasible(s, s.Initial, model.LoadingVector{"A": 3000}, 1))

	_, err := newExhaustive(t, DefaultExhaustiveConfig()).Solve(context.Background(), s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInfeasiblePeriod))
	var ip *InfeasiblePeriodError
	require.ErrorAs(t, err, &ip)
	assert.Equal(t, 1, ip.Period)
	assert.Equal(t, "Q2'26", ip.Label)
	assert.Equal(t, 6, ip.Evaluated)

	wide := newExhaustive(t, ExhaustiveConfig{Radius: 2500, Step: 500})
	res, err := wide.Solve(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 3000, res.Plan[1]["A"])
}

func TestExhaustiveAbortsWithoutPartialPlan(t *testing.T) {
	// Period 1 is reachable, period 2 is not.
	s := singleNode(1000, 2500, 100, 1000, 2000, 9000)
	res, err := newExhaustive(t, DefaultExhaustiveConfig()).Solve(context.Background(), s)
	var ip *InfeasiblePeriodError
	require.ErrorAs(t, err, &ip)
	assert.Equal(t, 2, ip.Period)
	assert.Nil(t, res.Plan)
}

func TestExhaustiveSearchSpaceGuard(t *testing.T) {
	e := newExhaustive(t, ExhaustiveConfig{Radius: 1500, Step: 500, MaxCandidates: 100})
	_, err := e.Solve(context.Background(), model.ReferenceScenario())
	assert.ErrorIs(t, err, ErrSearchSpaceTooLarge)
}

func TestExhaustiveRejectsMalformedScenario(t *testing.T) {
	s := model.ReferenceScenario()
	s.Periods[1].Tolerance = 0
	_, err := newExhaustive(t, DefaultExhaustiveConfig()).Solve(context.Background(), s)
	assert.ErrorIs(t, err, model.ErrMalformedInput)
}

func TestExhaustiveHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newExhaustive(t, DefaultExhaustiveConfig()).Solve(ctx, model.ReferenceScenario())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExhaustiveConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultExhaustiveConfig().Validate())
	assert.Error(t, ExhaustiveConfig{Radius: 100, Step: 0}.Validate())
	assert.Error(t, ExhaustiveConfig{Radius: -1, Step: 10}.Validate())
	assert.Error(t, ExhaustiveConfig{Radius: 1, Step: 1, MaxCandidates: -1}.Validate())
	_, err := NewExhaustive(ExhaustiveConfig{})
	assert.Error(t, err)
}

package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/loadplan/core/constraint"
	"github.com/kilianp07/loadplan/core/model"
)

// ExhaustiveConfig sets the grid searched around the previous period.
type ExhaustiveConfig struct {
	// Radius is the largest change tried per node. Values below the
	// scenario's MaxRamp leave part of the ramp window unexplored.
	Radius int `json:"radius"`
	Step   int `json:"step"`
	// MaxCandidates caps the grid size per period; 0 disables the guard.
	MaxCandidates int `json:"max_candidates"`
}

// DefaultExhaustiveConfig returns the 1500/500 grid, 7 values per node.
func DefaultExhaustiveConfig() ExhaustiveConfig {
	return ExhaustiveConfig{Radius: 1500, Step: 500, MaxCandidates: 1_000_000}
}

// Validate requires a positive step and non-negative radius and cap.
func (c ExhaustiveConfig) Validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("exhaustive step must be > 0 (got %d)", c.Step)
	}
	if c.Radius < 0 {
		return fmt.Errorf("exhaustive radius must be >= 0 (got %d)", c.Radius)
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("exhaustive max_candidates must be >= 0 (got %d)", c.MaxCandidates)
	}
	return nil
}

// Exhaustive enumerates a fixed grid around the previous period's loading
// and keeps the first feasible candidate. The grid grows as
// ((2*radius/step)+1)^nodes, so it only suits a handful of nodes.
type Exhaustive struct {
	cfg  ExhaustiveConfig
	opts options
}

// NewExhaustive validates cfg and returns the solver.
func NewExhaustive(cfg ExhaustiveConfig, opts ...Option) (*Exhaustive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Exhaustive{cfg: cfg, opts: buildOptions(opts)}, nil
}

func (e *Exhaustive) Name() string { return MethodExhaustive }

// Solve returns a fully feasible plan or an *InfeasiblePeriodError for the
// first period without a feasible grid point.
func (e *Exhaustive) Solve(ctx context.Context, s *model.Scenario) (res Result, err error) {
	start := time.Now()
	defer func() { observe(e.Name(), res, err, time.Since(start)) }()

	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	res = Result{Method: e.Name(), Plan: make(model.LoadingPlan, 1, len(s.Periods))}
	res.Plan[0] = s.Initial.Clone()
	res.Periods = append(res.Periods, periodStat(s, res.Plan[0], 0))

	for p := 1; p < len(s.Periods); p++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		cand, evaluated, err := e.searchPeriod(s, res.Plan[p-1], p)
		res.Evaluations += evaluated
		if err != nil {
			e.opts.log.Warnf("exhaustive: %v", err)
			return Result{}, err
		}
		res.Plan = append(res.Plan, cand)
		st := periodStat(s, cand, p)
		st.Evaluations = evaluated
		res.Periods = append(res.Periods, st)
		e.opts.log.Debugw("exhaustive period resolved", map[string]any{
			"period": p, "evaluated": evaluated, "output": st.Output,
		})
	}
	finish(&res, start)
	return res, nil
}

// axes returns, per node in scenario order, the values tried for period p.
func (e *Exhaustive) axes(s *model.Scenario, prev model.LoadingVector) ([][]int, error) {
	axes := make([][]int, len(s.Nodes))
	size := 1
	for i, n := range s.Nodes {
		lo := max(0, prev[n.ID]-e.cfg.Radius)
		hi := prev[n.ID] + e.cfg.Radius
		for v := lo; v <= hi; v += e.cfg.Step {
			axes[i] = append(axes[i], v)
		}
		size *= len(axes[i])
		if e.cfg.MaxCandidates > 0 && size > e.cfg.MaxCandidates {
			return nil, fmt.Errorf("%w: more than %d candidates per period", ErrSearchSpaceTooLarge, e.cfg.MaxCandidates)
		}
	}
	return axes, nil
}

// searchPeriod walks the grid with the first node outermost and the last
// node innermost, returning the first feasible candidate.
func (e *Exhaustive) searchPeriod(s *model.Scenario, prev model.LoadingVector, p int) (model.LoadingVector, int, error) {
	axes, err := e.axes(s, prev)
	if err != nil {
		return nil, 0, err
	}
	idx := make([]int, len(axes))
	cand := make(model.LoadingVector, len(axes))
	evaluated := 0
	for {
		for i, n := range s.Nodes {
			cand[n.ID] = axes[i][idx[i]]
		}
		evaluated++
		if constraint.Feasible(s, prev, cand, p) {
			return cand.Clone(), evaluated, nil
		}
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(axes[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return nil, evaluated, &InfeasiblePeriodError{Period: p, Label: s.Periods[p].Label, Evaluated: evaluated}
}

package solver

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/production"
)

// GreedyConfig bounds the deficit-correction loop.
type GreedyConfig struct {
	// MaxIterations caps unit moves per period; 0 means no cap.
	MaxIterations int `json:"max_iterations"`
}

// DefaultGreedyConfig returns an uncapped configuration.
func DefaultGreedyConfig() GreedyConfig { return GreedyConfig{} }

// Validate rejects a negative iteration cap.
func (c GreedyConfig) Validate() error {
	if c.MaxIterations < 0 {
		return fmt.Errorf("greedy max_iterations must be >= 0 (got %d)", c.MaxIterations)
	}
	return nil
}

// Greedy closes each period's demand gap by moving the most efficient node
// one unit at a time. It never fails on a stall: the last vector is kept and
// the plan is marked StatusBestEffort.
type Greedy struct {
	cfg  GreedyConfig
	opts options
}

// NewGreedy validates cfg and returns the solver.
func NewGreedy(cfg GreedyConfig, opts ...Option) (*Greedy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Greedy{cfg: cfg, opts: buildOptions(opts)}, nil
}

func (g *Greedy) Name() string { return MethodGreedy }

// Solve adjusts each period in turn from the previous one.
func (g *Greedy) Solve(ctx context.Context, s *model.Scenario) (res Result, err error) {
	start := time.Now()
	defer func() { observe(g.Name(), res, err, time.Since(start)) }()

	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	res = Result{Method: g.Name(), Plan: make(model.LoadingPlan, 1, len(s.Periods))}
	res.Plan[0] = s.Initial.Clone()
	res.Periods = append(res.Periods, periodStat(s, res.Plan[0], 0))

	for p := 1; p < len(s.Periods); p++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		cur, iters := g.adjust(s, res.Plan[p-1], p)
		res.Iterations += iters
		res.Plan = append(res.Plan, cur)
		st := periodStat(s, cur, p)
		st.Iterations = iters
		res.Periods = append(res.Periods, st)
		if !st.InBand {
			g.opts.log.Warnf("greedy: period %d (%s) stalled at output %.3f, deficit %.3f",
				p, s.Periods[p].Label, st.Output, st.Deficit)
		}
	}
	finish(&res, start)
	return res, nil
}

// rankNodes orders nodes by descending efficiency for period p. The sort is
// stable so scenario order breaks ties.
func rankNodes(s *model.Scenario, p int) []model.Node {
	ranked := slices.Clone(s.Nodes)
	slices.SortStableFunc(ranked, func(a, b model.Node) int {
		ea, eb := production.Efficiency(a, p), production.Efficiency(b, p)
		switch {
		case ea > eb:
			return -1
		case ea < eb:
			return 1
		}
		return 0
	})
	return ranked
}

// adjust runs the deficit loop for one period starting from prev.
func (g *Greedy) adjust(s *model.Scenario, prev model.LoadingVector, p int) (model.LoadingVector, int) {
	return correct(s, prev, prev.Clone(), p, g.cfg.MaxIterations)
}

// correct moves cur one unit at a time, most efficient node first, until
// its output is within the band of period p or no move shrinks the gap.
// The ramp window is anchored to prev, not to the partially adjusted
// vector. maxIter caps the moves; 0 means no cap.
func correct(s *model.Scenario, prev, cur model.LoadingVector, p, maxIter int) (model.LoadingVector, int) {
	target := s.Periods[p].Demand
	tol := s.Periods[p].Tolerance
	deficit := target - production.Output(s, cur, p)
	ranked := rankNodes(s, p)

	iters := 0
	for math.Abs(deficit) > tol {
		if maxIter > 0 && iters >= maxIter {
			break
		}
		moved := false
		for _, n := range ranked {
			step := unitStep(deficit, production.UnitContribution(s, n, p))
			if step == 0 {
				continue
			}
			next := cur[n.ID] + step
			if next < 0 || abs(next-prev[n.ID]) > s.MaxRamp {
				continue
			}
			cur[n.ID] = next
			deficit = target - production.Output(s, cur, p)
			iters++
			moved = true
			break
		}
		if !moved {
			break
		}
	}
	return cur, iters
}

// unitStep returns +1 or -1 when moving one unit of a node contributing c
// strictly shrinks |deficit|, and 0 otherwise.
func unitStep(deficit, c float64) int {
	if c <= 0 {
		return 0
	}
	step := 1
	if deficit < 0 {
		step = -1
	}
	if math.Abs(deficit-float64(step)*c) >= math.Abs(deficit) {
		return 0
	}
	return step
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

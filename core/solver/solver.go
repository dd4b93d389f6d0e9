package solver

import (
	"context"
	"time"

	"github.com/kilianp07/loadplan/core/constraint"
	"github.com/kilianp07/loadplan/core/logger"
	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/production"
)

// Method names used by the registry and on the command line.
const (
	MethodExhaustive = "exhaustive"
	MethodGreedy     = "greedy"
	MethodLPBand     = "lp-band"
	MethodLPTarget   = "lp-target"
)

// Methods lists every built-in strategy in presentation order.
var Methods = []string{MethodExhaustive, MethodGreedy, MethodLPBand, MethodLPTarget}

// Solver produces a loading plan for a scenario.
type Solver interface {
	Name() string
	Solve(ctx context.Context, s *model.Scenario) (Result, error)
}

// Status tells whether every period of a returned plan meets its demand band.
type Status string

const (
	StatusFeasible Status = "feasible"
	// StatusBestEffort marks a plan accepted although some periods are out
	// of band. OutOfBand lists them.
	StatusBestEffort Status = "best_effort"
)

// PeriodStat records how a period was resolved.
type PeriodStat struct {
	Period      int     `json:"period"`
	Output      float64 `json:"output"`
	Deficit     float64 `json:"deficit"`
	InBand      bool    `json:"in_band"`
	Evaluations int     `json:"evaluations,omitempty"`
	Iterations  int     `json:"iterations,omitempty"`
}

// Result is the outcome of a successful Solve.
type Result struct {
	Method      string            `json:"method"`
	Plan        model.LoadingPlan `json:"plan"`
	Status      Status            `json:"status"`
	OutOfBand   []int             `json:"out_of_band,omitempty"`
	Periods     []PeriodStat      `json:"periods"`
	TotalRamp   int               `json:"total_ramp"`
	Evaluations int               `json:"evaluations"`
	Iterations  int               `json:"iterations"`
	Duration    time.Duration     `json:"duration"`
}

// Feasible reports whether all periods are within their band.
func (r Result) Feasible() bool { return r.Status == StatusFeasible }

type options struct {
	log     logger.Logger
	backend Backend
}

// Option customises a solver.
type Option func(*options)

// WithLogger injects a logger; solvers are silent by default.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithBackend replaces the LP backend. Ignored by the search solvers.
func WithBackend(b Backend) Option {
	return func(o *options) {
		if b != nil {
			o.backend = b
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: logger.Nop{}, backend: SimplexBackend{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func periodStat(s *model.Scenario, v model.LoadingVector, p int) PeriodStat {
	out := production.Output(s, v, p)
	return PeriodStat{
		Period:  p,
		Output:  out,
		Deficit: s.Periods[p].Demand - out,
		InBand:  constraint.WithinBand(s, out, p),
	}
}

// finish fills the plan-level summary fields from the per-period stats.
// Period 0 is a fixed input and never makes a plan best effort.
func finish(res *Result, start time.Time) {
	res.OutOfBand = nil
	for _, st := range res.Periods {
		if !st.InBand && st.Period > 0 {
			res.OutOfBand = append(res.OutOfBand, st.Period)
		}
	}
	res.Status = StatusFeasible
	if len(res.OutOfBand) > 0 {
		res.Status = StatusBestEffort
	}
	res.TotalRamp = constraint.TotalRamp(res.Plan)
	res.Duration = time.Since(start)
}

package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/loadplan/core/model"
)

// Backend solves a declarative Model and returns one value per variable.
type Backend interface {
	Solve(ctx context.Context, m *Model) ([]float64, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, m *Model) ([]float64, error)

func (f BackendFunc) Solve(ctx context.Context, m *Model) ([]float64, error) { return f(ctx, m) }

// SimplexBackend solves the continuous relaxation with gonum's simplex.
// Integer flags are ignored; LP recovers integers afterwards.
type SimplexBackend struct {
	Tol float64
}

// simplex points to the function used to run the simplex. It can be
// overridden in tests to simulate solver failures.
var simplex = lp.Simplex

func (b SimplexBackend) Solve(ctx context.Context, m *Model) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tol := b.Tol
	if tol <= 0 {
		tol = 1e-7
	}
	c, g, h, a, beq := lower(m)
	cStd, aStd, bStd := lp.Convert(c, g, h, a, beq)
	_, sol, err := simplex(cStd, aStd, bStd, tol, nil)
	if err != nil {
		return nil, err
	}
	// Convert splits every free variable into x⁺ and x⁻ placed first.
	n := len(c)
	x := make([]float64, n)
	for i := range x {
		x[i] = sol[i] - sol[n+i]
	}
	return x, nil
}

// lower writes m as minimise cᵀx s.t. Gx <= h, Ax = b. Non-negativity is
// added as -x <= 0 rows because lp.Convert treats x as free.
func lower(m *Model) (c []float64, g *mat.Dense, h []float64, a mat.Matrix, b []float64) {
	n := len(m.Variables)
	c = make([]float64, n)
	for _, t := range m.Objective {
		c[t.Var] += t.Coef
	}
	var ineq, eq []Constraint
	for _, con := range m.Constraints {
		if con.Sense == Equal {
			eq = append(eq, con)
		} else {
			ineq = append(ineq, con)
		}
	}
	g = mat.NewDense(len(ineq)+n, n, nil)
	h = make([]float64, len(ineq)+n)
	for r, con := range ineq {
		sign := 1.0
		if con.Sense == GreaterEq {
			sign = -1
		}
		for _, t := range con.Terms {
			g.Set(r, t.Var, g.At(r, t.Var)+sign*t.Coef)
		}
		h[r] = sign * con.RHS
	}
	for j := 0; j < n; j++ {
		g.Set(len(ineq)+j, j, -1)
	}
	if len(eq) == 0 {
		return c, g, h, nil, nil
	}
	ad := mat.NewDense(len(eq), n, nil)
	b = make([]float64, len(eq))
	for r, con := range eq {
		for _, t := range con.Terms {
			ad.Set(r, t.Var, ad.At(r, t.Var)+t.Coef)
		}
		b[r] = con.RHS
	}
	return c, g, h, ad, b
}

// LPConfig configures the declarative solvers.
type LPConfig struct {
	// Tolerance is passed to the simplex backend.
	Tolerance float64 `json:"tolerance"`
}

// DefaultLPConfig matches the tolerance used by the simplex backend.
func DefaultLPConfig() LPConfig { return LPConfig{Tolerance: 1e-7} }

// Validate rejects a negative tolerance.
func (c LPConfig) Validate() error {
	if c.Tolerance < 0 {
		return fmt.Errorf("lp tolerance must be >= 0 (got %v)", c.Tolerance)
	}
	return nil
}

// LP builds the declarative model, hands it to a Backend and turns the
// continuous answer into an integer plan.
type LP struct {
	variant Variant
	cfg     LPConfig
	opts    options
}

// NewLP returns a solver for the given model variant. Without WithBackend a
// SimplexBackend using cfg.Tolerance is installed.
func NewLP(variant Variant, cfg LPConfig, opts ...Option) (*LP, error) {
	if variant != VariantBand && variant != VariantTarget {
		return nil, fmt.Errorf("unknown model variant %q", variant)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(append([]Option{WithBackend(SimplexBackend{Tol: cfg.Tolerance})}, opts...))
	return &LP{variant: variant, cfg: cfg, opts: o}, nil
}

func (l *LP) Name() string { return "lp-" + string(l.variant) }

// Solve runs the backend for the whole horizon. The band variant first
// tries a band narrowed by the rounding margin and falls back to the plain
// band when the backend rejects it. Backend failures are wrapped in
// ErrBackend; a plan that misses a band after rounding and repair is
// returned with StatusBestEffort.
func (l *LP) Solve(ctx context.Context, s *model.Scenario) (res Result, err error) {
	start := time.Now()
	defer func() { observe(l.Name(), res, err, time.Since(start)) }()

	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	margin := 0.0
	if l.variant == VariantBand {
		margin = roundingMargin(s)
	}
	m, x, err := l.run(ctx, s, margin)
	if err != nil && margin > 0 && ctx.Err() == nil {
		l.opts.log.Warnf("%s: narrowed band rejected (%v), retrying without margin", l.Name(), err)
		m, x, err = l.run(ctx, s, 0)
	}
	if err != nil {
		return Result{}, err
	}

	res = Result{Method: l.Name(), Plan: recoverPlan(s, m, x)}
	for p, v := range res.Plan {
		res.Periods = append(res.Periods, periodStat(s, v, p))
	}
	finish(&res, start)
	if !res.Feasible() {
		l.opts.log.Warnf("%s: periods %v out of band after rounding", l.Name(), res.OutOfBand)
	}
	return res, nil
}

// run builds the model with margin and hands it to the backend.
func (l *LP) run(ctx context.Context, s *model.Scenario, margin float64) (*Model, []float64, error) {
	m, err := BuildModel(s, l.variant, margin)
	if err != nil {
		return nil, nil, err
	}
	l.opts.log.Debugf("%s: %d variables, %d constraints, margin %.4f", l.Name(), len(m.Variables), len(m.Constraints), margin)
	x, err := l.opts.backend.Solve(ctx, m)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrBackend, l.Name(), err)
	}
	if len(x) != len(m.Variables) {
		return nil, nil, fmt.Errorf("%w: %s: got %d values for %d variables", ErrBackend, l.Name(), len(x), len(m.Variables))
	}
	return m, x, nil
}

// recoverPlan reads load variables back into integer vectors. Values within
// 1e-6 of an integer snap to it, others are truncated; each value is then
// clamped into the ramp window of the already recovered previous period.
// A period pushed out of its band by rounding is repaired with unit moves
// inside the same window.
func recoverPlan(s *model.Scenario, m *Model, x []float64) model.LoadingPlan {
	plan := make(model.LoadingPlan, len(s.Periods))
	plan[0] = s.Initial.Clone()
	for p := 1; p < len(s.Periods); p++ {
		v := make(model.LoadingVector, len(s.Nodes))
		for _, n := range s.Nodes {
			i, _ := m.LoadVar(n.ID, p)
			prev := plan[p-1][n.ID]
			l := toInt(x[i])
			l = min(max(l, prev-s.MaxRamp, 0), prev+s.MaxRamp)
			v[n.ID] = l
		}
		plan[p], _ = correct(s, plan[p-1], v, p, 0)
	}
	return plan
}

func toInt(f float64) int {
	if r := math.Round(f); math.Abs(f-r) < 1e-6 {
		return int(r)
	}
	return int(math.Floor(f))
}

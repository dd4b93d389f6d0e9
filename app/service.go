// Package app wires configuration, solvers, the evaluator, run history and
// report sinks into the operations exposed by the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/loadplan/config"
	"github.com/kilianp07/loadplan/core/evaluator"
	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/monitoring"
	"github.com/kilianp07/loadplan/core/report"
	"github.com/kilianp07/loadplan/core/runlog"
	"github.com/kilianp07/loadplan/core/solver"
	"github.com/kilianp07/loadplan/infra/logger"
	// Registers the influx and mqtt sinks.
	_ "github.com/kilianp07/loadplan/infra/report"
)

// Run is the outcome of one solver invocation. Err is set when no plan was
// produced; Financials is nil in that case.
type Run struct {
	ID         string
	Method     string
	Outcome    string
	Result     solver.Result
	Financials *evaluator.Report
	Err        error
}

// Service orchestrates solving, pricing and recording plans.
type Service struct {
	cfg      *config.Config
	solvers  *solver.Registry
	eval     *evaluator.Evaluator
	store    runlog.Store
	sink     report.Sink
	log      logger.Logger
	gatherer prometheus.Gatherer
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithStore replaces the configured run store.
func WithStore(st runlog.Store) Option { return func(s *Service) { s.store = st } }

// WithSink replaces the configured report sinks.
func WithSink(sk report.Sink) Option { return func(s *Service) { s.sink = sk } }

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }

// WithGatherer sets the registry dumped by WriteMetrics.
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Service) { s.gatherer = g } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:      cfg,
		log:      logger.New("service"),
		gatherer: prometheus.DefaultGatherer,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.solvers = solver.NewRegistry(cfg.Solver, solver.WithLogger(s.log))

	ev, err := evaluator.New(cfg.Evaluator, s.log)
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	s.eval = ev
	if s.store == nil {
		st, err := runlog.Open(cfg.History)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		s.store = st
	}
	if s.sink == nil {
		sk, err := report.NewSink(cfg.Sinks)
		if err != nil {
			_ = s.store.Close()
			return nil, fmt.Errorf("sinks: %w", err)
		}
		s.sink = sk
	}
	return s, nil
}

// Scenario returns the scenario every method is solved against.
func (s *Service) Scenario() *model.Scenario { return s.cfg.Scenario }

// Methods lists the available solver names.
func (s *Service) Methods() []string { return s.solvers.Names() }

// Plan solves the scenario with method, prices the plan, then records and
// publishes the run. conf overrides the method's configured settings. The
// returned error is the solver's; recording failures are only logged.
func (s *Service) Plan(ctx context.Context, method string, conf map[string]any) (Run, error) {
	if method == "" {
		method = s.cfg.Solver.Method
	}
	sv, err := s.solvers.New(method, conf)
	if err != nil {
		return Run{Method: method, Outcome: "error", Err: err}, err
	}
	run := s.solve(ctx, sv)
	s.record(ctx, run)
	return run, run.Err
}

// Compare runs every method concurrently. Individual failures are reported
// in the returned runs; only a cancelled context fails the comparison.
func (s *Service) Compare(ctx context.Context, methods []string) ([]Run, error) {
	if len(methods) == 0 {
		methods = s.solvers.Names()
	}
	solvers := make([]solver.Solver, len(methods))
	for i, m := range methods {
		sv, err := s.solvers.New(m, nil)
		if err != nil {
			return nil, err
		}
		solvers[i] = sv
	}

	runs := make([]Run, len(methods))
	g, gctx := errgroup.WithContext(ctx)
	for i, sv := range solvers {
		g.Go(func() error {
			runs[i] = s.solve(gctx, sv)
			if errors.Is(runs[i].Err, context.Canceled) || errors.Is(runs[i].Err, context.DeadlineExceeded) {
				return runs[i].Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, r := range runs {
		s.record(ctx, r)
	}
	return runs, nil
}

// History returns recorded runs.
func (s *Service) History(ctx context.Context, q runlog.RunQuery) ([]runlog.RunRecord, error) {
	return s.store.Query(ctx, q)
}

// WriteMetrics dumps the gatherer to the configured textfile, if any.
func (s *Service) WriteMetrics() error {
	if s.cfg.Metrics.Textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(s.cfg.Metrics.Textfile, s.gatherer)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	return errors.Join(s.sink.Close(), s.store.Close())
}

func (s *Service) solve(ctx context.Context, sv solver.Solver) Run {
	run := Run{ID: uuid.NewString(), Method: sv.Name()}
	res, err := sv.Solve(ctx, s.cfg.Scenario)
	run.Result, run.Err = res, err
	run.Outcome = solver.Outcome(res, err)
	if err != nil {
		s.log.Warnf("%s: %v", sv.Name(), err)
		if !errors.Is(err, solver.ErrInfeasiblePeriod) && ctx.Err() == nil {
			monitoring.CaptureException(err, map[string]string{monitoring.TagMethod: sv.Name(), monitoring.TagRunID: run.ID})
		}
		return run
	}
	fin, err := s.eval.Evaluate(s.cfg.Scenario, res.Plan)
	if err != nil {
		s.log.Errorf("%s: evaluate plan: %v", sv.Name(), err)
		return run
	}
	run.Financials = &fin
	s.log.Infof("%s: %s, total ramp %d, net %.1f $M", sv.Name(), run.Outcome, res.TotalRamp, fin.Net)
	return run
}

func (s *Service) record(ctx context.Context, run Run) {
	ts := s.now()
	rec := runlog.RunRecord{
		ID:          run.ID,
		Timestamp:   ts,
		Method:      run.Method,
		Outcome:     run.Outcome,
		Plan:        run.Result.Plan,
		OutOfBand:   run.Result.OutOfBand,
		TotalRamp:   run.Result.TotalRamp,
		Evaluations: run.Result.Evaluations,
		Iterations:  run.Result.Iterations,
		DurationMS:  float64(run.Result.Duration) / float64(time.Millisecond),
	}
	sum := report.Summary{
		RunID:      run.ID,
		Timestamp:  ts,
		Outcome:    run.Outcome,
		Scenario:   s.cfg.Scenario,
		Result:     run.Result,
		Financials: run.Financials,
	}
	if run.Err != nil {
		rec.Error = run.Err.Error()
		sum.Error = rec.Error
		sum.Result.Method = run.Method
	}
	if f := run.Financials; f != nil {
		rec.Revenue, rec.Capex, rec.Net = f.Revenue, f.Capex, f.Net
	}
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("history append for %s: %v", run.ID, err)
	}
	if err := s.sink.Publish(ctx, sum); err != nil {
		s.log.Errorf("publish %s: %v", run.ID, err)
	}
}

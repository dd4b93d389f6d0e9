package solver

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	solveDuration *prometheus.HistogramVec
	solveOutcomes *prometheus.CounterVec
	searchSteps   *prometheus.CounterVec
	planRamp      *prometheus.GaugeVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.GaugeVec) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loadplan_solve_duration_seconds",
			Help:    "Wall time of one solver run",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadplan_solve_outcomes_total",
			Help: "Solver runs by outcome (feasible, best_effort, infeasible, error)",
		},
		[]string{"method", "outcome"},
	)
	steps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadplan_search_steps_total",
			Help: "Grid candidates evaluated or greedy unit moves applied",
		},
		[]string{"method", "kind"},
	)
	ramp := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loadplan_plan_total_ramp",
			Help: "Sum of absolute loading changes of the last plan per method",
		},
		[]string{"method"},
	)
	return dur, outcomes, steps, ramp
}

func init() {
	solveDuration, solveOutcomes, searchSteps, planRamp = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers solver metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(solveDuration, solveOutcomes, searchSteps, planRamp)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	solveDuration, solveOutcomes, searchSteps, planRamp = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

// Outcome labels a finished run for metrics and run history.
func Outcome(res Result, err error) string {
	switch {
	case errors.Is(err, ErrInfeasiblePeriod):
		return "infeasible"
	case err != nil:
		return "error"
	}
	return string(res.Status)
}

func observe(method string, res Result, err error, d time.Duration) {
	solveDuration.WithLabelValues(method).Observe(d.Seconds())
	solveOutcomes.WithLabelValues(method, Outcome(res, err)).Inc()
	if res.Evaluations > 0 {
		searchSteps.WithLabelValues(method, "evaluation").Add(float64(res.Evaluations))
	}
	if res.Iterations > 0 {
		searchSteps.WithLabelValues(method, "iteration").Add(float64(res.Iterations))
	}
	if err == nil {
		planRamp.WithLabelValues(method).Set(float64(res.TotalRamp))
	}
}

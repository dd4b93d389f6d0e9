// Package report fans finished runs out to external sinks.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/loadplan/core/evaluator"
	"github.com/kilianp07/loadplan/core/factory"
	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/solver"
)

// Summary is what a sink receives once a run has finished. Financials is nil
// when the run failed or was not priced.
type Summary struct {
	RunID      string
	Timestamp  time.Time
	Outcome    string
	Error      string
	Scenario   *model.Scenario
	Result     solver.Result
	Financials *evaluator.Report
}

// Sink publishes run summaries.
type Sink interface {
	Publish(ctx context.Context, s Summary) error
	Close() error
}

// NopSink drops every summary.
type NopSink struct{}

func (NopSink) Publish(context.Context, Summary) error { return nil }
func (NopSink) Close() error                           { return nil }

// MultiSink forwards to every sink and joins their errors.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) Publish(ctx context.Context, s Summary) error {
	var errs []error
	for _, sk := range m.Sinks {
		if err := sk.Publish(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, sk := range m.Sinks {
		errs = append(errs, sk.Close())
	}
	return errors.Join(errs...)
}

var sinkRegistry = factory.NewRegistry[Sink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink names.
func SinkTypes() []string { return sinkRegistry.Names() }

// NewSink creates a Sink from the provided configuration.
func NewSink(cfgs []factory.ModuleConfig) (Sink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]Sink, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			_ = NewMultiSink(sinks...).Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}

// Package monitoring reports failed solver runs to Sentry.
package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/loadplan/config"
	coremon "github.com/kilianp07/loadplan/core/monitoring"
)

// NewSentryMonitor returns a Monitor sending to cfg.DSN. An empty DSN
// yields a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	return newSentryMonitor(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
	})
}

// sentryMonitor owns its hub so the planner never touches the global one.
type sentryMonitor struct {
	hub *sentry.Hub
}

func newSentryMonitor(opts sentry.ClientOptions) (*sentryMonitor, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &sentryMonitor{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// CaptureException groups events by solver method. The run id is attached
// as context rather than a tag to keep tag cardinality low.
func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("service", "loadplan")
		for k, v := range tags {
			if k == coremon.TagRunID {
				scope.SetContext("run", sentry.Context{"id": v})
				continue
			}
			scope.SetTag(k, v)
		}
		if m, ok := tags[coremon.TagMethod]; ok {
			scope.SetFingerprint([]string{"{{ default }}", m})
		}
		s.hub.CaptureException(err)
	})
}

func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		s.hub.Recover(r)
		s.hub.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }

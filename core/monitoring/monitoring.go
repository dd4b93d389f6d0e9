// Package monitoring forwards unexpected errors to an error tracker. The
// process holds a single monitor, a no-op until Init installs one.
package monitoring

import (
	"sync"
	"time"
)

// Tag keys attached to errors from solver runs.
const (
	TagMethod = "method"
	TagRunID  = "run_id"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation; nil restores the no-op.
func Init(m Monitor) {
	mu.Lock()
	defer mu.Unlock()
	if m == nil {
		m = NopMonitor{}
	}
	current = m
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	get().CaptureException(err, tags)
}

// Flush waits up to d for buffered events to be sent.
func Flush(d time.Duration) {
	get().Flush(d)
}

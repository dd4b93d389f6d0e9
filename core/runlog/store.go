// Package runlog keeps a history of solver runs.
package runlog

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kilianp07/loadplan/core/model"
)

// RunRecord captures one solver run and, when priced, its financials.
type RunRecord struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Method      string            `json:"method"`
	Outcome     string            `json:"outcome"`
	Error       string            `json:"error,omitempty"`
	Plan        model.LoadingPlan `json:"plan,omitempty"`
	OutOfBand   []int             `json:"out_of_band,omitempty"`
	TotalRamp   int               `json:"total_ramp"`
	Evaluations int               `json:"evaluations"`
	Iterations  int               `json:"iterations"`
	DurationMS  float64           `json:"duration_ms"`
	Revenue     float64           `json:"revenue,omitempty"`
	Capex       float64           `json:"capex,omitempty"`
	Net         float64           `json:"net,omitempty"`
}

// RunQuery defines filters for retrieving records. Limit keeps the most
// recent matches.
type RunQuery struct {
	Start   time.Time
	End     time.Time
	Method  string
	Outcome string
	Limit   int
}

// Match reports whether r passes the filters of q.
func (q RunQuery) Match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Method != "" && r.Method != q.Method {
		return false
	}
	return q.Outcome == "" || r.Outcome == q.Outcome
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// Config selects the history backend.
type Config struct {
	// Backend is one of none, jsonl, rotating or sqlite.
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "loadplan.db"
		case "jsonl", "rotating":
			c.Path = "loadplan-runs.jsonl"
		}
	}
	if c.Backend == "rotating" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

func (c Config) Validate() error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "rotating", "sqlite":
	default:
		return fmt.Errorf("unknown history backend %q", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("history path required for backend %s", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("history rotation settings must be >= 0")
	}
	return nil
}

// Open returns the store selected by cfg.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "none":
		return NopStore{}, nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	}
	return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error             { return nil }
func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                         { return nil }

// finalize sorts matches by time and applies the limit.
func finalize(recs []RunRecord, limit int) []RunRecord {
	slices.SortStableFunc(recs, func(a, b RunRecord) int { return a.Timestamp.Compare(b.Timestamp) })
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	return recs
}

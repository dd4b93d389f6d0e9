package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadplan/core/model"
)

func records(base time.Time) []RunRecord {
	plan := model.LoadingPlan{{"Node1": 12000}, {"Node1": 10500}}
	return []RunRecord{
		{ID: "r1", Timestamp: base, Method: "exhaustive", Outcome: "feasible", Plan: plan, TotalRamp: 1500, Evaluations: 41},
		{ID: "r2", Timestamp: base.Add(time.Minute), Method: "greedy", Outcome: "best_effort", OutOfBand: []int{3}, Iterations: 776},
		{ID: "r3", Timestamp: base.Add(2 * time.Minute), Method: "exhaustive", Outcome: "infeasible", Error: "period 2: no feasible grid candidate"},
	}
}

func TestStores(t *testing.T) {
	dir := t.TempDir()
	stores := map[string]func(t *testing.T) Store{
		"jsonl": func(t *testing.T) Store {
			s, err := NewJSONLStore(filepath.Join(dir, "runs", "jsonl.jsonl"))
			require.NoError(t, err)
			return s
		},
		"rotating": func(t *testing.T) Store {
			s, err := NewRotatingJSONLStore(filepath.Join(dir, "rot.jsonl"), 1, 2, 1)
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore("file:runs_test.db?mode=memory&cache=shared")
			require.NoError(t, err)
			return s
		},
	}
	base := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			defer func() { _ = store.Close() }()
			for _, r := range records(base) {
				require.NoError(t, store.Append(ctx, r))
			}

			all, err := store.Query(ctx, RunQuery{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"r1", "r2", "r3"}, ids(all))
			assert.Equal(t, model.LoadingVector{"Node1": 10500}, all[0].Plan[1])
			assert.True(t, all[0].Timestamp.Equal(base))

			byMethod, err := store.Query(ctx, RunQuery{Method: "exhaustive"})
			require.NoError(t, err)
			assert.Equal(t, []string{"r1", "r3"}, ids(byMethod))

			byOutcome, err := store.Query(ctx, RunQuery{Outcome: "best_effort"})
			require.NoError(t, err)
			assert.Equal(t, []string{"r2"}, ids(byOutcome))
			assert.Equal(t, []int{3}, byOutcome[0].OutOfBand)

			window, err := store.Query(ctx, RunQuery{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
			require.NoError(t, err)
			assert.Equal(t, []string{"r2"}, ids(window))

			last, err := store.Query(ctx, RunQuery{Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, []string{"r2", "r3"}, ids(last))
		})
	}
}

func ids(recs []RunRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestRotatingJSONLStoreRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 3, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Each record carries a ~64KiB error string, so 40 records cross 1MB.
	big := make([]byte, 64*1024)
	for i := range big {
		big[i] = 'x'
	}
	for i := 0; i < 40; i++ {
		rec := RunRecord{ID: "r", Timestamp: time.Now(), Method: "greedy", Error: string(big)}
		require.NoError(t, store.Append(context.Background(), rec))
	}
	files, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "runs*.jsonl"))
	assert.Greater(t, len(files), 1)

	out, err := store.Query(context.Background(), RunQuery{Method: "greedy"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestJSONLStoreSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store, err := NewJSONLStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), RunRecord{ID: "ok", Timestamp: time.Now()}))
	require.NoError(t, appendRaw(path, "{not json\n"))

	out, err := store.Query(context.Background(), RunQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, ids(out))
}

func TestConfigAndOpen(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "none", c.Backend)
	require.NoError(t, c.Validate())
	s, err := Open(c)
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	c = Config{Backend: "sqlite"}
	c.SetDefaults()
	assert.Equal(t, "loadplan.db", c.Path)

	c = Config{Backend: "rotating", Path: filepath.Join(t.TempDir(), "r.jsonl")}
	c.SetDefaults()
	assert.Equal(t, 10, c.MaxSizeMB)
	s, err = Open(c)
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	_ = s.Close()

	assert.Error(t, Config{Backend: "postgres", Path: "x"}.Validate())
	assert.Error(t, Config{Backend: "jsonl"}.Validate())
	_, err = Open(Config{Backend: "postgres"})
	assert.Error(t, err)
}

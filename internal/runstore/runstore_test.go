package runstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamrecap/recap/schema"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*Store)
}

func TestBeginEndRun(t *testing.T) {
	store := newSQLiteStore(t)

	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	windowFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowTo := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	runID, err := store.BeginRun(start, windowFrom, windowTo, map[string]any{"team": "platform"})
	require.NoError(t, err)
	assert.Equal(t, start.UnixNano(), runID)

	end := start.Add(90 * time.Second)
	counts := schema.RunCounts{ChatMessages: 42, ReviewPulls: 7, GitFolders: 3}
	require.NoError(t, store.EndRun(runID, end, counts))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	record := runs[0]
	assert.Equal(t, runID, record.RunID)
	assert.True(t, record.StartTime.Equal(start))
	assert.True(t, record.WindowFrom.Equal(windowFrom))
	assert.True(t, record.WindowTo.Equal(windowTo))
	require.NotNil(t, record.EndTime)
	assert.True(t, record.EndTime.Equal(end))
	require.NotNil(t, record.RunDurationMs)
	assert.Equal(t, int64(90000), *record.RunDurationMs)
	assert.Equal(t, counts, record.Counts)
	require.NotNil(t, record.ConfigParams)
	assert.Contains(t, *record.ConfigParams, "platform")
}

func TestGetAllRunsOrder(t *testing.T) {
	store := newSQLiteStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := store.BeginRun(base.Add(time.Duration(i)*time.Hour), base, base.AddDate(0, 3, 0), nil)
		require.NoError(t, err)
	}

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].StartTime.Before(runs[1].StartTime))
	assert.True(t, runs[1].StartTime.Before(runs[2].StartTime))
}

func TestGetStatus(t *testing.T) {
	store := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalRuns)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.BeginRun(base, base, base.AddDate(0, 3, 0), nil)
	require.NoError(t, err)
	_, err = store.BeginRun(base.Add(time.Hour), base, base.AddDate(0, 3, 0), nil)
	require.NoError(t, err)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.TotalRuns)
	assert.True(t, status.FirstRunTime.Equal(base))
	assert.True(t, status.LastRunTime.Equal(base.Add(time.Hour)))
}

func TestNoneBackendIsNoop(t *testing.T) {
	store, err := New(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), time.Now(), time.Now(), nil)
	require.NoError(t, err)
	assert.Zero(t, runID)

	require.NoError(t, store.EndRun(0, time.Now(), schema.RunCounts{}))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Nil(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)

	require.NoError(t, store.Close())
}

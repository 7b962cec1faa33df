package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamrecap/recap/schema"
)

func TestRunStructTags(t *testing.T) {
	runSchema := parquet.SchemaOf(new(Run))
	require.NotNil(t, runSchema)

	expectedColumns := []string{
		"run_id",
		"start_time",
		"end_time",
		"run_duration_ms",
		"window_from",
		"window_to",
		"chat_messages",
		"review_pulls",
		"git_folders",
		"config_params",
	}

	for _, colName := range expectedColumns {
		_, ok := runSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestConvertRunRecords(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)
	durationMs := int64(60000)
	params := `{"team":"platform"}`

	records := []schema.RunRecord{
		{
			RunID:         start.UnixNano(),
			StartTime:     start,
			EndTime:       &end,
			RunDurationMs: &durationMs,
			WindowFrom:    start.AddDate(0, -3, 0),
			WindowTo:      start,
			Counts:        schema.RunCounts{ChatMessages: 10, ReviewPulls: 2, GitFolders: 1},
			ConfigParams:  &params,
		},
		{RunID: 2, StartTime: start.Add(time.Hour)},
	}

	runs := ConvertRunRecords(records)

	require.Len(t, runs, 2)
	assert.Equal(t, start.UnixNano(), runs[0].RunID)
	assert.Equal(t, int32(10), runs[0].ChatMessages)
	assert.Equal(t, &durationMs, runs[0].RunDurationMs)
	assert.Nil(t, runs[1].EndTime)
	assert.Nil(t, runs[1].ConfigParams)
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	runs := ConvertRunRecords([]schema.RunRecord{
		{RunID: 1, StartTime: time.Now(), WindowFrom: time.Now().AddDate(0, -3, 0), WindowTo: time.Now()},
	})

	require.NoError(t, WriteRunsParquet(runs, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestConvertSnapshot(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 3, 0)

	snap := schema.NewSnapshot()
	snap.EnsurePerson("Grace")
	ada := snap.EnsurePerson("Ada")
	ada.Totals.Additions = 150
	ada.Totals.Pulls = []int{1, 2}
	ada.Totals.WordsInPullBodies = []int{6, 2}
	ada.Totals.AdditionsPerPullAvg = 75

	rows := ConvertSnapshot(snap, from, to)

	require.Len(t, rows, 2)
	assert.Equal(t, "Ada", rows[0].Person)
	assert.Equal(t, "Grace", rows[1].Person)
	assert.Equal(t, int32(2), rows[0].Pulls)
	assert.Equal(t, int32(150), rows[0].Additions)
	assert.Equal(t, int32(8), rows[0].WordsInBodies)
	assert.Equal(t, 75.0, rows[0].AdditionsPerPullAvg)
	assert.Equal(t, from, rows[0].WindowFrom)
	assert.Equal(t, int32(0), rows[1].Pulls)
}

func TestWritePersonReviewParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "people.parquet")
	snap := schema.NewSnapshot()
	snap.EnsurePerson("Ada")

	rows := ConvertSnapshot(snap, time.Now().AddDate(0, -3, 0), time.Now())
	require.NoError(t, WritePersonReviewParquet(rows, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// Package parquet exports recorded aggregation runs to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/teamrecap/recap/schema"
)

// Run represents a single aggregation run with metadata. This struct maps
// to the recap_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// WindowFrom and WindowTo bound the date window the run covered
	WindowFrom time.Time `parquet:"window_from,snappy"`
	WindowTo   time.Time `parquet:"window_to,snappy"`

	// Per-connector record counts
	ChatMessages int32 `parquet:"chat_messages,snappy"`
	ReviewPulls  int32 `parquet:"review_pulls,snappy"`
	GitFolders   int32 `parquet:"git_folders,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// PersonReview represents one person's review totals from a snapshot.
type PersonReview struct {
	// Person is the roster display name
	Person string `parquet:"person,snappy"`

	// Window bounds of the snapshot the totals came from
	WindowFrom time.Time `parquet:"window_from,snappy"`
	WindowTo   time.Time `parquet:"window_to,snappy"`

	// Counts summed over the person's authored pulls
	Pulls            int32 `parquet:"pulls,snappy"`
	Additions        int32 `parquet:"additions,snappy"`
	Deletions        int32 `parquet:"deletions,snappy"`
	ChangedFiles     int32 `parquet:"changed_files,snappy"`
	Comments         int32 `parquet:"comments,snappy"`
	Commits          int32 `parquet:"commits,snappy"`
	PullsReviewed    int32 `parquet:"pulls_reviewed,snappy"`
	PullsCommentedOn int32 `parquet:"pulls_commented_on,snappy"`
	WordsInBodies    int32 `parquet:"words_in_bodies,snappy"`
	ImagesInBodies   int32 `parquet:"images_in_bodies,snappy"`

	// Per-pull averages
	AdditionsPerPullAvg    float64 `parquet:"additions_per_pull_avg,snappy"`
	DeletionsPerPullAvg    float64 `parquet:"deletions_per_pull_avg,snappy"`
	ChangedFilesPerPullAvg float64 `parquet:"changed_files_per_pull_avg,snappy"`
}

// ConvertSnapshot maps per-person review totals to their Parquet form,
// one row per roster member, in name order.
func ConvertSnapshot(snap *schema.Snapshot, windowFrom, windowTo time.Time) []PersonReview {
	names := make([]string, 0, len(snap.Review))
	for name := range snap.Review {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]PersonReview, 0, len(names))
	for _, name := range names {
		totals := snap.Review[name].Totals
		rows = append(rows, PersonReview{
			Person:                 name,
			WindowFrom:             windowFrom,
			WindowTo:               windowTo,
			Pulls:                  int32(len(totals.Pulls)),
			Additions:              int32(totals.Additions),
			Deletions:              int32(totals.Deletions),
			ChangedFiles:           int32(totals.ChangedFiles),
			Comments:               int32(totals.Comments),
			Commits:                int32(totals.Commits),
			PullsReviewed:          int32(len(totals.PullsReviewed)),
			PullsCommentedOn:       int32(len(totals.PullsCommentedOn)),
			WordsInBodies:          int32(schema.Sum(totals.WordsInPullBodies)),
			ImagesInBodies:         int32(schema.Sum(totals.ImagesInPullBodies)),
			AdditionsPerPullAvg:    totals.AdditionsPerPullAvg,
			DeletionsPerPullAvg:    totals.DeletionsPerPullAvg,
			ChangedFilesPerPullAvg: totals.ChangedFilesPerPullAvg,
		})
	}
	return rows
}

// ConvertRunRecords maps stored run records to their Parquet form.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	runs := make([]Run, 0, len(records))
	for _, record := range records {
		runs = append(runs, Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			WindowFrom:    record.WindowFrom,
			WindowTo:      record.WindowTo,
			ChatMessages:  int32(record.Counts.ChatMessages),
			ReviewPulls:   int32(record.Counts.ReviewPulls),
			GitFolders:    int32(record.Counts.GitFolders),
			ConfigParams:  record.ConfigParams,
		})
	}
	return runs
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file. The
// schema is derived from the struct tags.
func WriteRunsParquet(data []Run, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[Run](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WritePersonReviewParquet writes a slice of PersonReview structs to a
// Parquet file.
func WritePersonReviewParquet(data []PersonReview, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[PersonReview](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

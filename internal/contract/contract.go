// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/teamrecap/recap/schema"
)

// GitClient defines the git operations needed by the version-control
// connector. This allows the log parsing logic to be tested without a
// real git executable.
type GitClient interface {
	// Run executes a git command in repoPath and returns its stdout.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// NumstatLog returns `git log --numstat` output limited to the window,
	// optionally restricted to a folder and to specific authors.
	NumstatLog(ctx context.Context, repoPath string, from, to time.Time, folder string, authors []string) ([]byte, error)

	// CommitBefore returns the abbreviated hash of the newest commit at or
	// before the given date, or "" if none exists.
	CommitBefore(ctx context.Context, repoPath string, date time.Time) (string, error)

	// ActivityLog returns tab-separated "authorDate\tauthorName\tsubject"
	// lines for commits in the window.
	ActivityLog(ctx context.Context, repoPath string, from, to time.Time) ([]byte, error)

	// CommitBodies returns the full message bodies of commits authored by
	// author in the window, delimited so trailers can be scanned per commit.
	CommitBodies(ctx context.Context, repoPath string, from, to time.Time, author string) ([]byte, error)
}

// RunStore records aggregation runs for later inspection and export.
type RunStore interface {
	// BeginRun creates a new run row and returns its unique id.
	BeginRun(startTime time.Time, windowFrom, windowTo time.Time, configParams map[string]any) (int64, error)

	// EndRun completes a run with the per-connector record counts.
	EndRun(runID int64, endTime time.Time, counts schema.RunCounts) error

	// GetAllRuns returns every recorded run, oldest first.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetStatus returns summary information about the store.
	GetStatus() (schema.RunStoreStatus, error)

	Close() error
}

// Package gitstats collects version-control statistics from a local
// repository: per-folder change volume and a repository-wide activity
// summary for the configured people.
package gitstats

import (
	"context"
	"fmt"
	"time"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

// topExtensionCount caps the per-folder extension histogram.
const topExtensionCount = 5

// Connector reads commit history through a GitClient and writes the
// results into the snapshot's git section.
type Connector struct {
	client contract.GitClient
}

// New returns a connector backed by the given git client.
func New(client contract.GitClient) *Connector {
	return &Connector{client: client}
}

// Collect populates snap.Git for the window. Folder statistics are
// recomputed from scratch each run; the previous values are overwritten.
func (c *Connector) Collect(ctx context.Context, cfg *contract.GitConfig, people []contract.Person, from, to time.Time, snap *schema.Snapshot) error {
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}

	for _, folder := range cfg.Folders {
		data, err := c.collectFolder(ctx, cfg.RepoPath, folder, from, to, names)
		if err != nil {
			return fmt.Errorf("failed to collect folder %q: %w", folder, err)
		}
		snap.Git.Folders[folder] = data
	}

	activity, err := c.collectActivity(ctx, cfg.RepoPath, from, to, names)
	if err != nil {
		return fmt.Errorf("failed to collect activity summary: %w", err)
	}
	snap.Git.Activity = activity

	return nil
}

func (c *Connector) collectFolder(ctx context.Context, repoPath, folder string, from, to time.Time, names []string) (*schema.GitFolderData, error) {
	allOut, err := c.client.NumstatLog(ctx, repoPath, from, to, folder, nil)
	if err != nil {
		return nil, err
	}

	// Extension counts are restricted to the configured people; the
	// lines-changed total is not.
	peopleOut, err := c.client.NumstatLog(ctx, repoPath, from, to, folder, names)
	if err != nil {
		return nil, err
	}

	return &schema.GitFolderData{
		LinesChanged:    SumLinesChanged(allOut),
		ExtensionCounts: TopExtensions(CountExtensions(peopleOut), topExtensionCount),
	}, nil
}

func (c *Connector) collectActivity(ctx context.Context, repoPath string, from, to time.Time, names []string) (*schema.GitActivitySummary, error) {
	atFrom, err := c.client.CommitBefore(ctx, repoPath, from)
	if err != nil {
		return nil, err
	}
	atTo, err := c.client.CommitBefore(ctx, repoPath, to)
	if err != nil {
		return nil, err
	}

	logOut, err := c.client.ActivityLog(ctx, repoPath, from, to)
	if err != nil {
		return nil, err
	}
	summary := SummarizeActivity(logOut, names)
	summary.CommitAtFrom = atFrom
	summary.CommitAtTo = atTo

	summary.CoauthorPairs = map[string]int{}
	for _, name := range names {
		bodies, err := c.client.CommitBodies(ctx, repoPath, from, to, name)
		if err != nil {
			return nil, err
		}
		coauthored, pairs := TallyCoauthors(bodies, name)
		summary.CoauthoredCommits += coauthored
		for key, count := range pairs {
			summary.CoauthorPairs[key] += count
		}
	}

	return summary, nil
}

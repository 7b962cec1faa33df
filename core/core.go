// Package core has the orchestration logic that turns a configuration
// into a finished recap: it runs the connectors in order, aggregates the
// results and persists the snapshot.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/teamrecap/recap/core/agg"
	"github.com/teamrecap/recap/internal/chat"
	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/internal/gitclient"
	"github.com/teamrecap/recap/internal/gitstats"
	"github.com/teamrecap/recap/internal/outwriter"
	"github.com/teamrecap/recap/internal/review"
	"github.com/teamrecap/recap/internal/runstore"
	"github.com/teamrecap/recap/internal/snapstore"
	"github.com/teamrecap/recap/schema"
)

// ExecuteCreate runs the full pipeline for the configured window: chat
// history first, then pull-request data, then version-control stats, one
// aggregation pass and a final timestamped save. Each connector no-ops
// when its configuration section is absent or skipped.
func ExecuteCreate(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()

	store := snapstore.New(cfg.DataDir, cfg.From, cfg.To)
	snap := store.Load(cfg.PersonNames())
	save := func(s *schema.Snapshot) error {
		return store.Save(s, snapstore.SaveOptions{})
	}

	runs, err := runstore.New(cfg.RunBackend, cfg.RunConnStr)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer func() { _ = runs.Close() }()

	runID, err := runs.BeginRun(start, cfg.From, cfg.To, map[string]any{
		"team":   cfg.TeamName,
		"period": cfg.PeriodName,
		"people": len(cfg.People),
	})
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}

	if cfg.Slack != nil && !cfg.SkipSlack && !cfg.SkipFetch {
		contract.Bold("Fetching chat history")
		connector := chat.New(chat.NewClient(cfg.Slack.Token), cfg.Slack, cfg.PublicDir, save)
		if err := connector.Collect(ctx, cfg.From, cfg.To, snap); err != nil {
			return fmt.Errorf("chat fetch failed: %w", err)
		}
	}

	if cfg.GitHub != nil && !cfg.SkipGitHub && !cfg.SkipFetch {
		contract.Bold("Fetching pull requests")
		connector := review.New(review.NewClient(ctx, cfg.GitHub.Token), cfg, save)
		if err := connector.Collect(ctx, snap); err != nil {
			return fmt.Errorf("pull request fetch failed: %w", err)
		}
	}

	if cfg.Git != nil && !cfg.SkipGit && !cfg.SkipFetch {
		contract.Bold("Reading repository history")
		connector := gitstats.New(gitclient.NewLocalGitClient())
		if err := connector.Collect(ctx, cfg.Git, cfg.People, cfg.From, cfg.To, snap); err != nil {
			return fmt.Errorf("repository read failed: %w", err)
		}
	}

	agg.Aggregate(snap, cfg.People)

	if err := store.Save(snap, snapstore.SaveOptions{StampTimestamp: true}); err != nil {
		return err
	}
	contract.StepDone("saved snapshot to %s", store.Path())

	if err := runs.EndRun(runID, time.Now(), countRecords(snap)); err != nil {
		contract.LogWarn("failed to record run end", err)
	}

	return outwriter.NewOutWriter().WriteSummary(snap, cfg, time.Since(start))
}

// countRecords summarizes what the snapshot holds after a run.
func countRecords(snap *schema.Snapshot) schema.RunCounts {
	counts := schema.RunCounts{GitFolders: len(snap.Git.Folders)}
	for _, channel := range snap.Chat.Channels {
		counts.ChatMessages += channel.MessageCount
	}
	for _, data := range snap.Review {
		counts.ReviewPulls += len(data.Pulls)
	}
	return counts
}

package review

import (
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

// QueryRole selects which relationship between the person and a pull the
// search query filters on.
type QueryRole int

const (
	QueryAuthor QueryRole = iota
	QueryCommenter
	QueryReviewer
)

const queryDateFormat = "2006-01-02"

// BuildQuery assembles the search query for one person and role. Authored
// searches are limited to merged pulls; the created-date filter takes the
// `>=X`, `<=X` or `X..Y` form depending on which window bounds are set.
func BuildQuery(cfg *contract.GitHubConfig, role QueryRole, login string, from, to *time.Time) string {
	query := fmt.Sprintf("repo:%s/%s is:pr", cfg.Owner, cfg.Repo)

	switch role {
	case QueryAuthor:
		query += " author:" + login + " is:merged"
	case QueryCommenter:
		query += " commenter:" + login
	case QueryReviewer:
		query += " reviewed-by:" + login
	}

	switch {
	case from != nil && to != nil:
		query += fmt.Sprintf(" created:%s..%s", from.Format(queryDateFormat), to.Format(queryDateFormat))
	case from != nil:
		query += " created:>=" + from.Format(queryDateFormat)
	case to != nil:
		query += " created:<=" + to.Format(queryDateFormat)
	}

	return query
}

// NormalizePull converts an API pull into the stored record. Reaction
// counts live on the issue representation, not the pull detail, so they
// are passed in from the search result.
func NormalizePull(pr *github.PullRequest, reactions *github.Reactions) *schema.PullRequest {
	pull := &schema.PullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		URL:          pr.GetHTMLURL(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		Comments:     pr.GetComments() + pr.GetReviewComments(),
		Commits:      pr.GetCommits(),
		CreatedAt:    pr.GetCreatedAt().Time,
		Body:         pr.GetBody(),
	}
	if r := reactions; r != nil {
		pull.Reactions = schema.ReactionCounts{
			TotalCount: r.GetTotalCount(),
			PlusOne:    r.GetPlusOne(),
			MinusOne:   r.GetMinusOne(),
			Laugh:      r.GetLaugh(),
			Hooray:     r.GetHooray(),
			Confused:   r.GetConfused(),
			Heart:      r.GetHeart(),
			Rocket:     r.GetRocket(),
			Eyes:       r.GetEyes(),
		}
	}
	return pull
}

// NormalizeRef converts a search result into the minimal stored reference.
func NormalizeRef(issue *github.Issue) *schema.PullRequestRef {
	return &schema.PullRequestRef{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		URL:       issue.GetHTMLURL(),
		Author:    issue.GetUser().GetLogin(),
		CreatedAt: issue.GetCreatedAt().Time,
	}
}

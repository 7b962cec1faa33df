// Package review fetches pull-request activity from GitHub for every
// person on the roster and stores normalized records in the snapshot.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

const searchPageSize = 100

// SaveFunc persists the snapshot mid-fetch so an interrupted run loses at
// most one unit of work.
type SaveFunc func(*schema.Snapshot) error

// Connector fetches authored, commented-on and reviewed pulls.
type Connector struct {
	gh   *github.Client
	cfg  *contract.Config
	save SaveFunc
	now  func() time.Time
}

// boundPtr maps a zero time to nil so the query builder can drop the
// missing bound.
func boundPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// NewClient returns a GitHub API client authenticated with the token.
func NewClient(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// New returns a connector over the given API client.
func New(gh *github.Client, cfg *contract.Config, save SaveFunc) *Connector {
	return &Connector{gh: gh, cfg: cfg, save: save, now: time.Now}
}

// Collect fetches pull data for every person with a GitHub handle. A
// person is skipped entirely when the snapshot is current and their
// authored set is fully fetched; otherwise the commented and reviewed
// sets are refetched along with any missing authored detail.
func (c *Connector) Collect(ctx context.Context, snap *schema.Snapshot) error {
	current := contract.IsCurrent(c.cfg.To, snap.CreatedOn, c.now())

	for _, person := range c.cfg.People {
		if person.GitHub == "" {
			continue
		}
		data := snap.EnsurePerson(person.Name)
		windowFrom, windowTo := c.cfg.EffectiveWindow(person)
		from, to := boundPtr(windowFrom), boundPtr(windowTo)

		if current && data.PullsAllFetched {
			contract.StepSkip("%s: pull data is current", person.Name)
			continue
		}

		if err := c.fetchAuthored(ctx, snap, data, person, from, to); err != nil {
			return fmt.Errorf("failed to fetch pulls for %s: %w", person.Name, err)
		}

		refs, err := c.searchRefs(ctx, BuildQuery(c.cfg.GitHub, QueryCommenter, person.GitHub, from, to))
		if err != nil {
			return fmt.Errorf("failed to fetch commented pulls for %s: %w", person.Name, err)
		}
		data.PullsCommentedOn = refs

		refs, err = c.searchRefs(ctx, BuildQuery(c.cfg.GitHub, QueryReviewer, person.GitHub, from, to))
		if err != nil {
			return fmt.Errorf("failed to fetch reviewed pulls for %s: %w", person.Name, err)
		}
		data.PullsReviewed = refs

		if err := c.save(snap); err != nil {
			return err
		}

		contract.StepDone("%s: %d pulls, %d commented, %d reviewed",
			person.Name, len(data.Pulls), len(data.PullsCommentedOn), len(data.PullsReviewed))
	}

	return nil
}

// fetchAuthored lists the merged pulls a person authored in the window and
// fills in full detail for any pull the snapshot does not have yet. The
// snapshot is saved after each detail fetch, and PullsAllFetched is set
// only once every listed pull has a detail record.
func (c *Connector) fetchAuthored(ctx context.Context, snap *schema.Snapshot, data *schema.ReviewPersonData, person contract.Person, from, to *time.Time) error {
	issues, err := c.searchAll(ctx, BuildQuery(c.cfg.GitHub, QueryAuthor, person.GitHub, from, to))
	if err != nil {
		return err
	}

	for _, issue := range issues {
		number := issue.GetNumber()
		if _, ok := data.Pulls[number]; ok {
			continue
		}

		pull, err := c.fetchDetail(ctx, number, issue.Reactions)
		if err != nil {
			return err
		}
		data.Pulls[number] = pull
		data.PullsAllFetched = false

		if err := c.save(snap); err != nil {
			return err
		}
	}

	data.PullsAllFetched = true
	return c.save(snap)
}

func (c *Connector) fetchDetail(ctx context.Context, number int, reactions *github.Reactions) (*schema.PullRequest, error) {
	var pr *github.PullRequest
	err := c.withThrottle(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		pr, resp, err = c.gh.PullRequests.Get(ctx, c.cfg.GitHub.Owner, c.cfg.GitHub.Repo, number)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return NormalizePull(pr, reactions), nil
}

// searchAll pages through every result of a search query.
func (c *Connector) searchAll(ctx context.Context, query string) ([]*github.Issue, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: searchPageSize}}
	var issues []*github.Issue

	for {
		var result *github.IssuesSearchResult
		var resp *github.Response
		err := c.withThrottle(ctx, func() (*github.Response, error) {
			var err error
			result, resp, err = c.gh.Search.Issues(ctx, query, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		issues = append(issues, result.Issues...)
		if resp.NextPage == 0 {
			return issues, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Connector) searchRefs(ctx context.Context, query string) (map[int]*schema.PullRequestRef, error) {
	issues, err := c.searchAll(ctx, query)
	if err != nil {
		return nil, err
	}
	refs := make(map[int]*schema.PullRequestRef, len(issues))
	for _, issue := range issues {
		ref := NormalizeRef(issue)
		refs[ref.Number] = ref
	}
	return refs, nil
}

// withThrottle retries fn whenever the API answers with a throttle
// response, sleeping for the duration the response names. Every throttle
// is retried; other errors fail immediately.
func (c *Connector) withThrottle(ctx context.Context, fn func() (*github.Response, error)) error {
	for {
		_, err := fn()
		if err == nil {
			return nil
		}

		var wait time.Duration
		switch e := err.(type) {
		case *github.RateLimitError:
			wait = time.Until(e.Rate.Reset.Time)
		case *github.AbuseRateLimitError:
			wait = e.GetRetryAfter()
		default:
			return err
		}
		if wait < time.Second {
			wait = time.Second
		}

		contract.LogWarn(fmt.Sprintf("rate limited, retrying in %s", wait.Round(time.Second)), err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

package agg

import (
	"sort"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

// reviewMetric extracts one leaderboard value from a person's totals.
type reviewMetric struct {
	name    string
	extract func(t *schema.ReviewTotals) float64
}

// reviewMetrics is the single table every leaderboard is computed from.
// List-valued metrics rank by length, except word counts which rank by
// their sum.
var reviewMetrics = []reviewMetric{
	{"additions", func(t *schema.ReviewTotals) float64 { return float64(t.Additions) }},
	{"deletions", func(t *schema.ReviewTotals) float64 { return float64(t.Deletions) }},
	{"changedFiles", func(t *schema.ReviewTotals) float64 { return float64(t.ChangedFiles) }},
	{"comments", func(t *schema.ReviewTotals) float64 { return float64(t.Comments) }},
	{"commits", func(t *schema.ReviewTotals) float64 { return float64(t.Commits) }},
	{"pulls", func(t *schema.ReviewTotals) float64 { return float64(len(t.Pulls)) }},
	{"pullsReviewed", func(t *schema.ReviewTotals) float64 { return float64(len(t.PullsReviewed)) }},
	{"pullsCommentedOn", func(t *schema.ReviewTotals) float64 { return float64(len(t.PullsCommentedOn)) }},
	{"wordsInPullBodies", func(t *schema.ReviewTotals) float64 { return float64(schema.Sum(t.WordsInPullBodies)) }},
	{"imagesInPullBodies", func(t *schema.ReviewTotals) float64 { return float64(len(t.ImagesInPullBodies)) }},
	{"pullsTestedManually", func(t *schema.ReviewTotals) float64 { return float64(len(t.PullsTestedManually)) }},
	{"pullsTestedUnit", func(t *schema.ReviewTotals) float64 { return float64(len(t.PullsTestedUnit)) }},
	{"pullsTestedClient", func(t *schema.ReviewTotals) float64 { return float64(len(t.PullsTestedClient)) }},
	{"pullsTestedBrowser", func(t *schema.ReviewTotals) float64 { return float64(len(t.PullsTestedBrowser)) }},
	{"pullsTestedIntegration", func(t *schema.ReviewTotals) float64 { return float64(len(t.PullsTestedIntegration)) }},
}

// ReviewLeaders computes, for every metric in the table, the person or
// people holding the maximum value. People flagged for exclusion never
// appear, even when they hold the maximum.
func ReviewLeaders(review map[string]*schema.ReviewPersonData, people []contract.Person) map[string]*schema.Leaders {
	excluded := map[string]bool{}
	for _, person := range people {
		if person.ExcludeFromLeaderboard {
			excluded[person.Name] = true
		}
	}

	leaders := make(map[string]*schema.Leaders, len(reviewMetrics))
	for _, metric := range reviewMetrics {
		entry := &schema.Leaders{Names: []string{}}
		first := true

		for name, data := range review {
			if excluded[name] {
				continue
			}
			value := metric.extract(&data.Totals)
			switch {
			case first || value > entry.Value:
				entry.Names = []string{name}
				entry.Value = value
				first = false
			case value == entry.Value:
				entry.Names = append(entry.Names, name)
			}
		}

		sort.Strings(entry.Names)
		leaders[metric.name] = entry
	}
	return leaders
}

package agg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

func personWithPulls(pulls map[int]*schema.PullRequest) *schema.ReviewPersonData {
	return &schema.ReviewPersonData{
		Pulls:            pulls,
		PullsReviewed:    map[int]*schema.PullRequestRef{},
		PullsCommentedOn: map[int]*schema.PullRequestRef{},
		Totals:           schema.NewReviewTotals(),
	}
}

func TestPersonTotals(t *testing.T) {
	data := personWithPulls(map[int]*schema.PullRequest{
		2: {Number: 2, Additions: 100, Deletions: 20, ChangedFiles: 4, Comments: 3, Commits: 2,
			Body: "two words"},
		1: {Number: 1, Additions: 50, Deletions: 10, ChangedFiles: 2, Comments: 1, Commits: 1,
			Body: "one ![shot](a.png)\n\n- [x] Manual test"},
	})
	data.PullsReviewed[7] = &schema.PullRequestRef{Number: 7}

	totals := PersonTotals(data)

	assert.Equal(t, 150, totals.Additions)
	assert.Equal(t, 30, totals.Deletions)
	assert.Equal(t, 6, totals.ChangedFiles)
	assert.Equal(t, 4, totals.Comments)
	assert.Equal(t, 3, totals.Commits)
	assert.Equal(t, []int{1, 2}, totals.Pulls)
	assert.Equal(t, []int{7}, totals.PullsReviewed)
	assert.Equal(t, []int{1}, totals.PullsTestedManually)
	assert.Empty(t, totals.PullsTestedClient)
	assert.Equal(t, []int{1, 0}, totals.ImagesInPullBodies, "pull order is by number")
	assert.Equal(t, []int{6, 2}, totals.WordsInPullBodies)
	assert.Equal(t, 75.0, totals.AdditionsPerPullAvg)
	assert.Equal(t, 15.0, totals.DeletionsPerPullAvg)
	assert.Equal(t, 3.0, totals.ChangedFilesPerPullAvg)
}

func TestPersonTotalsEmpty(t *testing.T) {
	totals := PersonTotals(personWithPulls(map[int]*schema.PullRequest{}))
	assert.NotNil(t, totals.Pulls)
	assert.Empty(t, totals.Pulls)
	assert.Zero(t, totals.AdditionsPerPullAvg)
}

func TestTeamReviewTotalsDistinctCounts(t *testing.T) {
	ada := personWithPulls(map[int]*schema.PullRequest{
		1: {Number: 1, Additions: 10},
	})
	ada.PullsReviewed[5] = &schema.PullRequestRef{Number: 5}
	ada.Totals = PersonTotals(ada)

	grace := personWithPulls(map[int]*schema.PullRequest{
		2: {Number: 2, Additions: 30},
	})
	grace.PullsReviewed[5] = &schema.PullRequestRef{Number: 5}
	grace.PullsReviewed[1] = &schema.PullRequestRef{Number: 1}
	grace.Totals = PersonTotals(grace)

	review := map[string]*schema.ReviewPersonData{"Ada": ada, "Grace": grace}
	totals := TeamReviewTotals(review)

	assert.Equal(t, 2, totals.Pulls)
	assert.Equal(t, 2, totals.PullsReviewed, "pull 5 counts once across the team")
	assert.Equal(t, 40, totals.Additions)
	assert.Equal(t, 20.0, totals.AdditionsPerPullAvg)
	assert.Equal(t, 20.0, totals.AdditionsPerPullMed)
}

func TestChatTeamTotals(t *testing.T) {
	chat := &schema.ChatData{
		Channels: map[string]*schema.ChatChannelData{
			"general": {
				MessageCount: 2,
				Reacji:       map[string]int{"tada": 3},
				Emojis:       &schema.EmojiUsage{ByCount: map[string]int{"tada": 1, "eyes": 1}},
				Messages: []*schema.ChatMessage{
					{TS: "1.0", Text: "hello there", Replies: []*schema.ChatMessage{{TS: "2.0", Text: "hi"}}},
				},
			},
			"random": {
				MessageCount: 1,
				Reacji:       map[string]int{"eyes": 2},
				Emojis:       &schema.EmojiUsage{ByCount: map[string]int{"eyes": 4}},
				Messages:     []*schema.ChatMessage{{TS: "3.0", Text: "one two three"}},
			},
		},
	}

	totals := ChatTeamTotals(chat)

	assert.Equal(t, 3, totals.Messages)
	assert.Equal(t, 6, totals.Words)
	assert.Equal(t, 5, totals.Reactions)
	assert.Equal(t, 2, totals.Emojis, "distinct emoji across channels")
}

func TestReviewLeadersTie(t *testing.T) {
	review := map[string]*schema.ReviewPersonData{
		"A": {Totals: schema.ReviewTotals{Additions: 10}},
		"B": {Totals: schema.ReviewTotals{Additions: 10}},
		"C": {Totals: schema.ReviewTotals{Additions: 5}},
	}

	leaders := ReviewLeaders(review, nil)

	require.Contains(t, leaders, "additions")
	assert.Equal(t, []string{"A", "B"}, leaders["additions"].Names)
	assert.Equal(t, 10.0, leaders["additions"].Value)
}

func TestReviewLeadersExclusion(t *testing.T) {
	review := map[string]*schema.ReviewPersonData{
		"A": {Totals: schema.ReviewTotals{Additions: 100}},
		"B": {Totals: schema.ReviewTotals{Additions: 5}},
	}
	people := []contract.Person{{Name: "A", ExcludeFromLeaderboard: true}, {Name: "B"}}

	leaders := ReviewLeaders(review, people)

	assert.Equal(t, []string{"B"}, leaders["additions"].Names)
	assert.Equal(t, 5.0, leaders["additions"].Value)
}

func TestReviewLeadersWordsBySum(t *testing.T) {
	review := map[string]*schema.ReviewPersonData{
		"A": {Totals: schema.ReviewTotals{WordsInPullBodies: []int{100}}},
		"B": {Totals: schema.ReviewTotals{WordsInPullBodies: []int{10, 10, 10}}},
	}

	leaders := ReviewLeaders(review, nil)

	assert.Equal(t, []string{"A"}, leaders["wordsInPullBodies"].Names, "words rank by sum, not list length")
	assert.Equal(t, 100.0, leaders["wordsInPullBodies"].Value)
}

func TestAggregateIdempotent(t *testing.T) {
	snap := schema.NewSnapshot()
	data := snap.EnsurePerson("Ada")
	data.Pulls[1] = &schema.PullRequest{Number: 1, Additions: 10, Body: "hello world"}
	snap.EnsurePerson("Grace").Pulls[2] = &schema.PullRequest{Number: 2, Additions: 20}
	people := []contract.Person{{Name: "Ada"}, {Name: "Grace"}}

	Aggregate(snap, people)
	first, err := json.Marshal(snap)
	require.NoError(t, err)

	Aggregate(snap, people)
	second, err := json.Marshal(snap)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

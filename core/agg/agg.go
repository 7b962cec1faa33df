// Package agg has aggregation logic for the fetched activity data. It
// derives per-person totals, team totals and leaders from the snapshot
// and never fetches anything.
package agg

import (
	"cmp"
	"slices"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

// Aggregate recomputes every derived section of the snapshot in place.
// Running it twice over an unchanged snapshot yields identical output.
func Aggregate(snap *schema.Snapshot, people []contract.Person) {
	for _, data := range snap.Review {
		data.Totals = PersonTotals(data)
	}
	snap.TeamTotals.Review = TeamReviewTotals(snap.Review)
	snap.TeamTotals.Chat = ChatTeamTotals(&snap.Chat)
	snap.TeamLeaders.Review = ReviewLeaders(snap.Review, people)
}

// PersonTotals derives one person's totals from their normalized pulls.
// List fields are ordered by pull number so repeated runs produce the
// same output.
func PersonTotals(data *schema.ReviewPersonData) schema.ReviewTotals {
	totals := schema.NewReviewTotals()

	for _, number := range sortedKeys(data.Pulls) {
		pull := data.Pulls[number]
		totals.Additions += pull.Additions
		totals.Deletions += pull.Deletions
		totals.ChangedFiles += pull.ChangedFiles
		totals.Comments += pull.Comments
		totals.Commits += pull.Commits

		totals.Pulls = append(totals.Pulls, number)
		totals.WordsInPullBodies = append(totals.WordsInPullBodies, schema.CountWords(pull.Body))
		totals.ImagesInPullBodies = append(totals.ImagesInPullBodies, schema.CountImages(pull.Body))

		tested := schema.ParseTestTypes(pull.Body)
		if tested.Manual {
			totals.PullsTestedManually = append(totals.PullsTestedManually, number)
		}
		if tested.Unit {
			totals.PullsTestedUnit = append(totals.PullsTestedUnit, number)
		}
		if tested.Client {
			totals.PullsTestedClient = append(totals.PullsTestedClient, number)
		}
		if tested.Browser {
			totals.PullsTestedBrowser = append(totals.PullsTestedBrowser, number)
		}
		if tested.Integration {
			totals.PullsTestedIntegration = append(totals.PullsTestedIntegration, number)
		}
	}

	totals.PullsReviewed = sortedKeys(data.PullsReviewed)
	totals.PullsCommentedOn = sortedKeys(data.PullsCommentedOn)

	if count := len(totals.Pulls); count > 0 {
		totals.AdditionsPerPullAvg = float64(totals.Additions) / float64(count)
		totals.DeletionsPerPullAvg = float64(totals.Deletions) / float64(count)
		totals.ChangedFilesPerPullAvg = float64(totals.ChangedFiles) / float64(count)
		totals.WordsPerPullAvg = schema.Average(totals.WordsInPullBodies)
		totals.ImagesPerPullAvg = schema.Average(totals.ImagesInPullBodies)
	}

	return totals
}

// TeamReviewTotals sums per-person totals into team totals. Pull counts
// are distinct across the team so a pull reviewed by two people counts
// once; averages and medians run over the distinct authored pulls.
func TeamReviewTotals(review map[string]*schema.ReviewPersonData) *schema.ReviewTeamTotals {
	totals := &schema.ReviewTeamTotals{}

	distinctPulls := map[int]bool{}
	distinctReviewed := map[int]bool{}
	distinctCommented := map[int]bool{}
	var additions, deletions, changedFiles []int

	for _, name := range sortedKeys(review) {
		data := review[name]
		totals.Additions += data.Totals.Additions
		totals.Deletions += data.Totals.Deletions
		totals.ChangedFiles += data.Totals.ChangedFiles
		totals.Comments += data.Totals.Comments
		totals.Commits += data.Totals.Commits
		totals.WordsInPullBodies += schema.Sum(data.Totals.WordsInPullBodies)
		totals.ImagesInPullBodies += schema.Sum(data.Totals.ImagesInPullBodies)
		totals.PullsTestedManually += len(data.Totals.PullsTestedManually)
		totals.PullsTestedUnit += len(data.Totals.PullsTestedUnit)
		totals.PullsTestedClient += len(data.Totals.PullsTestedClient)
		totals.PullsTestedBrowser += len(data.Totals.PullsTestedBrowser)
		totals.PullsTestedIntegration += len(data.Totals.PullsTestedIntegration)

		for number, pull := range data.Pulls {
			if distinctPulls[number] {
				continue
			}
			distinctPulls[number] = true
			additions = append(additions, pull.Additions)
			deletions = append(deletions, pull.Deletions)
			changedFiles = append(changedFiles, pull.ChangedFiles)
		}
		for number := range data.PullsReviewed {
			distinctReviewed[number] = true
		}
		for number := range data.PullsCommentedOn {
			distinctCommented[number] = true
		}
	}

	totals.Pulls = len(distinctPulls)
	totals.PullsReviewed = len(distinctReviewed)
	totals.PullsCommentedOn = len(distinctCommented)

	totals.AdditionsPerPullAvg = schema.Average(additions)
	totals.DeletionsPerPullAvg = schema.Average(deletions)
	totals.ChangedFilesPerPullAvg = schema.Average(changedFiles)
	totals.AdditionsPerPullMed = schema.Median(additions)
	totals.DeletionsPerPullMed = schema.Median(deletions)
	totals.ChangedFilesPerPullMed = schema.Median(changedFiles)

	return totals
}

// ChatTeamTotals sums the per-channel aggregates. Emojis counts distinct
// emoji names used across all channels.
func ChatTeamTotals(chat *schema.ChatData) *schema.ChatTeamTotals {
	totals := &schema.ChatTeamTotals{}
	distinctEmoji := map[string]bool{}

	for _, channel := range chat.Channels {
		totals.Messages += channel.MessageCount
		for _, count := range channel.Reacji {
			totals.Reactions += count
		}
		if channel.Emojis != nil {
			for name := range channel.Emojis.ByCount {
				distinctEmoji[name] = true
			}
		}
		totals.Words += countMessageWords(channel.Messages)
	}

	totals.Emojis = len(distinctEmoji)
	return totals
}

// countMessageWords totals the words in every message and nested reply.
func countMessageWords(messages []*schema.ChatMessage) int {
	words := 0
	stack := append([]*schema.ChatMessage{}, messages...)
	for len(stack) > 0 {
		msg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		words += schema.CountWords(msg.Text)
		stack = append(stack, msg.Replies...)
	}
	return words
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

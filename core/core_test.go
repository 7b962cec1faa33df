package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamrecap/recap/schema"
)

func TestCountRecords(t *testing.T) {
	snap := schema.NewSnapshot()
	snap.Chat.Channels["general"] = &schema.ChatChannelData{MessageCount: 10}
	snap.Chat.Channels["random"] = &schema.ChatChannelData{MessageCount: 5}
	snap.EnsurePerson("Ada").Pulls[1] = &schema.PullRequest{Number: 1}
	snap.EnsurePerson("Ada").Pulls[2] = &schema.PullRequest{Number: 2}
	snap.Git.Folders["src"] = &schema.GitFolderData{}

	counts := countRecords(snap)

	assert.Equal(t, 15, counts.ChatMessages)
	assert.Equal(t, 2, counts.ReviewPulls)
	assert.Equal(t, 1, counts.GitFolders)
}

func TestCountRecordsEmpty(t *testing.T) {
	assert.Zero(t, countRecords(schema.NewSnapshot()))
}

package snapstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamrecap/recap/schema"
)

var (
	testFrom = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testTo   = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
)

func TestPath(t *testing.T) {
	store := New("data", testFrom, testTo)
	assert.Equal(t, filepath.Join("data", "data-1704067200000-1711929600000.json"), store.Path())
	assert.Equal(t, filepath.Join("data", "data-1704067200000-1711929600000.light.json"), store.LightPath())
}

func TestLoadEmpty(t *testing.T) {
	store := New(t.TempDir(), testFrom, testTo)
	snap := store.Load([]string{"Ada", "Grace"})

	require.NotNil(t, snap)
	assert.Contains(t, snap.Review, "Ada")
	assert.Contains(t, snap.Review, "Grace")
	assert.NotNil(t, snap.Review["Ada"].Pulls)
	assert.Nil(t, snap.CreatedOn)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir(), testFrom, testTo)
	snap := store.Load([]string{"Ada"})

	snap.Review["Ada"].Pulls[42] = &schema.PullRequest{
		Number:    42,
		Title:     "Add frobnicator",
		Additions: 10,
		Deletions: 3,
		Body:      "- [x] Manual test",
	}
	snap.Review["Ada"].Totals.Pulls = []int{42}

	require.NoError(t, store.Save(snap, SaveOptions{StampTimestamp: true}))

	loaded := store.Load([]string{"Ada"})
	require.Contains(t, loaded.Review, "Ada")
	require.Contains(t, loaded.Review["Ada"].Pulls, 42)
	assert.Equal(t, "Add frobnicator", loaded.Review["Ada"].Pulls[42].Title)
	assert.Equal(t, []int{42}, loaded.Review["Ada"].Totals.Pulls)
	require.NotNil(t, loaded.CreatedOn)
}

func TestSaveCreatesLightProjection(t *testing.T) {
	store := New(t.TempDir(), testFrom, testTo)
	snap := store.Load([]string{"Ada"})
	snap.Review["Ada"].Pulls[7] = &schema.PullRequest{Number: 7, Body: "secret details"}
	snap.Chat.Channels["general"] = &schema.ChatChannelData{
		Channel:      schema.ChatChannel{ID: "C123", Name: "general"},
		Messages:     []*schema.ChatMessage{{TS: "1.0", Text: "hello"}},
		MessageCount: 1,
	}

	require.NoError(t, store.Save(snap, SaveOptions{}))

	content, err := os.ReadFile(store.LightPath())
	require.NoError(t, err)
	assert.NotContains(t, string(content), "secret details")
	assert.NotContains(t, string(content), "hello")

	var light schema.SnapshotLight
	require.NoError(t, json.Unmarshal(content, &light))
	assert.Contains(t, light.Review, "Ada")
	require.Contains(t, light.Chat.Channels, "general")
	assert.Equal(t, 1, light.Chat.Channels["general"].MessageCount)
}

func TestLoadBacksUpExisting(t *testing.T) {
	store := New(t.TempDir(), testFrom, testTo)
	snap := store.Load(nil)
	require.NoError(t, store.Save(snap, SaveOptions{}))

	original, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	store.Load(nil)

	backup, err := os.ReadFile(store.Path() + ".bak")
	require.NoError(t, err)
	assert.Equal(t, original, backup)
}

func TestLoadCorruptFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, testFrom, testTo)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	snap := store.Load([]string{"Ada"})
	require.NotNil(t, snap)
	assert.Contains(t, snap.Review, "Ada")
	assert.Empty(t, snap.Review["Ada"].Pulls)
}

func TestLightOmitsRawData(t *testing.T) {
	snap := schema.NewSnapshot()
	snap.EnsurePerson("Ada")
	snap.Review["Ada"].PullsAllFetched = true
	snap.Review["Ada"].Totals.Additions = 99

	light := Light(snap)
	require.Contains(t, light.Review, "Ada")
	assert.True(t, light.Review["Ada"].PullsAllFetched)
	assert.Equal(t, 99, light.Review["Ada"].Totals.Additions)
}

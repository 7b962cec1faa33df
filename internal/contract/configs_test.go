package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"teamName": "Web Infra",
		"periodName": "fy 2024",
		"from": "2024-01-01",
		"to": "2024-12-31",
		"people": [
			{"name": "Alice", "github": "alice-gh"},
			{"name": "Bob", "slack": "bob.builder", "from": "2024-03-01", "excludeFromLeaderboard": true}
		],
		"github": {"token": "ghp_test", "owner": "acme", "repo": "website"},
		"slack": {"token": "xoxp-test", "channels": ["general"]}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Web Infra", cfg.TeamName)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.From)
	require.Len(t, cfg.People, 2)
	assert.Equal(t, "alice-gh", cfg.People[0].GitHub)
	assert.True(t, cfg.People[1].ExcludeFromLeaderboard)
	require.NotNil(t, cfg.People[1].From)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *cfg.People[1].From)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvertedWindow(t *testing.T) {
	path := writeConfig(t, `{
		"from": "2024-12-31",
		"to": "2024-01-01",
		"people": [{"name": "Alice"}]
	}`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "must be before")
}

func TestLoadConfigRequiresPeople(t *testing.T) {
	path := writeConfig(t, `{"from": "2024-01-01", "to": "2024-12-31", "people": []}`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "at least one person")
}

func TestLoadConfigEnvOverridesToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_from_env")
	path := writeConfig(t, `{
		"from": "2024-01-01",
		"to": "2024-12-31",
		"people": [{"name": "Alice"}],
		"github": {"token": "ghp_in_file", "owner": "acme", "repo": "website"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ghp_from_env", cfg.GitHub.Token)
}

func TestLoadConfigRequiresTokenWhenConfigured(t *testing.T) {
	t.Setenv("SLACK_TOKEN", "")
	path := writeConfig(t, `{
		"from": "2024-01-01",
		"to": "2024-12-31",
		"people": [{"name": "Alice"}],
		"slack": {"channels": ["general"]}
	}`)

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "no token")
}

func TestEffectiveWindow(t *testing.T) {
	cfg := &Config{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	override := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	from, to := cfg.EffectiveWindow(Person{Name: "Alice"})
	assert.Equal(t, cfg.From, from)
	assert.Equal(t, cfg.To, to)

	from, to = cfg.EffectiveWindow(Person{Name: "Bob", From: &override})
	assert.Equal(t, override, from)
	assert.Equal(t, cfg.To, to)
}

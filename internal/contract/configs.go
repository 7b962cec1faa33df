package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/teamrecap/recap/schema"
)

// Default directories, relative to the working directory.
const (
	DefaultDataDir   = "data"
	DefaultPublicDir = "public"
)

// FreshnessWindow is how close to "now" a snapshot's CreatedOn must be for
// review data to count as current on a repeated quick run.
const FreshnessWindow = 10 * time.Minute

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Person describes one roster member and their per-source aliases.
type Person struct {
	Name   string `json:"name"`
	GitHub string `json:"github,omitempty"`
	Slack  string `json:"slack,omitempty"`

	// From/To narrow the person's effective window inside the team window,
	// for people who joined or left mid-period.
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	ExcludeFromLeaderboard bool `json:"excludeFromLeaderboard,omitempty"`
	New                    bool `json:"new,omitempty"`
}

// GitConfig configures the version-control connector.
type GitConfig struct {
	RepoPath string   `json:"repoPath"`
	Folders  []string `json:"folders"`
}

// GitHubConfig configures the review-platform connector.
type GitHubConfig struct {
	Token string `json:"token"`
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// SlackConfig configures the chat-platform connector.
type SlackConfig struct {
	Token       string   `json:"token"`
	Channels    []string `json:"channels"`
	IgnoreEmoji []string `json:"ignoreEmoji,omitempty"`
}

// Config is the validated runtime configuration. A missing connector
// section means that connector no-ops.
type Config struct {
	TeamName   string    `json:"teamName"`
	PeriodName string    `json:"periodName"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	People     []Person  `json:"people"`

	Git    *GitConfig    `json:"git,omitempty"`
	GitHub *GitHubConfig `json:"github,omitempty"`
	Slack  *SlackConfig  `json:"slack,omitempty"`

	DataDir   string `json:"-"`
	PublicDir string `json:"-"`

	// Connector skip switches, set by CLI flags.
	SkipGit    bool `json:"-"`
	SkipGitHub bool `json:"-"`
	SkipSlack  bool `json:"-"`
	SkipFetch  bool `json:"-"`

	// Run store settings, set by CLI flags.
	RunBackend schema.DatabaseBackend `json:"-"`
	RunConnStr string                 `json:"-"`
}

// rawConfig matches the JSON config file, with dates as strings so we can
// report parse errors with the offending value.
type rawConfig struct {
	TeamName   string        `json:"teamName"`
	PeriodName string        `json:"periodName"`
	From       string        `json:"from"`
	To         string        `json:"to"`
	People     []rawPerson   `json:"people"`
	Git        *GitConfig    `json:"git,omitempty"`
	GitHub     *GitHubConfig `json:"github,omitempty"`
	Slack      *SlackConfig  `json:"slack,omitempty"`
}

type rawPerson struct {
	Name                   string `json:"name"`
	GitHub                 string `json:"github,omitempty"`
	Slack                  string `json:"slack,omitempty"`
	From                   string `json:"from,omitempty"`
	To                     string `json:"to,omitempty"`
	ExcludeFromLeaderboard bool   `json:"excludeFromLeaderboard,omitempty"`
	New                    bool   `json:"new,omitempty"`
}

// LoadConfig reads and validates the JSON config file. Credentials may be
// overridden by GITHUB_TOKEN / GITHUB_OWNER / GITHUB_REPO / SLACK_TOKEN.
func LoadConfig(configPath string) (*Config, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found at %q: %w", configPath, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", configPath, err)
	}

	from, err := parseDate(raw.From)
	if err != nil {
		return nil, fmt.Errorf("invalid 'from' date %q: %w", raw.From, err)
	}
	to, err := parseDate(raw.To)
	if err != nil {
		return nil, fmt.Errorf("invalid 'to' date %q: %w", raw.To, err)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("'from' (%s) must be before 'to' (%s)", raw.From, raw.To)
	}
	if len(raw.People) == 0 {
		return nil, fmt.Errorf("config must list at least one person")
	}

	cfg := &Config{
		TeamName:   raw.TeamName,
		PeriodName: raw.PeriodName,
		From:       from,
		To:         to,
		Git:        raw.Git,
		GitHub:     raw.GitHub,
		Slack:      raw.Slack,
		DataDir:    DefaultDataDir,
		PublicDir:  DefaultPublicDir,
	}

	for _, rp := range raw.People {
		if rp.Name == "" {
			return nil, fmt.Errorf("every person must have a name")
		}
		p := Person{
			Name:                   rp.Name,
			GitHub:                 rp.GitHub,
			Slack:                  rp.Slack,
			ExcludeFromLeaderboard: rp.ExcludeFromLeaderboard,
			New:                    rp.New,
		}
		if rp.From != "" {
			t, err := parseDate(rp.From)
			if err != nil {
				return nil, fmt.Errorf("invalid 'from' date %q for %s: %w", rp.From, rp.Name, err)
			}
			p.From = &t
		}
		if rp.To != "" {
			t, err := parseDate(rp.To)
			if err != nil {
				return nil, fmt.Errorf("invalid 'to' date %q for %s: %w", rp.To, rp.Name, err)
			}
			p.To = &t
		}
		cfg.People = append(cfg.People, p)
	}

	applyEnvOverrides(cfg)

	if cfg.GitHub != nil && cfg.GitHub.Token == "" {
		return nil, fmt.Errorf("github is configured but no token was provided (set github.token or GITHUB_TOKEN)")
	}
	if cfg.Slack != nil && cfg.Slack.Token == "" {
		return nil, fmt.Errorf("slack is configured but no token was provided (set slack.token or SLACK_TOKEN)")
	}
	if cfg.Git != nil && cfg.Git.RepoPath == "" {
		return nil, fmt.Errorf("git is configured but repoPath is empty")
	}

	return cfg, nil
}

// applyEnvOverrides lets environment variables take precedence over
// credentials checked into the config file.
func applyEnvOverrides(cfg *Config) {
	if cfg.GitHub != nil {
		if v := os.Getenv("GITHUB_TOKEN"); v != "" {
			cfg.GitHub.Token = v
		}
		if v := os.Getenv("GITHUB_OWNER"); v != "" {
			cfg.GitHub.Owner = v
		}
		if v := os.Getenv("GITHUB_REPO"); v != "" {
			cfg.GitHub.Repo = v
		}
	}
	if cfg.Slack != nil {
		if v := os.Getenv("SLACK_TOKEN"); v != "" {
			cfg.Slack.Token = v
		}
	}
}

// ValidateRunConnString checks that backends requiring a connection string
// got one in a plausible shape.
func ValidateRunConnString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "postgres://") && !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must be a postgres:// URL or contain 'host='")
		}
	default:
		return fmt.Errorf("unsupported backend: %s", backend)
	}
	return nil
}

// parseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// EffectiveWindow returns the person's window clipped to their individual
// override, falling back to the team window.
func (c *Config) EffectiveWindow(p Person) (time.Time, time.Time) {
	from, to := c.From, c.To
	if p.From != nil {
		from = *p.From
	}
	if p.To != nil {
		to = *p.To
	}
	return from, to
}

// PersonNames returns the roster display names in config order.
func (c *Config) PersonNames() []string {
	names := make([]string, 0, len(c.People))
	for _, p := range c.People {
		names = append(names, p.Name)
	}
	return names
}

package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg holds the validated, final configuration. It is populated by
// createSetup before any command that needs it runs.
var cfg *contract.Config

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "recap",
	Short:              "Aggregate team activity from Git, GitHub and Slack into a recap.",
	Long:               `Recap collects commits, pull requests and chat history for a roster over a date window and turns them into per-person and team-wide statistics.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig wires environment variables and defaults into Viper.
func initConfig() {
	// Set environment variable prefix
	viper.SetEnvPrefix("RECAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("config", "recap.json")
	viper.SetDefault("data-dir", contract.DefaultDataDir)
	viper.SetDefault("public-dir", contract.DefaultPublicDir)
	viper.SetDefault("run-backend", schema.SQLiteBackend)
	viper.SetDefault("run-db-connect", "")
}

// resolveRunStore reads the run store settings from Viper and fills in the
// default SQLite path when no connection string is given.
func resolveRunStore() (schema.DatabaseBackend, string, error) {
	backendStr := viper.GetString("run-backend")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	connStr := viper.GetString("run-db-connect")
	if err := contract.ValidateRunConnString(backend, connStr); err != nil {
		return backend, connStr, err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = filepath.Join(viper.GetString("data-dir"), "runs.db")
	}
	return backend, connStr, nil
}

// createSetup loads the recap config file and merges CLI overrides on top.
func createSetup(_ *cobra.Command, _ []string) error {
	loaded, err := contract.LoadConfig(viper.GetString("config"))
	if err != nil {
		return err
	}

	loaded.DataDir = viper.GetString("data-dir")
	loaded.PublicDir = viper.GetString("public-dir")
	loaded.SkipGit = viper.GetBool("skip-git")
	loaded.SkipGitHub = viper.GetBool("skip-github")
	loaded.SkipSlack = viper.GetBool("skip-slack")
	loaded.SkipFetch = viper.GetBool("skip-fetch")

	backend, connStr, err := resolveRunStore()
	if err != nil {
		return err
	}
	loaded.RunBackend = backend
	loaded.RunConnStr = connStr

	cfg = loaded
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

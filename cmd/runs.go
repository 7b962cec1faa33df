package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/internal/outwriter"
	"github.com/teamrecap/recap/internal/parquet"
	"github.com/teamrecap/recap/internal/runstore"
	"github.com/teamrecap/recap/schema"
)

// runBackend and runConnStr are resolved by runsSetup for the runs subcommands.
var (
	runBackend schema.DatabaseBackend
	runConnStr string
)

// runsSetup resolves run store settings without loading the full recap
// config, so runs subcommands work against any database directly.
func runsSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := resolveRunStore()
	if err != nil {
		return err
	}
	runBackend = backend
	runConnStr = connStr
	return nil
}

// runsCmd focused on run history management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and export recap run history",
	Long: `Manage the stored history of recap runs.

Every 'recap create' records a row per run: start and end time, the
window it covered, and how many chat messages, pull requests and git
folders the snapshot held afterwards.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export run history to Parquet for analytics
  migrate - Run database schema migrations

Examples:
  # Check run tracking status
  recap runs status

  # Export for analysis in pandas/DuckDB
  recap runs export --output-file runs.parquet`,
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show backend type, connection status, the number of stored runs,
and the first and last run timestamps.

Examples:
  # Check run tracking status
  recap runs status`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := runstore.New(runBackend, runConnStr)
		if err != nil {
			contract.LogFatal("Failed to open run store", err)
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		outwriter.PrintRunStatus(status)
	},
}

// runsExportCmd exports run history to a Parquet file.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs to a Parquet file for use with analytics
tools such as DuckDB, pandas or Spark.

Requires: --output-file parameter

Examples:
  # Export all runs
  recap runs export --output-file runs.parquet

  # Query the export with DuckDB
  duckdb -c "SELECT * FROM read_parquet('runs.parquet') LIMIT 10"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		outputFile := viper.GetString("output-file")
		if outputFile == "" {
			contract.LogFatal("Export requires --output-file", fmt.Errorf("no output file given"))
		}

		store, err := runstore.New(runBackend, runConnStr)
		if err != nil {
			contract.LogFatal("Failed to open run store", err)
		}
		defer func() { _ = store.Close() }()

		records, err := store.GetAllRuns()
		if err != nil {
			contract.LogFatal("Failed to load run history", err)
		}
		if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(records), outputFile); err != nil {
			contract.LogFatal("Failed to write Parquet file", err)
		}
		contract.StepDone("exported %d runs to %s", len(records), outputFile)
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for
specific versions.

Examples:
  # Migrate to latest version (default)
  recap runs migrate

  # Rollback to initial state
  recap runs migrate --target-version 0`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.Migrate(runBackend, runConnStr, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Migration failed", err)
		}
	},
}

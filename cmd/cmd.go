// Package cmd defines the command-line interface for recap.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("config", "c", "recap.json", "Path to the recap config file")
	rootCmd.PersistentFlags().String("data-dir", contract.DefaultDataDir, "Directory for snapshot files and the run database")
	rootCmd.PersistentFlags().String("public-dir", contract.DefaultPublicDir, "Directory for published assets such as emoji images")
	rootCmd.PersistentFlags().String("run-backend", string(schema.SQLiteBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for mysql/postgresql run tracking")
	rootCmd.PersistentFlags().String("output-file", "", "Path to write Parquet exports to")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of createCmd to Viper
	createCmd.Flags().Bool("skip-git", false, "Skip the version-control connector")
	createCmd.Flags().Bool("skip-github", false, "Skip the pull request connector")
	createCmd.Flags().Bool("skip-slack", false, "Skip the chat connector")
	createCmd.Flags().Bool("skip-fetch", false, "Skip all fetching and recompute from the stored snapshot")
	if err := viper.BindPFlags(createCmd.Flags()); err != nil {
		contract.LogFatal("Error binding create flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}

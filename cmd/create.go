package cmd

import (
	"github.com/spf13/cobra"

	"github.com/teamrecap/recap/core"
	"github.com/teamrecap/recap/internal/contract"
)

// createCmd fetches activity for the configured window and builds the recap.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Fetch team activity and build or update the recap snapshot",
	Long: `Fetch commits, pull requests and chat history for everyone on the
roster, compute per-person and team statistics, and save the result as a
snapshot under the data directory.

Runs are incremental: an existing snapshot for the same window is updated
in place, and sources whose data is already current are skipped. Use the
skip flags to leave a connector out of a run entirely, or --skip-fetch to
recompute statistics from stored data without touching the network.

Examples:
  # Full run with the default config file
  recap create

  # Recompute totals and leaders without fetching
  recap create --skip-fetch

  # Refresh chat only
  recap create --skip-git --skip-github`,
	PreRunE: createSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCreate(rootCtx, cfg); err != nil {
			contract.LogFatal("Recap run failed", err)
		}
	},
}

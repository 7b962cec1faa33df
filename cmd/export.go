package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teamrecap/recap/internal/contract"
	"github.com/teamrecap/recap/internal/parquet"
	"github.com/teamrecap/recap/internal/snapstore"
)

// exportCmd exports per-person review totals from the stored snapshot.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export per-person review totals to Parquet for analytics",
	Long: `Export the per-person review totals from the snapshot for the
configured window to a Parquet file, one row per roster member.

Run 'recap create' first so the snapshot exists and its totals are
computed.

Requires: --output-file parameter

Examples:
  # Export totals for the window in recap.json
  recap export --output-file people.parquet`,
	PreRunE: createSetup,
	Run: func(_ *cobra.Command, _ []string) {
		outputFile := viper.GetString("output-file")
		if outputFile == "" {
			contract.LogFatal("Export requires --output-file", fmt.Errorf("no output file given"))
		}

		store := snapstore.New(cfg.DataDir, cfg.From, cfg.To)
		snap := store.Load(cfg.PersonNames())
		if snap.CreatedOn == nil {
			contract.LogFatal("No snapshot for this window", fmt.Errorf("expected %s; run 'recap create' first", store.Path()))
		}

		rows := parquet.ConvertSnapshot(snap, cfg.From, cfg.To)
		if err := parquet.WritePersonReviewParquet(rows, outputFile); err != nil {
			contract.LogFatal("Failed to write Parquet file", err)
		}
		contract.StepDone("exported %d people to %s", len(rows), outputFile)
	},
}

package cmd

import (
	"github.com/huangsam/ghsnap/core"
	"github.com/huangsam/ghsnap/internal/iocache"
	"github.com/spf13/cobra"
)

// summarizeCmd aggregates the snapshots of one date.
var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Aggregate the snapshots of a date into a summary report",
	Long: `Build the summary report from the repository snapshot and, when present, the
contribution snapshot of the same date.

The report is written to github_summary_<date>.json and printed with --output.
It is recomputed from scratch on every run.

Examples:
  # Summarize today's snapshots as a table
  ghsnap summarize

  # Summarize a past date as YAML
  ghsnap summarize --date 2024-03-01 --output yaml

  # Export the rankings to Parquet
  ghsnap summarize --output parquet --output-file rankings.parquet`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteSummarize(rootCtx, cfg, iocache.Manager)
	},
}

package cmd

import (
	"github.com/huangsam/ghsnap/core"
	"github.com/huangsam/ghsnap/internal/iocache"
	"github.com/spf13/cobra"
)

// pipelineCmd runs every stage for one date.
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run collect, summarize, validate, render and sweep in order",
	Long: `Run the whole daily job for one date. Each stage reads what the previous one wrote.
A stage error stops the pipeline; skipped organizations or repositories do not.

Examples:
  # Daily job for the default organizations
  GITHUB_TOKEN=... ghsnap pipeline

  # Track runs in PostgreSQL
  ghsnap pipeline --history-backend postgresql --history-db-connect "host=db dbname=ghsnap"`,
	PreRunE: apiSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		client, err := newHostingClient()
		if err != nil {
			return err
		}
		return core.RunPipeline(rootCtx, cfg, client, iocache.Manager)
	},
}

package cmd

import (
	"github.com/huangsam/ghsnap/core"
	"github.com/huangsam/ghsnap/internal/iocache"
	"github.com/spf13/cobra"
)

// renderCmd writes the static dashboard.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the HTML dashboard from a summary report",
	Long: `Write <web-dir>/index.html from a summary report.

Without --summary-file, the newest github_summary_*.json in the output directory is used.
The page loads its charts from a CDN and needs no server.

Examples:
  ghsnap render
  ghsnap render --summary-file data/github_summary_2024-03-01.json --web-dir public`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteRender(rootCtx, cfg, iocache.Manager)
	},
}

package cmd

import (
	"github.com/huangsam/ghsnap/core"
	"github.com/huangsam/ghsnap/internal/iocache"
	"github.com/spf13/cobra"
)

// sweepCmd removes old snapshots.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete snapshots older than the retention period",
	Long: `Delete *.json files in the output directory whose embedded date is more than
--retention-days before --date. Files without a date in their name are left alone.

Examples:
  ghsnap sweep
  ghsnap sweep --retention-days 30`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteSweep(rootCtx, cfg, iocache.Manager)
	},
}

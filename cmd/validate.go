package cmd

import (
	"github.com/huangsam/ghsnap/core"
	"github.com/huangsam/ghsnap/internal/iocache"
	"github.com/spf13/cobra"
)

// validateCmd prints the quality report of a repository snapshot.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check completeness and duplicates of a repository snapshot",
	Long: `Report missing fields, duplicate repositories and the created/updated date range
of the repository snapshot, and list the files in the output directory.

Examples:
  ghsnap validate --date 2024-03-01
  ghsnap validate --output json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteValidate(rootCtx, cfg, iocache.Manager)
	},
}

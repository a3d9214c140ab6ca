package cmd

import (
	"github.com/huangsam/ghsnap/core"
	"github.com/spf13/cobra"
)

// exportCmd converts snapshots to Parquet.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the snapshots of a date to Parquet",
	Long: `Write <output-file>.repositories.parquet and, when a contribution snapshot exists,
<output-file>.contributors.parquet.

Examples:
  ghsnap export --date 2024-03-01 --output-file snapshots
  duckdb -c "SELECT organization, sum(stars) FROM 'snapshots.repositories.parquet' GROUP BY 1"`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteExport(rootCtx, cfg)
	},
}

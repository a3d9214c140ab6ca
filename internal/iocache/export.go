package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/internal/parquet"
)

// ExecuteHistoryExport writes the run history to two Parquet files next to outputFile.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run history is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total pipeline runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total org snapshots: %d\n", status.TotalSnapshots)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve pipeline runs: %w", err)
	}
	snapshots, err := store.GetAllOrgSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve org snapshots: %w", err)
	}

	runsFile := outputFile + ".pipeline_runs.parquet"
	if err := parquet.WritePipelineRunsParquet(parquet.ConvertPipelineRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write pipeline runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d pipeline runs to: %s\n", len(runs), runsFile)

	snapshotsFile := outputFile + ".org_snapshots.parquet"
	if err := parquet.WriteOrgSnapshotsParquet(parquet.ConvertOrgSnapshotRecords(snapshots), snapshotsFile); err != nil {
		return fmt.Errorf("failed to write org snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d org snapshots to: %s\n", len(snapshots), snapshotsFile)

	return nil
}

package core

import (
	"fmt"
	"time"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/schema"
)

// stageTracker records one stage run in the history store.
// A nil tracker, or one without a store, does nothing.
type stageTracker struct {
	store contract.HistoryStore
	stage schema.Stage
	runID int64
}

// beginStage opens a history run for the stage. Tracking failures never
// fail the stage; they are reported as warnings.
func beginStage(cfg *contract.Config, mgr contract.HistoryManager, stage schema.Stage) *stageTracker {
	if mgr == nil {
		return nil
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return nil
	}
	runID, err := store.BeginRun(stage, cfg.Date, time.Now(), cfg.ConfigParams())
	if err != nil {
		contract.LogWarn(fmt.Sprintf("History tracking initialization failed for %s", stage), err)
		return nil
	}
	if runID <= 0 {
		return nil
	}
	return &stageTracker{store: store, stage: stage, runID: runID}
}

// end closes the run with the stage outcome.
func (t *stageTracker) end(result schema.StageResult) {
	if t == nil {
		return
	}
	if err := t.store.EndRun(t.runID, time.Now(), result.RecordsWritten, len(result.Skips)); err != nil {
		contract.LogWarn(fmt.Sprintf("Failed to finalize history tracking for %s", t.stage), err)
	}
}

// recordRollups stores the per-organization rollups of a summary.
func (t *stageTracker) recordRollups(dateToken string, rollups map[string]schema.OrgRollup) {
	if t == nil {
		return
	}
	if err := t.store.RecordOrgRollups(t.runID, dateToken, rollups); err != nil {
		contract.LogWarn("Failed to record organization rollups", err)
	}
}

package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/ghsnap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClearHistory(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "history.db")
		require.NoError(t, os.WriteFile(dbPath, []byte("x"), 0o644))

		require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))

		_, err := os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearHistory(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite requires path", func(t *testing.T) {
		assert.Error(t, ClearHistory(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearHistory(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestHistoryStoreManager(t *testing.T) {
	mgr := &HistoryStoreManager{}
	assert.Nil(t, mgr.GetHistoryStore())

	store := &MockHistoryStore{}
	mgr.history = store
	assert.Same(t, store, mgr.GetHistoryStore())
}

func TestPrintHistoryStatus(t *testing.T) {
	var out bytes.Buffer
	PrintHistoryStatus(&out, schema.HistoryStatus{
		Backend:        "sqlite",
		Connected:      true,
		TotalRuns:      2,
		LastRunID:      7,
		LastRunTime:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		OldestRunTime:  time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		TotalSnapshots: 4,
		TableSizes:     map[string]int64{orgSnapshotsTable: 4, pipelineRunsTable: 2},
	})

	text := out.String()
	assert.Contains(t, text, "History Backend: sqlite")
	assert.Contains(t, text, "Last Run ID: 7")
	assert.Contains(t, text, "Last Run: 2024-03-01 10:00:00")
	assert.Contains(t, text, "ghsnap_org_snapshots: 4 rows")

	out.Reset()
	PrintHistoryStatus(&out, schema.HistoryStatus{Backend: "none"})
	assert.NotContains(t, out.String(), "Total Runs")
}

func TestExecuteHistoryExport(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		err := ExecuteHistoryExport(&bytes.Buffer{}, &MockHistoryStore{}, "")
		assert.ErrorContains(t, err, "--output-file is required")
	})

	t.Run("requires store", func(t *testing.T) {
		err := ExecuteHistoryExport(&bytes.Buffer{}, nil, "out")
		assert.ErrorContains(t, err, "not initialized")
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)

		err := ExecuteHistoryExport(&bytes.Buffer{}, store, "out")

		assert.ErrorContains(t, err, "no run history found")
		store.AssertNotCalled(t, "GetAllRuns")
	})

	t.Run("writes both files", func(t *testing.T) {
		store := newSQLiteStore(t)
		runID, err := store.BeginRun(schema.SummarizeStage, "2024-03-01", time.Now(), nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordOrgRollups(runID, "2024-03-01", map[string]schema.OrgRollup{"acme": {Repositories: 1}}))

		prefix := filepath.Join(t.TempDir(), "history")
		var out bytes.Buffer
		require.NoError(t, ExecuteHistoryExport(&out, store, prefix))

		assert.FileExists(t, prefix+".pipeline_runs.parquet")
		assert.FileExists(t, prefix+".org_snapshots.parquet")
		assert.Contains(t, out.String(), "Exported 1 pipeline runs")
		assert.Contains(t, out.String(), "Exported 1 org snapshots")
	})
}

func TestMockHistoryManager(t *testing.T) {
	mgr := &MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(nil)
	assert.Nil(t, mgr.GetHistoryStore())

	store := &MockHistoryStore{}
	store.On("BeginRun", schema.ValidateStage, "2024-03-01", mock.Anything, mock.Anything).Return(int64(3), nil)
	id, err := store.BeginRun(schema.ValidateStage, "2024-03-01", time.Now(), nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

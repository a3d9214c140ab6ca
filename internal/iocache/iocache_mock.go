package iocache

import (
	"time"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(stage schema.Stage, dateToken string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(stage, dateToken, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, endTime time.Time, recordsWritten, skipped int) error {
	args := m.Called(runID, endTime, recordsWritten, skipped)
	return args.Error(0)
}

// RecordOrgRollups implements the HistoryStore interface.
func (m *MockHistoryStore) RecordOrgRollups(runID int64, dateToken string, rollups map[string]schema.OrgRollup) error {
	args := m.Called(runID, dateToken, rollups)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.PipelineRunRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.PipelineRunRecord)
	return records, args.Error(1)
}

// GetAllOrgSnapshots implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllOrgSnapshots() ([]schema.OrgSnapshotRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.OrgSnapshotRecord)
	return records, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

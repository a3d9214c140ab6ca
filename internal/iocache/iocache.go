// Package iocache persists the pipeline run history.
package iocache

import (
	"sync"

	"github.com/huangsam/ghsnap/internal/contract"
)

// HistoryStoreManager holds the HistoryStore shared by all commands.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the HistoryStore, or nil when history is not initialized.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

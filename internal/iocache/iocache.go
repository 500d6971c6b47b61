// Package iocache persists reports, tracked runs and embeddings across invocations.
package iocache

import (
	"sync"

	"github.com/personalens/personalens/internal/contract"
)

// StoreManagerImpl manages the vault and run store instances.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	vault        contract.ReportVault
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetVault returns the report vault.
func (mgr *StoreManagerImpl) GetVault() contract.ReportVault {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.vault
}

// GetRunStore returns the run store.
func (mgr *StoreManagerImpl) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

// NewStoreManager wraps already opened stores, mainly for tests and the MCP server.
func NewStoreManager(vault contract.ReportVault, runs contract.RunStore) *StoreManagerImpl {
	return &StoreManagerImpl{vault: vault, runs: runs}
}

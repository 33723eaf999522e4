// Package iocache persists converter profiles and evaluation history.
package iocache

import (
	"sync"

	"github.com/mccforecast/fcst/internal/contract"
)

// StoreManagerImpl holds the profile cache and the evaluation history store.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	profile      contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetProfileStore returns the column-profile CacheStore.
func (mgr *StoreManagerImpl) GetProfileStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.profile
}

// GetHistoryStore returns the evaluation HistoryStore, or nil when history is disabled.
func (mgr *StoreManagerImpl) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

package models

// NewTestAdStore creates a new in-memory ad store for testing
func NewTestAdStore(ads ...AdRecord) AdStore {
	store := NewInMemoryAdStore()
	_ = store.ReloadAll(ads)
	return store
}

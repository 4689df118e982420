package models

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
)

// ErrNotFound is returned when an entity is not found in the data store
var ErrNotFound = errors.New("entity not found")

// ErrDuplicateID is returned when inserting an ad whose ID already exists.
var ErrDuplicateID = errors.New("duplicate ad id")

// AdStore provides thread-safe access to the ad records known to this process.
// Reads never block writers: every write builds a new snapshot and swaps it in.
type AdStore interface {
	// Read operations (hot path)
	GetAd(id string) *AdRecord
	// GetAdsForPage mirrors the upstream read contract: ACTIVE ads whose
	// pages contain pageKey, in load order.
	GetAdsForPage(pageKey string) []AdRecord
	GetAllAds() []AdRecord

	// Atomic bulk operations
	ReloadAll(ads []AdRecord) error

	// CRUD operations for real-time updates
	InsertAd(ad AdRecord) error
	UpdateAd(ad AdRecord) error
	DeleteAd(id string) error
}

// adSnapshot is an immutable view of all ads and their indexes.
type adSnapshot struct {
	ads       []AdRecord
	byID      map[string]int
	pageIndex map[string][]int // page key -> positions in ads
}

// InMemoryAdStore implements AdStore with atomic snapshot updates.
// Writers are serialized by writeMu so that concurrent load-modify-store
// cycles cannot drop each other's changes; readers never take it.
type InMemoryAdStore struct {
	data    atomic.Pointer[adSnapshot]
	writeMu sync.Mutex
}

// NewInMemoryAdStore creates a new, empty AdStore.
func NewInMemoryAdStore() *InMemoryAdStore {
	store := &InMemoryAdStore{}
	store.data.Store(buildSnapshot(nil))
	return store
}

// GetAd returns a copy of the ad with the given ID, or nil.
func (s *InMemoryAdStore) GetAd(id string) *AdRecord {
	data := s.data.Load()
	if i, ok := data.byID[id]; ok {
		ad := data.ads[i].Clone()
		return &ad
	}
	return nil
}

// GetAdsForPage returns ACTIVE ads listing pageKey.
func (s *InMemoryAdStore) GetAdsForPage(pageKey string) []AdRecord {
	data := s.data.Load()
	idx := data.pageIndex[pageKey]
	out := make([]AdRecord, 0, len(idx))
	for _, i := range idx {
		if data.ads[i].Status == StatusActive {
			out = append(out, data.ads[i].Clone())
		}
	}
	return out
}

// GetAllAds returns every ad regardless of status, ordered by ID.
func (s *InMemoryAdStore) GetAllAds() []AdRecord {
	data := s.data.Load()
	out := make([]AdRecord, len(data.ads))
	for i := range data.ads {
		out[i] = data.ads[i].Clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ReloadAll atomically replaces the full ad set.
func (s *InMemoryAdStore) ReloadAll(ads []AdRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.data.Store(buildSnapshot(ads))
	return nil
}

// InsertAd adds a new ad. The ID must be unique.
func (s *InMemoryAdStore) InsertAd(ad AdRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.data.Load()
	if _, ok := current.byID[ad.ID]; ok {
		return ErrDuplicateID
	}
	ads := make([]AdRecord, len(current.ads), len(current.ads)+1)
	copy(ads, current.ads)
	ads = append(ads, ad.Clone())
	s.data.Store(buildSnapshot(ads))
	return nil
}

// UpdateAd replaces an existing ad in place, keeping its load order.
func (s *InMemoryAdStore) UpdateAd(ad AdRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.data.Load()
	i, ok := current.byID[ad.ID]
	if !ok {
		return ErrNotFound
	}
	ads := make([]AdRecord, len(current.ads))
	copy(ads, current.ads)
	ads[i] = ad.Clone()
	s.data.Store(buildSnapshot(ads))
	return nil
}

// DeleteAd permanently removes an ad.
func (s *InMemoryAdStore) DeleteAd(id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.data.Load()
	if _, ok := current.byID[id]; !ok {
		return ErrNotFound
	}
	ads := make([]AdRecord, 0, len(current.ads)-1)
	for _, ad := range current.ads {
		if ad.ID != id {
			ads = append(ads, ad)
		}
	}
	s.data.Store(buildSnapshot(ads))
	return nil
}

func buildSnapshot(ads []AdRecord) *adSnapshot {
	snap := &adSnapshot{
		ads:       make([]AdRecord, len(ads)),
		byID:      make(map[string]int, len(ads)),
		pageIndex: make(map[string][]int),
	}
	for i := range ads {
		snap.ads[i] = ads[i].Clone()
		snap.byID[ads[i].ID] = i
		seen := make(map[string]struct{}, len(ads[i].Pages))
		for _, p := range ads[i].Pages {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			snap.pageIndex[p] = append(snap.pageIndex[p], i)
		}
	}
	return snap
}

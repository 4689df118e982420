package models

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeAd(id string, status Status, pages ...string) AdRecord {
	return AdRecord{ID: id, Title: id, ImageURL: id + ".png", Status: status, Pages: pages, Placement: PlacementRight, ActionType: ActionRedirect}
}

func TestGetAdsForPage(t *testing.T) {
	store := NewInMemoryAdStore()
	require.NoError(t, store.ReloadAll([]AdRecord{
		storeAd("a", StatusActive, "HOME", "DEALS"),
		storeAd("b", StatusInactive, "HOME"),
		storeAd("c", StatusActive, "DEALS"),
		storeAd("d", StatusExpired, "HOME"),
		storeAd("e", StatusActive, "HOME", "HOME"),
	}))

	home := store.GetAdsForPage("HOME")
	require.Len(t, home, 2)
	assert.Equal(t, "a", home[0].ID)
	assert.Equal(t, "e", home[1].ID)

	assert.Len(t, store.GetAdsForPage("DEALS"), 2)
	assert.Empty(t, store.GetAdsForPage("EVENTS"))
}

func TestAdStoreReturnsCopies(t *testing.T) {
	store := NewInMemoryAdStore()
	require.NoError(t, store.InsertAd(storeAd("a", StatusActive, "HOME")))

	got := store.GetAdsForPage("HOME")
	got[0].Pages[0] = "MUTATED"

	again := store.GetAd("a")
	require.NotNil(t, again)
	assert.Equal(t, []string{"HOME"}, again.Pages)
}

func TestAdStoreCRUD(t *testing.T) {
	store := NewInMemoryAdStore()
	require.NoError(t, store.InsertAd(storeAd("a", StatusActive, "HOME")))
	assert.ErrorIs(t, store.InsertAd(storeAd("a", StatusActive, "HOME")), ErrDuplicateID)

	updated := storeAd("a", StatusInactive, "HOME")
	require.NoError(t, store.UpdateAd(updated))
	assert.Equal(t, StatusInactive, store.GetAd("a").Status)
	assert.Empty(t, store.GetAdsForPage("HOME"))

	assert.ErrorIs(t, store.UpdateAd(storeAd("zzz", StatusActive)), ErrNotFound)

	require.NoError(t, store.DeleteAd("a"))
	assert.Nil(t, store.GetAd("a"))
	assert.ErrorIs(t, store.DeleteAd("a"), ErrNotFound)
}

func TestGetAllAdsSortedByID(t *testing.T) {
	store := NewTestAdStore(storeAd("b", StatusActive), storeAd("a", StatusExpired))
	all := store.GetAllAds()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}

func TestAdStoreConcurrentWritesKeepEveryAd(t *testing.T) {
	store := NewInMemoryAdStore()
	require.NoError(t, store.InsertAd(storeAd("seed", StatusActive, "HOME")))

	const writers = 500
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.InsertAd(storeAd(fmt.Sprintf("ad-%04d", i), StatusActive, "HOME")))
		}(i)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.UpdateAd(storeAd("seed", StatusActive, "HOME", "DEALS")))
		}()
	}
	wg.Wait()

	assert.Len(t, store.GetAllAds(), writers+1)
	assert.Len(t, store.GetAdsForPage("HOME"), writers+1)
	assert.Len(t, store.GetAdsForPage("DEALS"), 1)
}

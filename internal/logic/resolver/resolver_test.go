package resolver

import (
	"testing"

	"github.com/patrickwarner/adslots/internal/logic"
	"github.com/patrickwarner/adslots/internal/logic/dispatch"
	"github.com/patrickwarner/adslots/internal/models"
	"github.com/patrickwarner/adslots/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var day = models.MustParseDate("2024-06-15")

func homeAd(id string) models.AdRecord {
	return models.AdRecord{
		ID:         id,
		Title:      id,
		ImageURL:   id + ".png",
		ActionType: models.ActionRedirect,
		Pages:      []string{"HOME"},
		Placement:  models.PlacementRight,
		Status:     models.StatusActive,
	}
}

func zoneIDs(res models.Resolution, p models.Placement) []string {
	out := []string{}
	for _, a := range res.Zone(p) {
		out = append(out, a.ID)
	}
	return out
}

func TestResolveUndatedUntargetedAdShownToday(t *testing.T) {
	viewers := []models.ViewerContext{
		{},
		models.NewViewerContext("CA", "LA", "90001"),
	}
	for _, v := range viewers {
		res := Resolve("HOME", []models.AdRecord{homeAd("a")}, v, day)
		assert.Equal(t, []string{"a"}, zoneIDs(res, models.PlacementRight))
	}
}

func TestResolveInactiveAdHidden(t *testing.T) {
	ad := homeAd("a")
	ad.Status = models.StatusInactive
	res := Resolve("HOME", []models.AdRecord{ad}, models.ViewerContext{}, day)
	assert.Zero(t, res.Count())
}

func TestResolveUnknownViewerStateMatchesTargetedAd(t *testing.T) {
	ad := homeAd("a")
	ad.TargetState = models.StringPtr("TX")
	res := Resolve("HOME", []models.AdRecord{ad}, models.ViewerContext{}, day)
	assert.Equal(t, 1, res.Count())
}

func TestResolveStateMismatchHidden(t *testing.T) {
	ad := homeAd("a")
	ad.TargetState = models.StringPtr("TX")
	res := Resolve("HOME", []models.AdRecord{ad}, models.NewViewerContext("CA", "", ""), day)
	assert.Zero(t, res.Count())
}

func TestResolveZoneOrderedByPosition(t *testing.T) {
	two := homeAd("pos2")
	two.Position = 2
	one := homeAd("pos1")
	one.Position = 1
	res := Resolve("HOME", []models.AdRecord{two, one}, models.ViewerContext{}, day)
	assert.Equal(t, []string{"pos1", "pos2"}, zoneIDs(res, models.PlacementRight))
}

func TestResolvePopupFallsBackToMainImage(t *testing.T) {
	ad := homeAd("p")
	ad.ActionType = models.ActionPopup
	ad.ImageURL = "x.png"
	res := Resolve("HOME", []models.AdRecord{ad}, models.ViewerContext{}, day)
	resolved, ok := res.Find("p")
	require.True(t, ok)
	action := dispatch.Dispatch(resolved)
	require.Equal(t, dispatch.KindOverlay, action.Kind)
	assert.Equal(t, "x.png", action.Overlay.ImageURL)
}

func TestResolveInclusionIsConjunction(t *testing.T) {
	mk := func(id string, mutate func(*models.AdRecord)) models.AdRecord {
		a := homeAd(id)
		mutate(&a)
		return a
	}
	ads := []models.AdRecord{
		mk("ok", func(*models.AdRecord) {}),
		mk("expired-status", func(a *models.AdRecord) { a.Status = models.StatusExpired }),
		mk("other-page", func(a *models.AdRecord) { a.Pages = []string{"EVENTS"} }),
		mk("future", func(a *models.AdRecord) { a.StartDate = models.DatePtr(models.MustParseDate("2024-07-01")) }),
		mk("past", func(a *models.AdRecord) { a.EndDate = models.DatePtr(models.MustParseDate("2024-06-14")) }),
		mk("wrong-city", func(a *models.AdRecord) { a.TargetCity = models.StringPtr("Dallas") }),
		mk("wrong-pin", func(a *models.AdRecord) { a.TargetPincode = models.StringPtr("00000") }),
		mk("right-everything", func(a *models.AdRecord) {
			a.TargetState = models.StringPtr("TX")
			a.TargetCity = models.StringPtr("Austin")
			a.TargetPincode = models.StringPtr("73301")
			a.StartDate = models.DatePtr(models.MustParseDate("2024-06-01"))
			a.EndDate = models.DatePtr(models.MustParseDate("2024-06-30"))
		}),
		mk("no-image", func(a *models.AdRecord) { a.ImageURL = "" }),
	}
	res := Resolve("HOME", ads, models.NewViewerContext("TX", "Austin", "73301"), day)
	assert.Equal(t, []string{"ok", "right-everything"}, zoneIDs(res, models.PlacementRight))
}

func TestResolveAlwaysHasEveryZone(t *testing.T) {
	res := Resolve("HOME", nil, models.ViewerContext{}, day)
	require.Len(t, res.Zones, len(models.Placements))
	for _, p := range models.Placements {
		assert.NotNil(t, res.Zones[p])
		assert.Empty(t, res.Zones[p])
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	a, b, c := homeAd("a"), homeAd("b"), homeAd("c")
	b.Placement = models.PlacementInline
	c.Position = -3
	ads := []models.AdRecord{a, b, c}

	first := Resolve("HOME", ads, models.ViewerContext{}, day)
	second := Resolve("HOME", ads, models.ViewerContext{}, day)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b", "c"}, []string{ads[0].ID, ads[1].ID, ads[2].ID}, "input must not be reordered")
}

func TestResolveLogsAndCountsUnknownPlacement(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	metrics := observability.NewMockMetricsRegistry()
	r := New(zap.New(core), metrics)

	bad := homeAd("bad")
	bad.Placement = "SIDEBAR"
	res := r.Resolve("HOME", []models.AdRecord{homeAd("good"), bad}, models.ViewerContext{}, day)

	assert.Equal(t, 1, res.Count())
	assert.Equal(t, 1, metrics.UnknownPlacements)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ads with unknown placement skipped", entry.Message)
	assert.Equal(t, 1, metrics.Resolutions["HOME"])
	assert.Equal(t, 1, metrics.AdsPlaced[string(models.PlacementRight)])
	assert.Equal(t, 1, metrics.EmptyZones[string(models.PlacementInline)])
}

func TestResolveWithTrace(t *testing.T) {
	var trace logic.SelectionTrace
	inactive := homeAd("off")
	inactive.Status = models.StatusInactive
	New(nil, nil).ResolveWithTrace("HOME", []models.AdRecord{homeAd("a"), inactive}, models.ViewerContext{}, day, &trace)

	stages := make([]string, 0, len(trace.Steps))
	for _, s := range trace.Steps {
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []string{"candidates", "eligible", "renderable", "routed"}, stages)
	routed, _ := trace.Step("routed")
	assert.Equal(t, []string{"a"}, routed.AdIDs)
}

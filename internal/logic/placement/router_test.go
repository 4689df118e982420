package placement

import (
	"testing"

	"github.com/patrickwarner/adslots/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placed(id string, zone models.Placement, pos int) models.AdRecord {
	return models.AdRecord{ID: id, Placement: zone, Position: pos}
}

func ids(ads []models.AdRecord) []string {
	out := make([]string, 0, len(ads))
	for _, a := range ads {
		out = append(out, a.ID)
	}
	return out
}

func TestRouteAllZonesPresent(t *testing.T) {
	zones, report := Route(nil)
	require.Len(t, zones, len(models.Placements))
	for _, p := range models.Placements {
		list, ok := zones[p]
		assert.True(t, ok, "zone %s missing", p)
		assert.NotNil(t, list, "zone %s must be an empty list, not nil", p)
		assert.Empty(t, list)
	}
	assert.Empty(t, report.UnknownPlacement)
}

func TestRouteSortsByPosition(t *testing.T) {
	zones, _ := Route([]models.AdRecord{
		placed("second", models.PlacementRight, 2),
		placed("first", models.PlacementRight, 1),
	})
	assert.Equal(t, []string{"first", "second"}, ids(zones[models.PlacementRight]))
}

func TestRouteStableOnTies(t *testing.T) {
	zones, _ := Route([]models.AdRecord{
		placed("c", models.PlacementInline, 5),
		placed("a", models.PlacementInline, 1),
		placed("x", models.PlacementInline, 5),
		placed("b", models.PlacementInline, 1),
		placed("y", models.PlacementInline, 5),
	})
	assert.Equal(t, []string{"a", "b", "c", "x", "y"}, ids(zones[models.PlacementInline]))
}

func TestRouteGroupsByZone(t *testing.T) {
	zones, _ := Route([]models.AdRecord{
		placed("tl", models.PlacementTopLeft, 0),
		placed("fr", models.PlacementFooterRight, 0),
		placed("tl2", models.PlacementTopLeft, -1),
	})
	assert.Equal(t, []string{"tl2", "tl"}, ids(zones[models.PlacementTopLeft]))
	assert.Equal(t, []string{"fr"}, ids(zones[models.PlacementFooterRight]))
	assert.Empty(t, zones[models.PlacementTopRight])
}

func TestRouteReportsUnknownPlacement(t *testing.T) {
	zones, report := Route([]models.AdRecord{
		placed("good", models.PlacementRight, 1),
		placed("bad", models.Placement("SIDEBAR"), 1),
		placed("empty", models.Placement(""), 1),
	})
	assert.Equal(t, []string{"bad", "empty"}, report.UnknownPlacement)
	total := 0
	for _, list := range zones {
		total += len(list)
	}
	assert.Equal(t, 1, total)
	_, exists := zones[models.Placement("SIDEBAR")]
	assert.False(t, exists)
}

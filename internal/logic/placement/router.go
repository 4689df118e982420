package placement

import (
	"sort"

	"github.com/patrickwarner/adslots/internal/models"
)

// Report lists ads the router could not place.
type Report struct {
	// UnknownPlacement holds the IDs of ads whose placement is not one of
	// the fixed zones, in input order.
	UnknownPlacement []string
}

// Route partitions ads into one list per zone. Every zone in
// models.Placements is present in the result, empty when nothing targets it.
// Each list is sorted ascending by Position; equal positions keep their input
// order.
func Route(ads []models.AdRecord) (map[models.Placement][]models.AdRecord, Report) {
	zones := make(map[models.Placement][]models.AdRecord, len(models.Placements))
	for _, p := range models.Placements {
		zones[p] = []models.AdRecord{}
	}

	var report Report
	for _, ad := range ads {
		if !ad.Placement.Valid() {
			report.UnknownPlacement = append(report.UnknownPlacement, ad.ID)
			continue
		}
		zones[ad.Placement] = append(zones[ad.Placement], ad)
	}

	for _, list := range zones {
		sortByPosition(list)
	}
	return zones, report
}

func sortByPosition(ads []models.AdRecord) {
	sort.SliceStable(ads, func(i, j int) bool {
		return ads[i].Position < ads[j].Position
	})
}

package filters

import (
	logic "github.com/patrickwarner/adslots/internal/logic"
	"github.com/patrickwarner/adslots/internal/models"
)

// FilterCandidates returns the ads that may appear on pageKey at all: status
// ACTIVE and pageKey listed in the ad's pages. Status is authoritative, so
// INACTIVE and EXPIRED ads are dropped whatever their dates say.
func FilterCandidates(ads []models.AdRecord, pageKey string) []models.AdRecord {
	return FilterByPage(FilterByStatus(ads), pageKey)
}

// FilterByStatus keeps only ACTIVE ads.
func FilterByStatus(ads []models.AdRecord) []models.AdRecord {
	var out []models.AdRecord
	for _, ad := range ads {
		if ad.Status == models.StatusActive {
			out = append(out, ad)
		}
	}
	return out
}

// FilterByPage keeps ads that list pageKey.
func FilterByPage(ads []models.AdRecord, pageKey string) []models.AdRecord {
	var out []models.AdRecord
	for _, ad := range ads {
		if ad.OnPage(pageKey) {
			out = append(out, ad)
		}
	}
	return out
}

// FilterByEligibility applies the date window and location predicates.
func FilterByEligibility(ads []models.AdRecord, today models.Date, viewer models.ViewerContext) []models.AdRecord {
	var out []models.AdRecord
	for _, ad := range ads {
		if logic.IsEligible(ad, today, viewer) {
			out = append(out, ad)
		}
	}
	return out
}

// FilterRenderable drops ads without a main image; they are never rendered
// and never dispatched.
func FilterRenderable(ads []models.AdRecord) []models.AdRecord {
	var out []models.AdRecord
	for _, ad := range ads {
		if ad.HasImage() {
			out = append(out, ad)
		}
	}
	return out
}

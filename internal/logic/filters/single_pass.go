package filters

import (
	"fmt"

	"github.com/patrickwarner/adslots/internal/logic"
	"github.com/patrickwarner/adslots/internal/models"
)

// Rejection keys recorded by the single pass filter, in addition to the
// eligibility reasons from the logic package.
const (
	RejectStatus   = "status"
	RejectPage     = "page"
	RejectNoImage  = "no_image"
	stageCandidate = "candidates"
	stageEligible  = "eligible"
	stageRender    = "renderable"
)

// SinglePassFilter runs the candidate, eligibility and renderability checks
// in one loop over the input, preserving input order.
type SinglePassFilter struct {
	today  models.Date
	viewer models.ViewerContext
}

// NewSinglePassFilter creates a filter bound to an evaluation date and viewer.
func NewSinglePassFilter(today models.Date, viewer models.ViewerContext) *SinglePassFilter {
	return &SinglePassFilter{today: today, viewer: viewer}
}

// Result holds the survivors of each stage and per-reason rejection counts.
type Result struct {
	Candidates []models.AdRecord
	Eligible   []models.AdRecord
	Renderable []models.AdRecord
	Rejected   map[string]int
}

// FilterAds applies every filter in a single pass.
func (spf *SinglePassFilter) FilterAds(ads []models.AdRecord, pageKey string) Result {
	res := Result{
		Candidates: make([]models.AdRecord, 0, len(ads)),
		Eligible:   make([]models.AdRecord, 0, len(ads)),
		Renderable: make([]models.AdRecord, 0, len(ads)),
		Rejected:   make(map[string]int),
	}

	for _, ad := range ads {
		// 1. Lifecycle
		if ad.Status != models.StatusActive {
			res.Rejected[RejectStatus]++
			continue
		}
		// 2. Page membership
		if !ad.OnPage(pageKey) {
			res.Rejected[RejectPage]++
			continue
		}
		res.Candidates = append(res.Candidates, ad)

		// 3. Date window and location
		if reason := logic.EligibilityReason(ad, spf.today, spf.viewer); reason != "" {
			res.Rejected[reason]++
			continue
		}
		res.Eligible = append(res.Eligible, ad)

		// 4. Creative asset
		if !ad.HasImage() {
			res.Rejected[RejectNoImage]++
			continue
		}
		res.Renderable = append(res.Renderable, ad)
	}
	return res
}

// FilterAdsWithTrace performs single-pass filtering and records each stage.
func (spf *SinglePassFilter) FilterAdsWithTrace(ads []models.AdRecord, pageKey string, trace *logic.SelectionTrace) Result {
	res := spf.FilterAds(ads, pageKey)
	if trace == nil {
		return res
	}

	trace.AddStepWithDetails(stageCandidate, res.Candidates, map[string]string{
		"input_count":     fmt.Sprintf("%d", len(ads)),
		"output_count":    fmt.Sprintf("%d", len(res.Candidates)),
		"rejected_status": fmt.Sprintf("%d", res.Rejected[RejectStatus]),
		"rejected_page":   fmt.Sprintf("%d", res.Rejected[RejectPage]),
		"page_key":        pageKey,
	})

	eligibleDetails := map[string]string{
		"input_count":  fmt.Sprintf("%d", len(res.Candidates)),
		"output_count": fmt.Sprintf("%d", len(res.Eligible)),
		"today":        spf.today.String(),
	}
	for _, reason := range []string{logic.ReasonDateWindow, logic.ReasonState, logic.ReasonCity, logic.ReasonPincode} {
		if n := res.Rejected[reason]; n > 0 {
			eligibleDetails["rejected_"+reason] = fmt.Sprintf("%d", n)
		}
	}
	trace.AddStepWithDetails(stageEligible, res.Eligible, eligibleDetails)

	trace.AddStepWithDetails(stageRender, res.Renderable, map[string]string{
		"input_count":       fmt.Sprintf("%d", len(res.Eligible)),
		"output_count":      fmt.Sprintf("%d", len(res.Renderable)),
		"rejected_no_image": fmt.Sprintf("%d", res.Rejected[RejectNoImage]),
	})
	return res
}

// Package resolver turns a page key, a candidate set and a viewer into the
// per-zone creative lists a page renders. Every caller (HTTP handlers, the
// MCP tools) goes through Resolver so the rules live in one place.
package resolver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/patrickwarner/adslots/internal/logic"
	"github.com/patrickwarner/adslots/internal/logic/filters"
	"github.com/patrickwarner/adslots/internal/logic/placement"
	"github.com/patrickwarner/adslots/internal/models"
	"github.com/patrickwarner/adslots/internal/observability"
)

const stageRouted = "routed"

// Resolver evaluates candidate ads for a page. It holds no per-call state;
// the logger and metrics only observe the pipeline.
type Resolver struct {
	logger  *zap.Logger
	metrics observability.MetricsRegistry
}

// New returns a Resolver. Nil dependencies are replaced by no-ops.
func New(logger *zap.Logger, metrics observability.MetricsRegistry) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Resolver{logger: logger, metrics: metrics}
}

// Resolve runs the full pipeline without observability side effects.
func Resolve(pageKey string, candidates []models.AdRecord, viewer models.ViewerContext, today models.Date) models.Resolution {
	return New(nil, nil).Resolve(pageKey, candidates, viewer, today)
}

// Resolve filters candidates by status and page, evaluates the date window
// and location predicates against today and viewer, drops creatives without
// an image, and routes the rest into ordered zones. It is a pure function of
// its inputs: identical arguments always produce identical output.
func (r *Resolver) Resolve(pageKey string, candidates []models.AdRecord, viewer models.ViewerContext, today models.Date) models.Resolution {
	return r.ResolveWithTrace(pageKey, candidates, viewer, today, nil)
}

// ResolveWithTrace is Resolve with each stage recorded into trace.
func (r *Resolver) ResolveWithTrace(pageKey string, candidates []models.AdRecord, viewer models.ViewerContext, today models.Date, trace *logic.SelectionTrace) models.Resolution {
	res := filters.NewSinglePassFilter(today, viewer).FilterAdsWithTrace(candidates, pageKey, trace)

	zones, report := placement.Route(res.Renderable)
	if n := len(report.UnknownPlacement); n > 0 {
		r.logger.Warn("ads with unknown placement skipped",
			zap.String("page_key", pageKey),
			zap.Strings("ad_ids", report.UnknownPlacement))
		r.metrics.IncrementUnknownPlacements(n)
	}

	if trace != nil {
		routed := make([]models.AdRecord, 0, len(res.Renderable))
		for _, p := range models.Placements {
			routed = append(routed, zones[p]...)
		}
		trace.AddStepWithDetails(stageRouted, routed, map[string]string{
			"input_count":                fmt.Sprintf("%d", len(res.Renderable)),
			"output_count":               fmt.Sprintf("%d", len(routed)),
			"rejected_unknown_placement": fmt.Sprintf("%d", len(report.UnknownPlacement)),
		})
	}

	r.metrics.IncrementResolutions(pageKey)
	for _, p := range models.Placements {
		if n := len(zones[p]); n > 0 {
			r.metrics.AddAdsPlaced(string(p), n)
		} else {
			r.metrics.IncrementEmptyZones(string(p))
		}
	}

	r.logger.Debug("page resolved",
		zap.String("page_key", pageKey),
		zap.String("today", today.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("eligible", len(res.Eligible)),
		zap.Int("placed", len(res.Renderable)-len(report.UnknownPlacement)))

	return models.Resolution{
		PageKey: pageKey,
		Date:    today,
		Viewer:  viewer,
		Zones:   zones,
	}
}

package api

import (
	"context"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/adslots/internal/logic"
	"github.com/patrickwarner/adslots/internal/logic/dispatch"
	"github.com/patrickwarner/adslots/internal/logic/render"
	"github.com/patrickwarner/adslots/internal/logic/resolver"
	"github.com/patrickwarner/adslots/internal/middleware"
	"github.com/patrickwarner/adslots/internal/models"
	"github.com/patrickwarner/adslots/internal/observability"
)

var tracer = observability.Tracer("adslots/api")

type pageResponse struct {
	models.Resolution
	Debug any `json:"debug,omitempty"`
}

type clickResponse struct {
	dispatch.Action
	State dispatch.State `json:"state"`
}

type dismissResponse struct {
	Dismissed bool           `json:"dismissed"`
	State     dispatch.State `json:"state"`
}

// requestDate returns the date query parameter when present, otherwise today.
func (s *Server) requestDate(r *http.Request) (models.Date, error) {
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		return models.ParseDate(v)
	}
	return s.Today(), nil
}

func (s *Server) resolve(ctx context.Context, logger *zap.Logger, pageKey string, viewer models.ViewerContext, today models.Date, sel *logic.SelectionTrace) models.Resolution {
	rs := s.Resolver
	if rs == nil {
		rs = resolver.New(s.Logger, s.Metrics)
	}
	return rs.ResolveWithTrace(pageKey, s.candidates(ctx, logger, pageKey), viewer, today, sel)
}

func sessionKey(pageKey, sessionID string) string {
	return pageKey + "\x00" + sessionID
}

// PageAdsHandler handles GET /pages/{pageKey}/ads and returns the ordered
// creatives of every zone.
func (s *Server) PageAdsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "PageAdsHandler",
		trace.WithAttributes(
			attribute.String("http.method", "GET"),
			attribute.String("http.route", "/pages/{pageKey}/ads"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "page_ads"
	const method = "GET"

	pageKey := mux.Vars(r)["pageKey"]
	today, err := s.requestDate(r)
	if err != nil {
		logger.Warn("invalid date parameter", zap.Error(err))
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	viewer := logic.ResolveViewerFromRequest(r, s.GeoIP)

	debugEnabled := s.DebugTrace || r.URL.Query().Get("debug") == "1"
	var sel *logic.SelectionTrace
	if debugEnabled {
		sel = &logic.SelectionTrace{}
	}

	res := s.resolve(ctx, logger, pageKey, viewer, today, sel)
	span.SetAttributes(observability.ResolutionAttributes(res)...)
	if s.LogSampler.Sample() {
		logger.Info("page resolved",
			zap.String("date", today.String()),
			zap.Int("ads_placed", res.Count()),
			zap.String("event_type", "page_resolve"))
	}

	out := pageResponse{Resolution: res}
	if sel != nil {
		out.Debug = map[string]any{"trace": sel}
	}
	writeJSON(w, http.StatusOK, out)
	s.observe(endpoint, method, http.StatusOK, start)
}

// ClickHandler handles POST /pages/{pageKey}/ads/{id}/click. The ad must be
// one the page currently shows to this viewer. With an X-Page-Session header
// the click is applied to that page's overlay slot.
func (s *Server) ClickHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ClickHandler",
		trace.WithAttributes(
			attribute.String("http.method", "POST"),
			attribute.String("http.route", "/pages/{pageKey}/ads/{id}/click"),
		))
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "click"
	const method = "POST"

	vars := mux.Vars(r)
	pageKey, id := vars["pageKey"], vars["id"]
	today, err := s.requestDate(r)
	if err != nil {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	res := s.resolve(ctx, logger, pageKey, logic.ResolveViewerFromRequest(r, s.GeoIP), today, nil)
	ad, ok := res.Find(id)
	if !ok {
		logger.Info("click on ad not shown", zap.String("ad_id", id))
		s.observe(endpoint, method, http.StatusNotFound, start)
		http.Error(w, "ad not shown on page", http.StatusNotFound)
		return
	}

	out := clickResponse{State: dispatch.StateIdle}
	if sessionID := r.Header.Get(middleware.PageSessionHeader); sessionID != "" {
		sess := s.Sessions.Get(sessionKey(pageKey, sessionID))
		out.Action = sess.Click(ad)
		out.State = sess.State()
	} else {
		out.Action = dispatch.Dispatch(ad)
	}

	span.SetAttributes(
		attribute.String("ad_id", id),
		attribute.String("dispatch.kind", string(out.Kind)),
	)
	s.Metrics.IncrementClicks(string(out.Kind))
	if s.LogSampler.Sample() {
		logger.Info("click dispatched",
			zap.String("ad_id", id),
			zap.String("kind", string(out.Kind)),
			zap.String("event_type", "click"))
	}

	writeJSON(w, http.StatusOK, out)
	s.observe(endpoint, method, http.StatusOK, start)
}

// DismissOverlayHandler handles POST /pages/{pageKey}/overlay/dismiss.
func (s *Server) DismissOverlayHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "overlay_dismiss"
	const method = "POST"

	sessionID := r.Header.Get(middleware.PageSessionHeader)
	if sessionID == "" {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, middleware.PageSessionHeader+" header required", http.StatusBadRequest)
		return
	}

	out := dismissResponse{State: dispatch.StateIdle}
	if sess, ok := s.Sessions.Lookup(sessionKey(mux.Vars(r)["pageKey"], sessionID)); ok {
		out.Dismissed = sess.Dismiss()
		out.State = sess.State()
	}
	writeJSON(w, http.StatusOK, out)
	s.observe(endpoint, method, http.StatusOK, start)
}

// OverlayHTMLHandler handles GET /pages/{pageKey}/overlay/html and renders
// the overlay currently open in the page session, or 204 when none is.
func (s *Server) OverlayHTMLHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "overlay_html"
	const method = "GET"

	sessionID := r.Header.Get(middleware.PageSessionHeader)
	if sessionID == "" {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, middleware.PageSessionHeader+" header required", http.StatusBadRequest)
		return
	}
	sess, ok := s.Sessions.Lookup(sessionKey(mux.Vars(r)["pageKey"], sessionID))
	if !ok {
		s.observe(endpoint, method, http.StatusNoContent, start)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ov, open := sess.Overlay()
	if !open {
		s.observe(endpoint, method, http.StatusNoContent, start)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeHTML(w, render.ComposeOverlayHTML(ov))
	s.observe(endpoint, method, http.StatusOK, start)
}

// ZoneHTMLHandler handles GET /pages/{pageKey}/ads/{zone}/html. When the zone
// has nothing to show the fallback query parameter is rendered as text.
func (s *Server) ZoneHTMLHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ZoneHTMLHandler")
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "zone_html"
	const method = "GET"

	vars := mux.Vars(r)
	pageKey := vars["pageKey"]
	zone := models.Placement(strings.ToUpper(vars["zone"]))
	if !zone.Valid() {
		s.observe(endpoint, method, http.StatusNotFound, start)
		http.Error(w, "unknown zone", http.StatusNotFound)
		return
	}
	today, err := s.requestDate(r)
	if err != nil {
		s.observe(endpoint, method, http.StatusBadRequest, start)
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	res := s.resolve(ctx, logger, pageKey, logic.ResolveViewerFromRequest(r, s.GeoIP), today, nil)
	fallback := ""
	if fb := r.URL.Query().Get("fallback"); fb != "" {
		fallback = `<div class="ad-zone-fallback">` + html.EscapeString(fb) + `</div>`
	}
	span.SetAttributes(attribute.String("zone", string(zone)), attribute.Int("ads", len(res.Zone(zone))))

	writeHTML(w, render.ComposeZoneHTML(zone, res.Zone(zone), fallback))
	s.observe(endpoint, method, http.StatusOK, start)
}

package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adslots/internal/config"
	"github.com/patrickwarner/adslots/internal/db"
	"github.com/patrickwarner/adslots/internal/geoip"
	"github.com/patrickwarner/adslots/internal/logic/dispatch"
	"github.com/patrickwarner/adslots/internal/logic/resolver"
	"github.com/patrickwarner/adslots/internal/models"
	"github.com/patrickwarner/adslots/internal/observability"
)

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger   *zap.Logger
	Store    *db.RedisStore
	PG       *db.Postgres
	AdStore  models.AdStore
	GeoIP    *geoip.GeoIP
	Resolver *resolver.Resolver
	Sessions *dispatch.Registry
	Metrics  observability.MetricsRegistry
	// LogSampler thins per-request info logs; nil logs every request.
	LogSampler *observability.LogSampler
	Config     config.Config
	DebugTrace bool
	// Clock supplies the wall clock. Handlers derive today's date from it in
	// the configured timezone; tests pin it.
	Clock    func() time.Time
	reloadMu sync.Mutex
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, store *db.RedisStore, pg *db.Postgres, adStore models.AdStore, geo *geoip.GeoIP, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	return &Server{
		Logger:     logger,
		Store:      store,
		PG:         pg,
		AdStore:    adStore,
		GeoIP:      geo,
		Resolver:   resolver.New(logger, metrics),
		Sessions:   dispatch.NewRegistry(cfg.MaxPageSessions),
		Metrics:    metrics,
		LogSampler: observability.NewLogSampler(cfg.LogSampleRate),
		Config:     cfg,
		DebugTrace: cfg.DebugTrace,
		Clock:      time.Now,
	}
}

// Today returns the current calendar date in the configured timezone.
func (s *Server) Today() models.Date {
	now := time.Now
	if s.Clock != nil {
		now = s.Clock
	}
	return models.DateOf(now().In(s.Config.Location()))
}

// candidates fetches the ACTIVE ads of a page. A failed fetch is logged and
// yields an empty set, so the page falls back in every zone.
func (s *Server) candidates(ctx context.Context, logger *zap.Logger, pageKey string) []models.AdRecord {
	if s.AdStore != nil {
		return s.AdStore.GetAdsForPage(pageKey)
	}
	if s.PG != nil {
		ads, err := s.PG.LoadActiveAdsForPage(ctx, pageKey)
		if err != nil {
			logger.Error("load page ads", zap.String("page_key", pageKey), zap.Error(err))
			return nil
		}
		return ads
	}
	logger.Warn("no ad source configured", zap.String("page_key", pageKey))
	return nil
}

func (s *Server) notifyUpdate(ctx context.Context, action, id string) {
	if s.Store == nil || s.Store.Client == nil {
		s.Logger.Warn("redis store not available, skipping update notification")
		return
	}
	msg := db.UpdateMessage{Entity: "ad", Action: action, ID: id}
	if err := s.Store.PublishUpdate(ctx, msg); err != nil {
		s.Logger.Error("failed to publish update message", zap.Error(err))
		return
	}
	s.Metrics.IncrementUpdateNotifications("published")
}

// HandleUpdate reacts to a change announced by another replica by reloading
// the store from Postgres.
func (s *Server) HandleUpdate(ctx context.Context, msg db.UpdateMessage) {
	s.Metrics.IncrementUpdateNotifications("received")
	s.Logger.Info("update notification received",
		zap.String("entity", msg.Entity),
		zap.String("action", msg.Action),
		zap.String("id", msg.ID))
	if err := s.Reload(ctx); err != nil {
		s.Logger.Error("reload after update notification", zap.Error(err))
	}
}

// Reload replaces the in-memory store with the current contents of Postgres.
func (s *Server) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.PG == nil {
		s.Metrics.IncrementReloads("error")
		return fmt.Errorf("postgres unavailable")
	}
	if s.AdStore == nil {
		s.Metrics.IncrementReloads("error")
		return fmt.Errorf("ad store unavailable")
	}

	ads, err := s.PG.LoadAds(ctx)
	if err != nil {
		s.Metrics.IncrementReloads("error")
		return fmt.Errorf("load ads: %w", err)
	}
	if err := s.AdStore.ReloadAll(ads); err != nil {
		s.Metrics.IncrementReloads("error")
		return fmt.Errorf("reload ad store: %w", err)
	}
	s.Metrics.IncrementReloads("success")
	return nil
}

func (s *Server) observe(endpoint, method string, status int, start time.Time) {
	s.Metrics.IncrementRequests(endpoint, method, fmt.Sprintf("%d", status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"

	"github.com/patrickwarner/adslots/internal/config"
	"github.com/patrickwarner/adslots/internal/db"
	"github.com/patrickwarner/adslots/internal/logic/dispatch"
	"github.com/patrickwarner/adslots/internal/logic/resolver"
	"github.com/patrickwarner/adslots/internal/models"
	"github.com/patrickwarner/adslots/internal/observability"
)

type ResolvePageAdsInput struct {
	PageKey string `json:"page_key"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Date    string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}

type Creative struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ImageURL    string `json:"image_url"`
	ActionType  string `json:"action_type"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Position    int    `json:"position"`
}

type ResolvePageAdsOutput struct {
	PageKey string                `json:"page_key"`
	Date    string                `json:"date"`
	Zones   map[string][]Creative `json:"zones"`
	Total   int                   `json:"total"`
}

type DispatchClickInput struct {
	PageKey string `json:"page_key"`
	AdID    string `json:"ad_id"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Date    string `json:"date,omitempty"`
}

type OverlayView struct {
	ImageURL    string `json:"image_url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ActionURL   string `json:"action_url,omitempty"`
}

type DispatchClickOutput struct {
	Kind    string       `json:"kind"`
	AdID    string       `json:"ad_id"`
	URL     string       `json:"url,omitempty"`
	Overlay *OverlayView `json:"overlay,omitempty"`
}

// SlotServer answers tool calls from the in-memory ad store.
type SlotServer struct {
	adStore  models.AdStore
	resolver *resolver.Resolver
	location *time.Location
	clock    func() time.Time
	logger   *zap.Logger
}

func (s *SlotServer) today(date string) (models.Date, error) {
	if date != "" {
		return models.ParseDate(date)
	}
	now := time.Now
	if s.clock != nil {
		now = s.clock
	}
	return models.DateOf(now().In(s.location)), nil
}

func (s *SlotServer) resolve(pageKey, state, city, pincode, date string) (models.Resolution, error) {
	pageKey = strings.TrimSpace(pageKey)
	if pageKey == "" {
		return models.Resolution{}, fmt.Errorf("page_key is required")
	}
	today, err := s.today(date)
	if err != nil {
		return models.Resolution{}, fmt.Errorf("invalid date: %w", err)
	}
	viewer := models.NewViewerContext(state, city, pincode)
	return s.resolver.Resolve(pageKey, s.adStore.GetAdsForPage(pageKey), viewer, today), nil
}

// ResolvePageAds implements the resolve_page_ads tool.
func (s *SlotServer) ResolvePageAds(ctx context.Context, req *mcp.CallToolRequest, input ResolvePageAdsInput) (*mcp.CallToolResult, ResolvePageAdsOutput, error) {
	res, err := s.resolve(input.PageKey, input.State, input.City, input.Pincode, input.Date)
	if err != nil {
		return nil, ResolvePageAdsOutput{}, err
	}

	out := ResolvePageAdsOutput{
		PageKey: res.PageKey,
		Date:    res.Date.String(),
		Zones:   make(map[string][]Creative, len(models.Placements)),
		Total:   res.Count(),
	}
	for _, p := range models.Placements {
		creatives := make([]Creative, 0, len(res.Zone(p)))
		for _, ad := range res.Zone(p) {
			c := Creative{
				ID:         ad.ID,
				Title:      ad.Title,
				ImageURL:   ad.ImageURL,
				ActionType: string(ad.ActionType),
				Position:   ad.Position,
			}
			if ad.RedirectURL != nil {
				c.RedirectURL = *ad.RedirectURL
			}
			creatives = append(creatives, c)
		}
		out.Zones[string(p)] = creatives
	}

	s.logger.Info("resolved page via MCP",
		zap.String("page_key", out.PageKey),
		zap.String("date", out.Date),
		zap.Int("total", out.Total))
	return nil, out, nil
}

// DispatchClick implements the dispatch_click tool. The ad must currently be
// shown on the page for the given viewer and date.
func (s *SlotServer) DispatchClick(ctx context.Context, req *mcp.CallToolRequest, input DispatchClickInput) (*mcp.CallToolResult, DispatchClickOutput, error) {
	res, err := s.resolve(input.PageKey, input.State, input.City, input.Pincode, input.Date)
	if err != nil {
		return nil, DispatchClickOutput{}, err
	}
	ad, ok := res.Find(input.AdID)
	if !ok {
		return nil, DispatchClickOutput{}, fmt.Errorf("ad %q is not shown on page %q", input.AdID, input.PageKey)
	}

	action := dispatch.Dispatch(ad)
	out := DispatchClickOutput{Kind: string(action.Kind), AdID: action.AdID, URL: action.URL}
	if action.Overlay != nil {
		out.Overlay = &OverlayView{
			ImageURL:    action.Overlay.ImageURL,
			Title:       action.Overlay.Title,
			Description: action.Overlay.Description,
			ActionURL:   action.Overlay.ActionURL,
		}
	}
	return nil, out, nil
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func registerTools(server *mcp.Server, slots *SlotServer) {
	viewerProps := func(extra map[string]interface{}) map[string]interface{} {
		props := map[string]interface{}{
			"page_key": stringProp("Page key, e.g. HOME or EVENTS"),
			"state":    stringProp("Viewer state (optional, unknown matches any target)"),
			"city":     stringProp("Viewer city (optional)"),
			"pincode":  stringProp("Viewer pincode (optional)"),
			"date":     map[string]interface{}{"type": "string", "format": "date", "description": "Evaluation date YYYY-MM-DD (optional, defaults to today)"},
		}
		for k, v := range extra {
			props[k] = v
		}
		return props
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_page_ads",
		Description: "Resolve which ad creatives appear in each placement zone of a page, in display order",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": viewerProps(nil),
			"required":   []string{"page_key"},
		},
	}, slots.ResolvePageAds)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dispatch_click",
		Description: "Describe what a click on a displayed creative does: navigate, show an overlay, or nothing",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": viewerProps(map[string]interface{}{
				"ad_id": stringProp("ID of the clicked ad"),
			}),
			"required": []string{"page_key", "ad_id"},
		},
	}, slots.DispatchClick)
}

func main() {
	cfg := config.Load()

	// stdout carries the protocol, so logs go to stderr
	logger, err := observability.NewLogger(observability.LogOptions{
		Service:     "adslots-mcp",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := db.InitPostgres(cfg.PostgresDSN, 10, 5, 30*time.Minute, cfg.DBConnMaxIdleTime)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pg.Close()

	adStore := models.NewInMemoryAdStore()
	reload := func() error {
		ads, err := pg.LoadAds(ctx)
		if err != nil {
			return err
		}
		logger.Info("Loaded ads from Postgres", zap.Int("ads", len(ads)))
		return adStore.ReloadAll(ads)
	}
	if err := reload(); err != nil {
		logger.Fatal("Failed to populate ad store", zap.Error(err))
	}

	// Keep the store current while the session runs; Redis is optional here.
	if store, err := db.InitRedis(cfg.RedisAddr); err != nil {
		logger.Warn("Redis unavailable, ads will not refresh", zap.Error(err))
	} else {
		defer store.Close()
		if _, err := store.Subscribe(ctx, func(msg db.UpdateMessage) {
			if err := reload(); err != nil {
				logger.Error("reload after update", zap.Error(err), zap.String("id", msg.ID))
			}
		}); err != nil {
			logger.Warn("update subscription failed", zap.Error(err))
		}
	}

	slots := &SlotServer{
		adStore:  adStore,
		resolver: resolver.New(logger, observability.NewNoOpRegistry()),
		location: cfg.Location(),
		logger:   logger,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "adslots",
		Version: "1.0.0",
	}, nil)
	registerTools(server, slots)

	frames := frameLog(logger)
	defer frames.Close()
	loggingTransport := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    frames,
	}

	logger.Info("MCP Server running via stdio with logging enabled")

	if err := server.Run(ctx, loggingTransport); err != nil {
		_ = frames.Close()
		logger.Fatal("Server error", zap.Error(err))
	}
}

// frameLog streams MCP wire frames to the stderr logger at debug level, one
// entry per line, so nothing is retained for the lifetime of the session.
func frameLog(logger *zap.Logger) *zapio.Writer {
	return &zapio.Writer{Log: logger.Named("frames"), Level: zapcore.DebugLevel}
}

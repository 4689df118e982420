package main

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adslots/internal/api"
	"github.com/patrickwarner/adslots/internal/config"
	"github.com/patrickwarner/adslots/internal/models"
	"github.com/patrickwarner/adslots/internal/observability"
)

func TestSimulatePageViewAgainstServer(t *testing.T) {
	logger = zap.NewNop()
	httpClient = &http.Client{Timeout: 5 * time.Second}
	clickRate = 1
	dismissRate = 1
	queryRate = 0

	popup := models.AdRecord{
		ID:         "pop",
		Title:      "Popup",
		ImageURL:   "pop.png",
		ActionType: models.ActionPopup,
		Pages:      []string{"HOME"},
		Placement:  models.PlacementInline,
		Status:     models.StatusActive,
	}
	srv := api.NewServer(zap.NewNop(), nil, nil, models.NewTestAdStore(popup), nil, observability.NewNoOpRegistry(), config.Config{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	server = ts.URL

	simulatePageView(rand.New(rand.NewSource(1)), "HOME", "192.0.2.1")

	if got := atomic.LoadUint64(&countOverlay); got != 1 {
		t.Fatalf("expected one overlay click, got %d", got)
	}
	if got := atomic.LoadUint64(&countDismissed); got != 1 {
		t.Fatalf("expected overlay dismissed, got %d", got)
	}
	if got := atomic.LoadUint64(&countErrors); got != 0 {
		t.Fatalf("unexpected errors: %d", got)
	}

	simulatePageView(rand.New(rand.NewSource(2)), "EVENTS", "192.0.2.1")
	if got := atomic.LoadUint64(&countEmpty); got != 1 {
		t.Fatalf("expected one empty page, got %d", got)
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickwarner/adslots/internal/logic/dispatch"
	"github.com/patrickwarner/adslots/internal/middleware"
	"github.com/patrickwarner/adslots/internal/models"
	"github.com/patrickwarner/adslots/internal/observability"
)

var (
	server      string
	pageCSV     string
	totalReq    int
	conc        int
	duration    time.Duration
	rate        float64
	clickRate   float64
	dismissRate float64
	queryRate   float64
	stats       bool
	debug       bool
	label       string
)

var logger *zap.Logger

// HTTP client with proper resource limits
var httpClient *http.Client

var userIPs = []string{
	"192.0.2.1",
	"198.51.100.1",
	"203.0.113.1",
}

const statsInterval = 5 * time.Second

var (
	countSent      uint64
	countSuccess   uint64
	countEmpty     uint64
	countErrors    uint64
	countNavigate  uint64
	countOverlay   uint64
	countNone      uint64
	countDismissed uint64
)

type pageResult struct {
	Zones map[string][]models.AdRecord `json:"zones"`
}

type clickResult struct {
	Kind dispatch.Kind `json:"kind"`
}

func main() {
	flag.StringVar(&server, "server", "http://localhost:8787", "ad slot server base URL")
	flag.StringVar(&pageCSV, "pages", "HOME,EVENTS", "comma-separated page keys")
	flag.IntVar(&totalReq, "requests", 1000, "total page views to simulate")
	flag.IntVar(&conc, "concurrency", 20, "concurrent page views")
	flag.DurationVar(&duration, "duration", 0, "how long to run traffic (0 to disable)")
	flag.Float64Var(&rate, "rate", 0, "page views per second (0 for unlimited)")
	flag.Float64Var(&clickRate, "click-rate", 0.05, "probability of a click per page view")
	flag.Float64Var(&dismissRate, "dismiss-rate", 0.8, "probability an opened overlay is dismissed")
	flag.Float64Var(&queryRate, "query-rate", 0.2, "probability the viewer location is sent as query parameters instead of resolved from IP")
	flag.BoolVar(&stats, "stats", false, "print aggregated stats periodically")
	flag.BoolVar(&debug, "debug", false, "enable verbose debug logs")
	flag.StringVar(&label, "label", "", "label to identify this run")
	flag.Parse()

	level := "INFO"
	if debug {
		level = "DEBUG"
	}
	var err error
	logger, err = observability.NewLogger(observability.LogOptions{Service: "traffic-simulator", Level: level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	httpClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			MaxConnsPerHost:       50,
			IdleConnTimeout:       90 * time.Second,
		},
	}

	if label == "" {
		label = time.Now().Format(time.RFC3339)
	}

	var pages []string
	for _, p := range strings.Split(pageCSV, ",") {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		logger.Fatal("no pages configured")
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, conc)
	done := make(chan struct{})

	var interval time.Duration
	if rate > 0 {
		interval = time.Duration(float64(time.Second) / rate)
	} else if duration > 0 && totalReq > 0 {
		interval = duration / time.Duration(totalReq)
	}

	start := time.Now()
	next := start

	if stats {
		go func() {
			ticker := time.NewTicker(statsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					printStats()
				case <-done:
					printStats()
					return
				}
			}
		}()
	}

	seed := time.Now().UnixNano()
	for i := 0; ; i++ {
		if totalReq > 0 && i >= totalReq {
			break
		}
		if duration > 0 && time.Since(start) >= duration {
			break
		}
		if interval > 0 {
			if now := time.Now(); now.Before(next) {
				time.Sleep(next.Sub(now))
			}
			next = next.Add(interval)
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			r := rand.New(rand.NewSource(seed + int64(i)))
			simulatePageView(r, pages[r.Intn(len(pages))], userIPs[r.Intn(len(userIPs))])
		}(i)
	}
	wg.Wait()
	close(done)
	if !stats {
		printStats()
	}
}

// simulatePageView loads a page's ads, maybe clicks one, and maybe dismisses
// the overlay that click opened.
func simulatePageView(r *rand.Rand, pageKey, ip string) {
	atomic.AddUint64(&countSent, 1)
	session := uuid.NewString()

	q := url.Values{}
	if r.Float64() < queryRate {
		q.Set("state", "TX")
		q.Set("city", "Austin")
	}
	pageURL := fmt.Sprintf("%s/pages/%s/ads", strings.TrimRight(server, "/"), url.PathEscape(pageKey))
	if len(q) > 0 {
		pageURL += "?" + q.Encode()
	}

	var page pageResult
	if err := call(http.MethodGet, pageURL, ip, session, &page); err != nil {
		atomic.AddUint64(&countErrors, 1)
		logger.Error("page request error", zap.Error(err), zap.String("page_key", pageKey))
		return
	}

	var shown []string
	for _, p := range models.Placements {
		for _, ad := range page.Zones[string(p)] {
			shown = append(shown, ad.ID)
		}
	}
	atomic.AddUint64(&countSuccess, 1)
	if len(shown) == 0 {
		atomic.AddUint64(&countEmpty, 1)
		logger.Debug("empty page", zap.String("page_key", pageKey), zap.String("ip", ip))
		return
	}
	if r.Float64() >= clickRate {
		return
	}

	adID := shown[r.Intn(len(shown))]
	clickURL := fmt.Sprintf("%s/pages/%s/ads/%s/click", strings.TrimRight(server, "/"), url.PathEscape(pageKey), url.PathEscape(adID))
	if len(q) > 0 {
		clickURL += "?" + q.Encode()
	}
	var res clickResult
	if err := call(http.MethodPost, clickURL, ip, session, &res); err != nil {
		atomic.AddUint64(&countErrors, 1)
		logger.Error("click error", zap.Error(err), zap.String("ad_id", adID))
		return
	}

	switch res.Kind {
	case dispatch.KindNavigate:
		atomic.AddUint64(&countNavigate, 1)
	case dispatch.KindOverlay:
		atomic.AddUint64(&countOverlay, 1)
		if r.Float64() < dismissRate {
			dismissURL := fmt.Sprintf("%s/pages/%s/overlay/dismiss", strings.TrimRight(server, "/"), url.PathEscape(pageKey))
			if err := call(http.MethodPost, dismissURL, ip, session, nil); err != nil {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("dismiss error", zap.Error(err))
				return
			}
			atomic.AddUint64(&countDismissed, 1)
		}
	default:
		atomic.AddUint64(&countNone, 1)
	}
	logger.Debug("click", zap.String("page_key", pageKey), zap.String("ad_id", adID), zap.String("kind", string(res.Kind)))
}

func call(method, target, ip, session string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Forwarded-For", ip)
	req.Header.Set(middleware.PageSessionHeader, session)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func printStats() {
	succ := atomic.LoadUint64(&countSuccess)
	nav := atomic.LoadUint64(&countNavigate)
	ov := atomic.LoadUint64(&countOverlay)
	none := atomic.LoadUint64(&countNone)
	var ctr float64
	if succ > 0 {
		ctr = float64(nav+ov+none) / float64(succ)
	}
	logger.Info("stats",
		zap.String("run", label),
		zap.Uint64("sent", atomic.LoadUint64(&countSent)),
		zap.Uint64("success", succ),
		zap.Uint64("empty_pages", atomic.LoadUint64(&countEmpty)),
		zap.Uint64("errors", atomic.LoadUint64(&countErrors)),
		zap.Uint64("navigate", nav),
		zap.Uint64("overlay", ov),
		zap.Uint64("none", none),
		zap.Uint64("dismissed", atomic.LoadUint64(&countDismissed)),
		zap.Float64("ctr", ctr))
}

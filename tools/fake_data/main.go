package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickwarner/adslots/internal/config"
	"github.com/patrickwarner/adslots/internal/db"
	"github.com/patrickwarner/adslots/internal/models"
	"github.com/patrickwarner/adslots/internal/observability"
)

var (
	adCount    = flag.Int("ads", 40, "number of ads to insert")
	pageCSV    = flag.String("pages", "HOME,EVENTS,NEWS,DEALS", "comma-separated page keys")
	seed       = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	skipReload = flag.Bool("skip-reload", false, "skip automatic reload after data insertion")
)

type location struct {
	state, city, pincode string
}

var locations = []location{
	{"TX", "Austin", "73301"},
	{"TX", "Dallas", "75201"},
	{"CA", "San Jose", "95112"},
	{"CA", "Los Angeles", "90001"},
	{"KA", "Bengaluru", "560001"},
	{"MH", "Mumbai", "400001"},
}

var advertisers = []struct {
	name, domain string
}{
	{"FitLife Pro", "fitlifepro.example.com"},
	{"City Eats", "cityeats.example.com"},
	{"Metro Movies", "metromovies.example.com"},
	{"Trailhead Gear", "trailhead.example.com"},
	{"Bright Bank", "brightbank.example.com"},
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger, err := observability.NewLogger(observability.LogOptions{
		Service:     "adslots-seeder",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	r := rand.New(rand.NewSource(*seed))
	pages := splitPages(*pageCSV)
	today := models.DateOf(time.Now().In(cfg.Location()))

	ctx := context.Background()
	for i := 0; i < *adCount; i++ {
		ad := randomAd(r, pages, today)
		if err := pg.InsertAd(ctx, ad); err != nil {
			logger.Fatal("insert ad", zap.Error(err), zap.String("ad_id", ad.ID))
		}
	}

	fmt.Printf("%d fake ads inserted\n", *adCount)

	if !*skipReload {
		if err := callReloadEndpoint(&cfg); err != nil {
			logger.Error("reload endpoint failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Warning: failed to reload server data: %v\n", err)
		} else {
			fmt.Println("server data reloaded")
		}
	}
}

func splitPages(csv string) []string {
	var pages []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		pages = []string{"HOME"}
	}
	return pages
}

// randomAd builds a plausible ad. Most ads are ACTIVE with a window around
// today; a few are expired, inactive or scheduled for later so resolution has
// something to reject.
func randomAd(r *rand.Rand, pages []string, today models.Date) models.AdRecord {
	adv := advertisers[r.Intn(len(advertisers))]
	loc := locations[r.Intn(len(locations))]
	id := uuid.NewString()

	ad := models.AdRecord{
		ID:          id,
		Title:       fmt.Sprintf("%s - %s", adv.name, loc.city),
		ImageURL:    fmt.Sprintf("https://cdn.%s/creatives/%s.png", adv.domain, id[:8]),
		ActionType:  models.ActionRedirect,
		RedirectURL: models.StringPtr(fmt.Sprintf("https://%s/landing?src=adslots", adv.domain)),
		Pages:       pickPages(r, pages),
		Placement:   models.Placements[r.Intn(len(models.Placements))],
		Position:    r.Intn(5),
		TargetState: models.StringPtr(loc.state),
		TargetCity:  models.StringPtr(loc.city),
		Status:      models.StatusActive,
	}
	if r.Float64() < 0.3 {
		ad.TargetPincode = models.StringPtr(loc.pincode)
	}
	if r.Float64() < 0.4 {
		ad.ActionType = models.ActionPopup
		ad.PopupImageURL = models.StringPtr(fmt.Sprintf("https://cdn.%s/creatives/%s-popup.png", adv.domain, id[:8]))
		ad.PopupDescription = models.StringPtr(fmt.Sprintf("Exclusive offer from %s for %s residents.", adv.name, loc.city))
		if r.Float64() < 0.5 {
			ad.RedirectURL = nil
		}
	}

	start := today.Time().AddDate(0, 0, -r.Intn(14))
	end := today.Time().AddDate(0, 0, r.Intn(30))
	switch x := r.Float64(); {
	case x < 0.1:
		ad.Status = models.StatusInactive
	case x < 0.2:
		ad.Status = models.StatusExpired
		end = today.Time().AddDate(0, 0, -1-r.Intn(7))
		start = end.AddDate(0, 0, -14)
	case x < 0.3:
		start = today.Time().AddDate(0, 0, 1+r.Intn(7))
		end = start.AddDate(0, 0, 14)
	}
	ad.StartDate = models.DatePtr(models.DateOf(start))
	ad.EndDate = models.DatePtr(models.DateOf(end))
	return ad
}

func pickPages(r *rand.Rand, pages []string) []string {
	n := 1 + r.Intn(len(pages))
	picked := make([]string, 0, n)
	for _, i := range r.Perm(len(pages))[:n] {
		picked = append(picked, pages[i])
	}
	return picked
}

func callReloadEndpoint(cfg *config.Config) error {
	reloadURL := fmt.Sprintf("http://localhost:%s/reload", cfg.Port)
	req, err := http.NewRequest("POST", reloadURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}

package logic

import (
	"net"
	"net/http"
	"strings"

	"github.com/patrickwarner/adslots/internal/geoip"
	"github.com/patrickwarner/adslots/internal/models"
)

// Rejection reasons reported by EligibilityReason.
const (
	ReasonDateWindow = "date_window"
	ReasonState      = "state"
	ReasonCity       = "city"
	ReasonPincode    = "pincode"
)

// MatchesDateWindow reports whether today falls inside the ad's validity
// window. A missing start date means "from today" and a missing end date
// means "through today", so an ad with neither set is valid only on the day
// it is evaluated.
func MatchesDateWindow(ad models.AdRecord, today models.Date) bool {
	start, end := today, today
	if ad.StartDate != nil {
		start = *ad.StartDate
	}
	if ad.EndDate != nil {
		end = *ad.EndDate
	}
	return !today.Before(start) && !today.After(end)
}

// MatchesLocation checks the three location dimensions independently. A
// dimension passes when the ad does not target it (nil or empty), when the
// viewer's value is unknown, or when both are equal. Unknown viewer data
// never excludes an ad.
func MatchesLocation(ad models.AdRecord, viewer models.ViewerContext) bool {
	return matchesDimension(ad.TargetState, viewer.State) &&
		matchesDimension(ad.TargetCity, viewer.City) &&
		matchesDimension(ad.TargetPincode, viewer.Pincode)
}

// matchesDimension treats a nil or empty target as untargeted.
func matchesDimension(target, viewer *string) bool {
	if target == nil || *target == "" || viewer == nil {
		return true
	}
	return *target == *viewer
}

// IsEligible combines the date window and all location predicates.
func IsEligible(ad models.AdRecord, today models.Date, viewer models.ViewerContext) bool {
	return EligibilityReason(ad, today, viewer) == ""
}

// EligibilityReason returns the first failing predicate for ad, or "" when
// the ad is eligible.
func EligibilityReason(ad models.AdRecord, today models.Date, viewer models.ViewerContext) string {
	switch {
	case !MatchesDateWindow(ad, today):
		return ReasonDateWindow
	case !matchesDimension(ad.TargetState, viewer.State):
		return ReasonState
	case !matchesDimension(ad.TargetCity, viewer.City):
		return ReasonCity
	case !matchesDimension(ad.TargetPincode, viewer.Pincode):
		return ReasonPincode
	}
	return ""
}

// ResolveViewer looks up ipString in the GeoIP database. Dimensions the
// database cannot answer stay unknown.
func ResolveViewer(g *geoip.GeoIP, ipString string) models.ViewerContext {
	ip := net.ParseIP(ipString)
	if ip == nil || g == nil {
		return models.ViewerContext{}
	}
	loc := g.Lookup(ip)
	return models.NewViewerContext(loc.State, loc.City, loc.Pincode)
}

// ResolveViewerFromRequest builds the viewer context for an HTTP request.
// Explicit state/city/pincode query parameters win; anything they leave out
// is filled from the client IP when a GeoIP database is configured.
func ResolveViewerFromRequest(r *http.Request, geoIP *geoip.GeoIP) models.ViewerContext {
	q := r.URL.Query()
	viewer := models.NewViewerContext(
		strings.TrimSpace(q.Get("state")),
		strings.TrimSpace(q.Get("city")),
		strings.TrimSpace(q.Get("pincode")),
	)
	if geoIP == nil {
		return viewer
	}
	return viewer.Merge(ResolveViewer(geoIP, ClientIP(r)))
}

// ClientIP returns the caller address, preferring the first X-Forwarded-For entry.
func ClientIP(r *http.Request) string {
	ipStr := r.Header.Get("X-Forwarded-For")
	if ipStr == "" {
		ipStr = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ipStr); err == nil {
			ipStr = host
		}
		return ipStr
	}
	// X-Forwarded-For can be comma-separated, take first IP
	if idx := strings.Index(ipStr, ","); idx != -1 {
		ipStr = ipStr[:idx]
	}
	return strings.TrimSpace(ipStr)
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adslots_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adslots_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// page resolutions performed, by page key
	ResolutionCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adslots_resolutions_total",
			Help: "Total page resolutions performed",
		},
		[]string{"page"},
	)

	// creatives placed into each zone
	AdsPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adslots_ads_placed_total",
			Help: "Total creatives placed, by zone",
		},
		[]string{"zone"},
	)

	// zones resolved with nothing to show (page renders its fallback)
	EmptyZones = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adslots_empty_zones_total",
			Help: "Total zones resolved empty",
		},
		[]string{"zone"},
	)

	// ads dropped because their placement is not a known zone
	UnknownPlacements = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adslots_unknown_placement_total",
			Help: "Total ads rejected for an unknown placement",
		},
	)

	// clicks labelled by dispatch outcome
	ClickCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adslots_clicks_total",
			Help: "Total creative clicks, by dispatch kind",
		},
		[]string{"kind"},
	)

	// store reloads labelled by outcome
	ReloadCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adslots_reloads_total",
			Help: "Total ad store reloads",
		},
		[]string{"status"},
	)

	// ad change notifications published/received
	UpdateNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adslots_update_notifications_total",
			Help: "Total ad change notifications",
		},
		[]string{"direction"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		ResolutionCount,
		AdsPlaced,
		EmptyZones,
		UnknownPlacements,
		ClickCount,
		ReloadCount,
		UpdateNotifications,
	)
}

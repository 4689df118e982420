package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics
// This replaces direct access to global Prometheus metrics with dependency injection
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Resolution metrics
	IncrementResolutions(pageKey string)
	AddAdsPlaced(zone string, n int)
	IncrementEmptyZones(zone string)
	IncrementUnknownPlacements(n int)

	// Click dispatch metrics
	IncrementClicks(kind string)

	// Data lifecycle metrics
	IncrementReloads(status string)
	IncrementUpdateNotifications(direction string)
}

// PrometheusRegistry implements MetricsRegistry using the existing global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

// HTTP Request metrics
func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// Resolution metrics
func (r *PrometheusRegistry) IncrementResolutions(pageKey string) {
	ResolutionCount.WithLabelValues(pageKey).Inc()
}

func (r *PrometheusRegistry) AddAdsPlaced(zone string, n int) {
	AdsPlaced.WithLabelValues(zone).Add(float64(n))
}

func (r *PrometheusRegistry) IncrementEmptyZones(zone string) {
	EmptyZones.WithLabelValues(zone).Inc()
}

func (r *PrometheusRegistry) IncrementUnknownPlacements(n int) {
	UnknownPlacements.Add(float64(n))
}

// Click dispatch metrics
func (r *PrometheusRegistry) IncrementClicks(kind string) {
	ClickCount.WithLabelValues(kind).Inc()
}

// Data lifecycle metrics
func (r *PrometheusRegistry) IncrementReloads(status string) {
	ReloadCount.WithLabelValues(status).Inc()
}

func (r *PrometheusRegistry) IncrementUpdateNotifications(direction string) {
	UpdateNotifications.WithLabelValues(direction).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

// HTTP Request metrics
func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

// Resolution metrics
func (r *NoOpRegistry) IncrementResolutions(pageKey string) {}
func (r *NoOpRegistry) AddAdsPlaced(zone string, n int)     {}
func (r *NoOpRegistry) IncrementEmptyZones(zone string)     {}
func (r *NoOpRegistry) IncrementUnknownPlacements(n int)    {}

// Click dispatch metrics
func (r *NoOpRegistry) IncrementClicks(kind string) {}

// Data lifecycle metrics
func (r *NoOpRegistry) IncrementReloads(status string)                {}
func (r *NoOpRegistry) IncrementUpdateNotifications(direction string) {}

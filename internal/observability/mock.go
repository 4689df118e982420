package observability

import (
	"sync"
	"time"
)

// MockMetricsRegistry records calls so tests can assert on them.
type MockMetricsRegistry struct {
	mu                sync.Mutex
	Requests          map[string]int // "endpoint method status"
	Resolutions       map[string]int
	AdsPlaced         map[string]int
	EmptyZones        map[string]int
	UnknownPlacements int
	Clicks            map[string]int
	Reloads           map[string]int
	Notifications     map[string]int
}

// NewMockMetricsRegistry returns an empty MockMetricsRegistry.
func NewMockMetricsRegistry() *MockMetricsRegistry {
	return &MockMetricsRegistry{
		Requests:      make(map[string]int),
		Resolutions:   make(map[string]int),
		AdsPlaced:     make(map[string]int),
		EmptyZones:    make(map[string]int),
		Clicks:        make(map[string]int),
		Reloads:       make(map[string]int),
		Notifications: make(map[string]int),
	}
}

// HTTP Request metrics
func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint+" "+method+" "+status]++
}

func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

// Resolution metrics
func (m *MockMetricsRegistry) IncrementResolutions(pageKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resolutions[pageKey]++
}

func (m *MockMetricsRegistry) AddAdsPlaced(zone string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AdsPlaced[zone] += n
}

func (m *MockMetricsRegistry) IncrementEmptyZones(zone string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmptyZones[zone]++
}

func (m *MockMetricsRegistry) IncrementUnknownPlacements(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnknownPlacements += n
}

// Click dispatch metrics
func (m *MockMetricsRegistry) IncrementClicks(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Clicks[kind]++
}

// Data lifecycle metrics
func (m *MockMetricsRegistry) IncrementReloads(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reloads[status]++
}

func (m *MockMetricsRegistry) IncrementUpdateNotifications(direction string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications[direction]++
}

// Package services provides technical concerns shared by the business flows, such as metrics
package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Visit outcomes recorded by MetricsService.ObserveVisit
const (
	VisitOutcomeRecorded    = "recorded"
	VisitOutcomeUnavailable = "unavailable"
	VisitOutcomeFailed      = "failed"
)

// MetricsService records visitor counter metrics
type MetricsService interface {
	ObserveVisit(outcome string)
	SetDatabaseConnected(connected bool)
}

// PrometheusMetricsService implements MetricsService on a prometheus registry
type PrometheusMetricsService struct {
	visits            *prometheus.CounterVec
	databaseConnected prometheus.Gauge
}

// NewPrometheusMetricsService registers the visitor metrics on reg
func NewPrometheusMetricsService(reg prometheus.Registerer) (MetricsService, error) {
	s := &PrometheusMetricsService{
		visits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "visits_recorded_total",
				Help: "Visits handled by the visitor counter, partitioned by outcome",
			},
			[]string{"outcome"},
		),
		databaseConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "database_connected",
				Help: "1 when the visitor counter database is connected, 0 otherwise",
			},
		),
	}

	for _, c := range []prometheus.Collector{s.visits, s.databaseConnected} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// Pre-create outcome series so dashboards see zeros instead of gaps
	for _, outcome := range []string{VisitOutcomeRecorded, VisitOutcomeUnavailable, VisitOutcomeFailed} {
		s.visits.WithLabelValues(outcome)
	}

	return s, nil
}

func (s *PrometheusMetricsService) ObserveVisit(outcome string) {
	s.visits.WithLabelValues(outcome).Inc()
}

func (s *PrometheusMetricsService) SetDatabaseConnected(connected bool) {
	if connected {
		s.databaseConnected.Set(1)
		return
	}
	s.databaseConnected.Set(0)
}

// MockMetricsService keeps observations in memory for tests
type MockMetricsService struct {
	mu        sync.Mutex
	visits    map[string]int
	connected *bool
}

func NewMockMetricsService() *MockMetricsService {
	return &MockMetricsService{visits: make(map[string]int)}
}

func (m *MockMetricsService) ObserveVisit(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits[outcome]++
}

func (m *MockMetricsService) SetDatabaseConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = &connected
}

// Visits returns how many times outcome was observed
func (m *MockMetricsService) Visits(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visits[outcome]
}

// DatabaseConnected returns the last reported connection state, nil if never set
func (m *MockMetricsService) DatabaseConnected() *bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

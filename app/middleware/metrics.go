package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics holds the request collectors registered on a single registry
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewHTTPMetrics registers the HTTP collectors on reg
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)

	return &HTTPMetrics{
		// Total HTTP requests partitioned by method, route, and status code
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		// Request duration in seconds partitioned by method, route, and status code
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_inflight_requests",
				Help: "Number of HTTP requests currently being served",
			},
		),
	}
}

// Handler returns a Fiber v3 middleware that records the request metrics.
// Unmatched paths all land on the catch-all route, so the route label stays bounded.
func (m *HTTPMetrics) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		err := c.Next()

		route := routeLabel(c)
		labels := prometheus.Labels{
			"method": methodLabel(c),
			"route":  route,
			"status": strconv.Itoa(c.Response().StatusCode()),
		}
		m.requestsTotal.With(labels).Inc()
		m.requestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

// routeLabel maps the request onto a fixed set of labels. The values are literals:
// c.Path() aliases a request buffer that fasthttp reuses.
func routeLabel(c fiber.Ctx) string {
	switch c.Path() {
	case "/health":
		return "/health"
	case "/db":
		return "/db"
	default:
		return "/*"
	}
}

var knownMethods = []string{
	fiber.MethodGet, fiber.MethodHead, fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch,
	fiber.MethodDelete, fiber.MethodConnect, fiber.MethodOptions, fiber.MethodTrace,
}

// methodLabel returns the matching method constant, or "OTHER" for extension methods
func methodLabel(c fiber.Ctx) string {
	method := c.Method()
	for _, known := range knownMethods {
		if method == known {
			return known
		}
	}
	return "OTHER"
}

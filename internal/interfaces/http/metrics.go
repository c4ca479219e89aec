package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsRegistry holds the service's Prometheus metrics. It implements the
// orchestrator's cache observer so hit ratios are visible per analytics
// domain.
type MetricsRegistry struct {
	registry *prometheus.Registry

	RequestDuration  *prometheus.HistogramVec
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	RateLimitDenials prometheus.Counter
}

// NewMetricsRegistry creates and registers the service metrics.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stakescope_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"route", "status"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stakescope_cache_hits_total",
				Help: "Cache hits per analytics domain",
			},
			[]string{"domain"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stakescope_cache_misses_total",
				Help: "Cache misses per analytics domain",
			},
			[]string{"domain"},
		),
		RateLimitDenials: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stakescope_rate_limit_denials_total",
				Help: "Requests denied by the fixed-window rate limiter",
			},
		),
	}

	m.registry.MustRegister(
		m.RequestDuration,
		m.CacheHits,
		m.CacheMisses,
		m.RateLimitDenials,
	)
	return m
}

// CacheHit implements application.Observer.
func (m *MetricsRegistry) CacheHit(domain string) {
	m.CacheHits.WithLabelValues(domain).Inc()
}

// CacheMiss implements application.Observer.
func (m *MetricsRegistry) CacheMiss(domain string) {
	m.CacheMisses.WithLabelValues(domain).Inc()
}

// ObserveRequest records one completed request.
func (m *MetricsRegistry) ObserveRequest(route string, status int, d time.Duration) {
	m.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler exposes the registry in Prometheus text format.
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

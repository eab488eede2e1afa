// Package metrics provides Prometheus metrics for the trip ranking service.
package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Upstream reisinformatie API metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	JourneyCacheLookups     *prometheus.CounterVec

	// Ranking and throttling
	ComfortScores            prometheus.Histogram
	RateLimitRejectionsTotal prometheus.Counter

	logger *slog.Logger
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripranker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripranker_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	upstreamRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripranker_upstream_requests_total",
			Help: "Requests sent to the reisinformatie API by endpoint and outcome",
		},
		[]string{"endpoint", "status"},
	)

	upstreamRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripranker_upstream_request_duration_seconds",
			Help:    "Latency of reisinformatie API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	journeyCacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripranker_journey_cache_lookups_total",
			Help: "Journey detail cache lookups by result",
		},
		[]string{"result"},
	)

	comfortScores := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tripranker_comfort_score",
		Help:    "Distribution of computed trip comfort scores",
		Buckets: prometheus.LinearBuckets(-10, 5, 16),
	})

	rateLimitRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tripranker_rate_limit_rejections_total",
		Help: "Requests rejected by the per-address request counter",
	})

	registry.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		upstreamRequestsTotal,
		upstreamRequestDuration,
		journeyCacheLookups,
		comfortScores,
		rateLimitRejections,
	)

	return &Metrics{
		Registry:                 registry,
		HTTPRequestsTotal:        httpRequestsTotal,
		HTTPRequestDuration:      httpRequestDuration,
		UpstreamRequestsTotal:    upstreamRequestsTotal,
		UpstreamRequestDuration:  upstreamRequestDuration,
		JourneyCacheLookups:      journeyCacheLookups,
		ComfortScores:            comfortScores,
		RateLimitRejectionsTotal: rateLimitRejections,
		logger:                   logger,
	}
}

// ObserveUpstream records one upstream call. Safe on a nil receiver.
func (m *Metrics) ObserveUpstream(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// ObserveCacheLookup records a journey cache hit or miss. Safe on a nil receiver.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.JourneyCacheLookups.WithLabelValues(result).Inc()
}

// ObserveComfortScore records a computed comfort score. Safe on a nil receiver.
func (m *Metrics) ObserveComfortScore(score int) {
	if m == nil {
		return
	}
	m.ComfortScores.Observe(float64(score))
}

// IncRateLimitRejections counts one rejected request. Safe on a nil receiver.
func (m *Metrics) IncRateLimitRejections() {
	if m == nil {
		return
	}
	m.RateLimitRejectionsTotal.Inc()
}

// Package metrics exposes Prometheus instrumentation for the recommender, the importer and the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomeRanked   = "ranked"
	OutcomeFallback = "fallback"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_recommendations_total",
			Help: "Recommendation selections by mode (item, general) and outcome",
		},
		[]string{"mode", "outcome"},
	)

	PoolFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_pool_fetch_duration_seconds",
			Help:    "Duration of published pool reads in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portfolio_pool_size",
			Help: "Number of published items seen by the last pool read",
		},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portfolio_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	ImportedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_import_items_total",
			Help: "Listing items processed by the importer, by result (saved, skipped)",
		},
		[]string{"result"},
	)

	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_import_runs_total",
			Help: "Importer runs by status (ok, error)",
		},
		[]string{"status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)

// RecordRecommendation counts one selection.
func RecordRecommendation(mode, outcome string) {
	RecommendationsTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordPoolFetch observes a pool read; size is ignored when the read failed.
func RecordPoolFetch(started time.Time, size int, err error) {
	PoolFetchDuration.Observe(time.Since(started).Seconds())
	if err == nil {
		PoolSize.Set(float64(size))
	}
}

// RecordAPIRequest observes one HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

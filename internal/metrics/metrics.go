// Package metrics holds the Prometheus collectors shared by the scraper and
// the HTTP host.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

var (
	// ScrapesTotal counts scrape pipeline runs by outcome.
	ScrapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_scrapes_total",
			Help: "Total number of review scrapes by outcome",
		},
		[]string{"outcome"},
	)

	// ScrapeDuration observes end to end scrape time.
	ScrapeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_scrape_duration_seconds",
			Help:    "Duration of review scrapes in seconds",
			Buckets: []float64{5, 10, 20, 30, 45, 60, 90, 120, 180, 300},
		},
	)

	// ReviewsReturned observes how many unique reviews a scrape produced.
	ReviewsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_scrape_reviews",
			Help:    "Number of unique reviews returned per scrape",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// RevealIterations observes convergence loop length by stop reason.
	RevealIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_reveal_iterations",
			Help:    "Scroll iterations performed before the review list stopped growing",
			Buckets: prometheus.LinearBuckets(0, 5, 12),
		},
		[]string{"reason"},
	)

	// ExportsTotal counts CSV exports by outcome.
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_exports_total",
			Help: "Total number of CSV exports by outcome",
		},
		[]string{"outcome"},
	)

	// CacheLookups counts review cache lookups by result.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_cache_lookups_total",
			Help: "Total number of review cache lookups",
		},
		[]string{"result"},
	)

	// RejectionsTotal counts scrapes refused before reaching a worker.
	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_scrape_rejections_total",
			Help: "Total number of scrape requests rejected by admission control",
		},
		[]string{"reason"},
	)

	// QueueDepth tracks jobs waiting for a worker.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "review_worker_queue_depth",
			Help: "Number of scrape jobs waiting for a worker",
		},
	)

	// CircuitBreakerState tracks per-domain breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "review_circuit_breaker_state",
			Help: "Current state of the per-domain circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"domain"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// BreakerStateValue maps gobreaker states to gauge values
func BreakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

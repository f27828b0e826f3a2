// Package metrics exposes Prometheus collectors for the case-search service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	portalRequestsTotal        *prometheus.CounterVec
	portalRetriesTotal         prometheus.Counter
	portalChallengesTotal      prometheus.Counter
	parserRowsSkippedTotal     prometheus.Counter
	searchesTotal              *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		portalRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casesearch_portal_requests_total",
				Help: "Total number of upstream portal requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		portalRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "casesearch_portal_retries_total",
				Help: "Total number of retried portal attempts.",
			},
		)

		portalChallengesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "casesearch_portal_challenges_total",
				Help: "Total number of anti-automation challenges detected.",
			},
		)

		parserRowsSkippedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "casesearch_parser_rows_skipped_total",
				Help: "Total number of malformed result rows skipped during parsing.",
			},
		)

		searchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casesearch_searches_total",
				Help: "Total number of case searches, labeled by outcome.",
			},
			[]string{"status"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "casesearch_http_request_duration_seconds",
				Help:    "Histogram of API request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePortalRequest counts one completed upstream request.
func ObservePortalRequest(method string, code int) {
	if portalRequestsTotal == nil {
		return
	}
	portalRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// ObserveRetry counts one retried portal attempt.
func ObserveRetry() {
	if portalRetriesTotal == nil {
		return
	}
	portalRetriesTotal.Inc()
}

// ObserveChallenge counts one detected anti-automation challenge.
func ObserveChallenge() {
	if portalChallengesTotal == nil {
		return
	}
	portalChallengesTotal.Inc()
}

// ObserveRowSkipped counts one malformed result row dropped by the parser.
func ObserveRowSkipped() {
	if parserRowsSkippedTotal == nil {
		return
	}
	parserRowsSkippedTotal.Inc()
}

// ObserveSearch counts one finished search with its terminal status.
func ObserveSearch(status string) {
	if searchesTotal == nil {
		return
	}
	searchesTotal.WithLabelValues(status).Inc()
}

// ObserveRequestDuration records one API request latency.
func ObserveRequestDuration(method, route string, d time.Duration) {
	if httpRequestDurationSeconds == nil {
		return
	}
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

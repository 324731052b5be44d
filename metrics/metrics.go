// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheets_search",
			Name:      "searches_total",
			Help:      "Total number of searches by trigger (query, people)",
		},
		[]string{"trigger"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sheets_search",
			Name:      "search_results",
			Help:      "Number of matched cells per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sheets_search",
			Name:      "fetch_duration_seconds",
			Help:      "Google Sheets range fetch duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)

	AuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheets_search",
			Name:      "auth_total",
			Help:      "Sign-in and sign-out outcomes",
		},
		[]string{"operation", "status"},
	)

	RowToggles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sheets_search",
			Name:      "row_toggles_total",
			Help:      "Total number of checkbox toggles",
		},
	)
)

func init() {
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(AuthTotal)
	prometheus.MustRegister(RowToggles)
}

// ObserveFetch records the duration of a fetch that started at 'start'.
func ObserveFetch(start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	FetchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// ObserveAuth counts a sign-in or sign-out outcome.
func ObserveAuth(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	AuthTotal.WithLabelValues(operation, status).Inc()
}

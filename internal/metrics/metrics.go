package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_searches_total",
			Help: "Total number of property searches by cache outcome",
		},
		[]string{"cache"},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "property_search_results",
			Help:    "Number of properties returned per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "property_search_duration_seconds",
			Help: "Duration of filtering and sorting in seconds",
		},
		[]string{"sort"},
	)

	ActiveFilters = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "property_search_active_filters",
			Help:    "Number of active filters per search",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		},
	)

	SavedSearches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "saved_searches",
			Help: "Number of saved searches currently stored",
		},
	)

	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saved_search_alerts_sent_total",
			Help: "Total number of saved search alerts handed to the notifier",
		},
		[]string{"frequency"},
	)

	AlertsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saved_search_alerts_failed_total",
			Help: "Total number of saved search alerts the notifier rejected",
		},
		[]string{"frequency"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

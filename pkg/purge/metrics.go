package purge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for purge client operations.
var (
	purgesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purge_requests_total",
		Help: "Total purge requests by provider and status",
	}, []string{"provider", "status"})

	purgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "purge_request_duration_seconds",
		Help:    "Purge request duration in seconds by provider",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"provider"})

	purgeTagCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "purge_tags_per_request",
		Help:    "Number of tags per purge request",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})

	headerBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purge_header_builds_total",
		Help: "Total cache header computations by provider",
	}, []string{"provider"})
)

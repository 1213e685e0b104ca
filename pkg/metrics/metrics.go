// Package metrics provides the centralized Prometheus metrics registry for
// the purge module. The metrics themselves are defined next to the code they
// instrument (pkg/purge) to keep the packages self-contained.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the purge module.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Purge Metrics (pkg/purge):
//   - purge_requests_total{provider, status} (Counter): Purge requests by provider and outcome (ok, error)
//   - purge_request_duration_seconds{provider} (Histogram): Provider purge call duration
//   - purge_tags_per_request (Histogram): Number of tags per purge request
//
// Header Metrics (pkg/purge):
//   - purge_header_builds_total{provider} (Counter): Cache header computations
//
// Example Prometheus Queries:
//
//   # Purge Failure Rate
//   sum(rate(purge_requests_total{status="error"}[5m])) /
//   sum(rate(purge_requests_total[5m]))
//
//   # P95 Purge Latency
//   histogram_quantile(0.95, rate(purge_request_duration_seconds_bucket[5m]))
//
//   # Typical Purge Fan-out
//   histogram_quantile(0.5, rate(purge_tags_per_request_bucket[5m]))

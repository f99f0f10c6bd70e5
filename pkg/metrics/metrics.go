// Package metrics documents the Prometheus metrics exposed by the gallery
// proxy. All metrics are defined in their owning packages via promauto to
// keep the instrumentation next to the code it measures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry; every metric registers into it
// automatically via promauto.
var Registry = prometheus.DefaultRegisterer

// Metrics Reference
//
// Upstream (pkg/provider):
//   - gallery_upstream_requests_total{endpoint, status} (Counter)
//   - gallery_upstream_request_duration_seconds{endpoint} (Histogram)
//   - gallery_upstream_errors_total{status} (Counter)
//
// State store (pkg/cache):
//   - gallery_state_hits_total (Counter)
//   - gallery_state_misses_total (Counter)
//   - gallery_state_blob_bytes (Gauge)
//   - gallery_state_errors_total{operation} (Counter)
//
// Page cache (pkg/gallery):
//   - gallery_page_hits_total (Counter): derived pages served from cache
//   - gallery_pages_built_total (Counter): derived pages freshly normalized
//   - gallery_invalidations_total{cause} (Counter): cause is "changed" or "forced"
//
// Normalization (pkg/normalize):
//   - gallery_normalize_failures_total{mode} (Counter)
//
// Quota (pkg/ratelimit):
//   - gallery_quota_remaining (Gauge)
//   - gallery_quota_blocks_total (Counter)
//
// Example queries:
//
//	# Derived-page cache hit rate
//	rate(gallery_page_hits_total[5m]) /
//	(rate(gallery_page_hits_total[5m]) + rate(gallery_pages_built_total[5m]))
//
//	# Invalidation churn
//	rate(gallery_invalidations_total[1h])
//
//	# P95 upstream latency
//	histogram_quantile(0.95, rate(gallery_upstream_request_duration_seconds_bucket[5m]))

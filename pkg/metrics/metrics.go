// Package metrics documents the Prometheus metrics exposed by the image
// proxy. All metrics are defined in their respective packages (server,
// cache, ratelimit, upstream) to maintain modularity and avoid circular
// dependencies; they register themselves via promauto and are served on
// GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the service.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - image_cache_hits_total (Counter): Lookups served from cache
//   - image_cache_misses_total (Counter): Lookups that fell through to a live fetch
//   - image_cache_size_bytes (Gauge): Cumulative bytes written to the cache
//   - image_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - ratelimit_allowed_total (Counter): Requests admitted by the limiter
//   - ratelimit_blocked_total (Counter): Requests rejected with 429
//
// Upstream Metrics (pkg/upstream):
//   - upstream_requests_total{status} (Counter): Outbound fetches by HTTP status
//   - upstream_request_duration_seconds (Histogram): Outbound fetch duration
//   - upstream_errors_total{class} (Counter): Fetch errors by class
//     (timeout, upstream, network)
//
// Proxy Metrics (pkg/server):
//   - proxy_responses_total{status, source} (Counter): Responses by status
//     and source (cache, upstream, error)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(image_cache_hits_total[5m])) /
//   (sum(rate(image_cache_hits_total[5m])) + sum(rate(image_cache_misses_total[5m])))
//
//   # Rejection Rate
//   rate(ratelimit_blocked_total[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(upstream_request_duration_seconds_bucket[5m]))

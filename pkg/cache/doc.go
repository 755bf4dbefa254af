// Package cache stores fetched images in Redis under a pair of keys per
// target URL: the raw binary body and a JSON-serialized subset of the
// upstream response headers. Both keys are written together with the same
// TTL and a lookup only counts as a hit when both are present and the
// header JSON parses; anything else is reported as a miss so the caller
// falls back to a live fetch.
//
// Expiry is delegated entirely to Redis TTLs. There is no eviction policy
// and no invalidation API.
package cache

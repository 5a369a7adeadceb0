// Package cache provides the key/value cache behind the read path: TTL'd
// entries keyed by a deterministic, hierarchical key scheme, and prefix-based
// invalidation for the write path.
package cache

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Store is the cache contract consumed by the services. Implementations must
// treat single-key operations as atomic; prefix deletion may be non-atomic
// across keys (staleness after a partial failure is bounded by entry TTLs).
type Store interface {
	// Get returns the cached value for key, with found=false on a miss.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteByPrefix removes every key beginning with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// keyRoot namespaces all keys written by this application.
const keyRoot = "fintrack"

// Key builds a hierarchical cache key from path segments plus the full
// request parameter set. url.Values.Encode sorts parameter names, so two
// requests that differ only in query-string order map to the same key, and
// escaping keeps distinct parameter sets from colliding.
func Key(params url.Values, segments ...string) string {
	return Prefix(segments...) + ":" + params.Encode()
}

// Prefix builds the invalidation prefix covering every key under the given
// segments.
func Prefix(segments ...string) string {
	return keyRoot + ":" + strings.Join(segments, ":")
}

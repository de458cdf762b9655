// Package cache provides the result cache used by the pipeline runner.
//
// Results are stored as opaque byte blobs under string keys built by a
// [Keyer]. Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: caching disabled
//
// Keys hash every input that affects a result, so a change of options
// never returns a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache stores byte blobs with an optional time to live.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Default time to live per entry kind.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLPageRank = 24 * time.Hour
	TTLBFS      = 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeGraph    = "graph"
	KeyTypePageRank = "pagerank"
	KeyTypeBFS      = "bfs"
)

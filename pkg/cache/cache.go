// Package cache stores TypeDB query responses so repeated renders of the
// same read query do not hit the server.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for shared deployments of the HTTP server, and [NullCache] when caching
// is disabled. Keys come from a [Keyer] so callers never build key strings
// by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored data and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs.
const (
	// QueryTTL bounds how long a read query response is reused.
	QueryTTL = time.Hour

	// ArtifactTTL bounds how long a rendered diagram is reused. Artifacts
	// are keyed by content, so they never go stale.
	ArtifactTTL = 7 * 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// QueryKey identifies a read query against one database on one server.
	QueryKey(address, database, query string) string

	// ArtifactKey identifies a rendered artifact by the hash of its input.
	ArtifactKey(inputHash, format string) string

	// GenerationKey holds the write generation of one database. Writes
	// bump it so read entries cached before the write are no longer found.
	GenerationKey(address, database string) string
}

// DefaultKeyer hashes key components so keys have a fixed length.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// QueryKey returns "query:<sha256>" over the address, database and query.
func (DefaultKeyer) QueryKey(address, database, query string) string {
	return hashKey("query", address, database, query)
}

// ArtifactKey returns "artifact:<sha256>" over the input hash and format.
func (DefaultKeyer) ArtifactKey(inputHash, format string) string {
	return hashKey("artifact", inputHash, format)
}

// GenerationKey returns "generation:<sha256>" over the address and database.
func (DefaultKeyer) GenerationKey(address, database string) string {
	return hashKey("generation", address, database)
}

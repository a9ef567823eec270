// Package cache stores conversion results and rendered artifacts keyed by
// content hash.
//
// # Backends
//
//   - [FileCache]: one file per entry under a local directory, for CLI use
//   - [RedisCache]: shared cache for the HTTP server and multiple instances
//   - [NullCache]: never stores anything, for --no-cache and tests
//
// All backends implement [Cache]. A miss is reported as (nil, false, nil);
// errors are reserved for backend failures.
//
// # Keys
//
// Keys are built by a [Keyer] so that every backend agrees on the layout:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ConversionKey(cache.Hash(input), cache.ConversionKeyOpts{})
//
// [NewScopedKeyer] prefixes every key, which lets several deployments share
// one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	// TTLConversion keeps converted graphs. Keys include the input hash, so
	// entries never go stale; the TTL only bounds disk and memory use.
	TTLConversion = 7 * 24 * time.Hour

	// TTLArtifact keeps rendered DOT and SVG output.
	TTLArtifact = 7 * 24 * time.Hour
)

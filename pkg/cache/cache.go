// Package cache stores fetched trees and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: JSON envelopes under ~/.cache/teamtree, for the CLI
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: document cache with a TTL index, for long-lived history
//   - [NullCache]: disables caching
//
// [Open] picks a backend from a [Config].
//
// # Keys
//
// A [Keyer] derives keys for each stage: "tree:" keys from the backend,
// tree kind and member; "layout:" keys from a tree hash plus layout options;
// "artifact:" keys from a layout hash plus output format and style.
// [ScopedKeyer] prefixes every key, isolating members that share a backend.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/teamtree/pkg/observability"
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the data stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs per stage.
const (
	// TTLTree is short: the tree changes whenever a member joins.
	TTLTree = 30 * time.Second

	// TTLLayout is keyed by content hash and safe to keep.
	TTLLayout = 24 * time.Hour

	// TTLArtifact is keyed by content hash and safe to keep.
	TTLArtifact = 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeTree     = "tree"
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// GetJSON reads key and unmarshals it into v, reporting hits and misses to
// the cache hooks. Undecodable entries count as misses.
func GetJSON(ctx context.Context, c Cache, key, keyType string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key, keyType string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return SetBytes(ctx, c, key, keyType, data, ttl)
}

// GetBytes is [GetJSON] for raw artifacts.
func GetBytes(ctx context.Context, c Cache, key, keyType string) ([]byte, bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true, nil
}

// SetBytes stores data under key and reports the write.
func SetBytes(ctx context.Context, c Cache, key, keyType string, data []byte, ttl time.Duration) error {
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}

// Package cache stores pages fetched from remote row sources.
//
// Remote sources (Redis lists, Mongo collections) are read one page at a
// time. A page read for one container is usually needed again a moment
// later by its neighbours, so sources keep fetched pages in a [Cache]
// keyed by a [Keyer]. [NullCache] disables caching; [MemoryCache] keeps
// pages in process with a TTL.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the entry for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer builds cache keys for row source data.
type Keyer interface {
	// CountKey is the key of a source's top-level row count.
	CountKey(source string) string

	// PageKey is the key of the page of rows [offset, offset+limit).
	PageKey(source string, offset, limit int) string

	// ChildrenKey is the key of the children of the row with the given ID.
	ChildrenKey(source, id string) string

	// Prefix is the common prefix of every key for source, used to drop a
	// source's entries after a change notification.
	Prefix(source string) string
}

// DefaultKeyer generates keys of the form kind:source:... .
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) Prefix(source string) string { return "rows:" + source + ":" }

func (k DefaultKeyer) CountKey(source string) string { return k.Prefix(source) + "count" }

func (k DefaultKeyer) PageKey(source string, offset, limit int) string {
	return hashKey(k.Prefix(source)+"page", offset, limit)
}

func (k DefaultKeyer) ChildrenKey(source, id string) string {
	return hashKey(k.Prefix(source)+"children", id)
}

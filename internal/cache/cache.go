// Package cache provides a namespaced, read-through/write-through cache
// with per-entry TTL and transparent fallback, per spec.md §4.8. A missing
// or unreachable backend degrades silently: Get returns a miss, Set/Delete
// return false, and nothing is ever surfaced to the caller as an error
// (spec.md §7: "Cache failures are never surfaced").
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Namespace partitions cache keys by artifact kind, each with its own TTL
// per spec.md §4.8.
type Namespace string

const (
	NamespaceContract     Namespace = "contract"
	NamespaceAsset        Namespace = "asset"
	NamespaceLineage      Namespace = "lineage"
	NamespaceSchemaDiff   Namespace = "schema-diff"
	NamespaceGlobalSearch Namespace = "global-search"
)

// Backend is the minimal interface a concrete cache client implements.
// Redis is the production backend (internal/cache/redisbackend.go); tests
// may substitute an in-memory fake.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Delete(ctx context.Context, keys ...string) bool
}

// TTLs maps each namespace to its configured time-to-live.
type TTLs map[Namespace]time.Duration

// Observer records cache hit/miss outcomes for internal/metrics, kept as a
// narrow interface here (rather than importing internal/metrics directly)
// so this package stays free of the Prometheus dependency for callers that
// don't need it.
type Observer interface {
	ObserveCacheLookup(namespace string, hit bool)
}

// Cache is the namespaced façade every component (C7, C8, C9) talks to.
// A nil Backend (cache disabled, or unreachable at construction time) makes
// every operation a transparent no-op.
type Cache struct {
	backend Backend
	ttls    TTLs
	obs     Observer
}

// New builds a Cache. Passing a nil backend is valid and yields a cache
// that always misses — the "cache unreachable" degraded mode. obs may be
// nil to skip metrics recording.
func New(backend Backend, ttls TTLs, obs Observer) *Cache {
	return &Cache{backend: backend, ttls: ttls, obs: obs}
}

// Key builds the namespaced cache key for an entity id.
func Key(ns Namespace, id string) string {
	return string(ns) + ":" + id
}

// DiffKey builds the stable cache key for a diff result keyed by the pair
// of schema documents being compared, per spec.md §4.8.
func DiffKey(schemaA, schemaB []byte) string {
	h := sha256.New()
	h.Write(schemaA)
	h.Write([]byte{0})
	h.Write(schemaB)
	return string(NamespaceSchemaDiff) + ":" + hex.EncodeToString(h.Sum(nil))
}

// Get fetches and JSON-decodes a cached value into dst. It reports whether
// the value was found; any backend error or unreachable client is treated
// identically to a miss. ns records the lookup outcome against
// internal/metrics when an Observer is configured.
func (c *Cache) Get(ctx context.Context, ns Namespace, key string, dst interface{}) bool {
	if c == nil || c.backend == nil {
		c.record(ns, false)
		return false
	}
	raw, ok := c.backend.Get(ctx, key)
	if !ok {
		c.record(ns, false)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.record(ns, false)
		return false
	}
	c.record(ns, true)
	return true
}

func (c *Cache) record(ns Namespace, hit bool) {
	if c != nil && c.obs != nil {
		c.obs.ObserveCacheLookup(string(ns), hit)
	}
}

// Set JSON-encodes and stores value under key in namespace ns, using the
// namespace's configured TTL. Degrades silently on any failure.
func (c *Cache) Set(ctx context.Context, ns Namespace, key string, value interface{}) bool {
	if c == nil || c.backend == nil {
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return c.backend.Set(ctx, key, raw, c.ttls[ns])
}

// Delete invalidates one or more keys. Degrades silently on any failure.
func (c *Cache) Delete(ctx context.Context, keys ...string) bool {
	if c == nil || c.backend == nil || len(keys) == 0 {
		return false
	}
	return c.backend.Delete(ctx, keys...)
}

// InvalidateContract invalidates the cache entries touched by a contract
// publication: the contract itself, its owning asset, and the asset's
// lineage, per spec.md §4.8.
func (c *Cache) InvalidateContract(ctx context.Context, contractID, assetID string) {
	c.Delete(ctx,
		Key(NamespaceContract, contractID),
		Key(NamespaceAsset, assetID),
		Key(NamespaceLineage, assetID),
	)
}

// InvalidateLineage invalidates an asset's lineage cache entry, per
// spec.md §4.8 "on asset/dependency mutation".
func (c *Cache) InvalidateLineage(ctx context.Context, assetID string) {
	c.Delete(ctx, Key(NamespaceLineage, assetID))
}

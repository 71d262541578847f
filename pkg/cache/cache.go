package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/angelmondragon/sellerpulse-backend/pkg/logger"
	"github.com/angelmondragon/sellerpulse-backend/pkg/metrics"
)

// Cache is a two-tier TTL cache: a persistent store plus an in-memory
// mirror. The mirror is written through on every Set, so a failing
// persistent tier degrades durability across restarts but never loses data
// within a process lifetime. Concurrent writers race last-writer-wins;
// payloads are idempotent derivations of the same upstream state within a
// TTL window, so that is acceptable.
type Cache struct {
	store Store
	logg  *logger.Logger
	met   *metrics.CacheMetrics
	now   func() time.Time

	mu     sync.RWMutex
	mirror map[string]Entry
}

// Params configure the cache.
type Params struct {
	Store   Store // nil means memory-only
	Logger  *logger.Logger
	Metrics *metrics.CacheMetrics
	Now     func() time.Time
}

// New builds a cache.
func New(params Params) *Cache {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		store:  params.Store,
		logg:   params.Logger,
		met:    params.Metrics,
		now:    now,
		mirror: make(map[string]Entry),
	}
}

// GetRaw returns the payload only if a fresh entry exists. The persistent
// tier is consulted first; on a tier error or absence the mirror answers.
func (c *Cache) GetRaw(ctx context.Context, key Key) (json.RawMessage, bool) {
	name := key.String()
	now := c.now()

	if c.store != nil {
		entry, err := c.store.Read(ctx, name)
		if err == nil && entry != nil {
			if entry.FreshAt(now) {
				c.met.IncHit(key.Domain)
				return entry.Payload, true
			}
			c.met.IncMiss(key.Domain)
			return nil, false
		}
		if err != nil && c.logg != nil {
			c.logg.Warn(c.logg.WithCacheKey(ctx, name), "cache store read failed; using memory mirror")
		}
	}

	c.mu.RLock()
	entry, ok := c.mirror[name]
	c.mu.RUnlock()
	if ok && entry.FreshAt(now) {
		c.met.IncHit(key.Domain)
		return entry.Payload, true
	}
	c.met.IncMiss(key.Domain)
	return nil, false
}

// GetStaleRaw returns the payload regardless of freshness. Used only as a
// degraded-mode fallback when the upstream source fails.
func (c *Cache) GetStaleRaw(ctx context.Context, key Key) (json.RawMessage, bool) {
	name := key.String()

	if c.store != nil {
		entry, err := c.store.Read(ctx, name)
		if err == nil && entry != nil {
			c.met.IncStaleHit(key.Domain)
			return entry.Payload, true
		}
	}

	c.mu.RLock()
	entry, ok := c.mirror[name]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	c.met.IncStaleHit(key.Domain)
	return entry.Payload, true
}

// Set writes the payload to both tiers. A persistent-tier failure is logged
// and counted but never fails the caller: the mirror write already
// succeeded.
func (c *Cache) Set(ctx context.Context, key Key, payload any, ttl time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	name := key.String()
	entry := Entry{Payload: raw, WrittenAt: c.now(), TTL: ttl}

	c.mu.Lock()
	c.mirror[name] = entry
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Write(ctx, name, entry); err != nil {
			c.met.IncWriteFailure(key.Domain)
			if c.logg != nil {
				c.logg.Error(c.logg.WithCacheKey(ctx, name), "cache store write failed; entry kept in memory only", err)
			}
		}
	}
	return nil
}

// MergeRecord shallow-merges partial fields into the existing record (read
// at any staleness, or empty) and writes the result back with the given
// TTL. Enrichment succeeds per item; a batch with some failed lookups must
// not erase previously learned fields.
func (c *Cache) MergeRecord(ctx context.Context, key Key, partial map[string]json.RawMessage, ttl time.Duration) error {
	merged := make(map[string]json.RawMessage)
	if raw, ok := c.GetStaleRaw(ctx, key); ok {
		if err := json.Unmarshal(raw, &merged); err != nil {
			merged = make(map[string]json.RawMessage)
		}
	}
	for field, value := range partial {
		merged[field] = value
	}
	return c.Set(ctx, key, merged, ttl)
}

// Clear drops all entries from both tiers.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.mirror = make(map[string]Entry)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil && c.logg != nil {
			c.logg.Error(ctx, "cache store clear failed", err)
		}
	}
}

// Close flushes nothing (writes are synchronous) but releases the
// persistent tier.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Get unmarshals a fresh entry into T.
func Get[T any](ctx context.Context, c *Cache, key Key) (T, bool) {
	var value T
	raw, ok := c.GetRaw(ctx, key)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false
	}
	return value, true
}

// GetStale unmarshals an entry of any staleness into T.
func GetStale[T any](ctx context.Context, c *Cache, key Key) (T, bool) {
	var value T
	raw, ok := c.GetStaleRaw(ctx, key)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false
	}
	return value, true
}

// MergeTyped marshals each field of partial and merges it into the record.
func MergeTyped[T any](ctx context.Context, c *Cache, key Key, partial map[string]T, ttl time.Duration) error {
	raw := make(map[string]json.RawMessage, len(partial))
	for field, value := range partial {
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		raw[field] = encoded
	}
	return c.MergeRecord(ctx, key, raw, ttl)
}

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"ridehub.org/transit/internal/logging"
)

// DefaultTimeout bounds every store call made by a QueryCache.
const DefaultTimeout = 250 * time.Millisecond

// Stats is a snapshot of QueryCache counters.
type Stats struct {
	Hits          int64
	Misses        int64
	Degraded      int64
	Writes        int64
	WriteFailures int64
}

// QueryCache stores query results as JSON in a Store. It fails open: an
// unavailable or failing store behaves like a miss, and failed writes are
// logged and dropped.
type QueryCache struct {
	store   Store
	timeout time.Duration
	logger  *slog.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	degraded      atomic.Int64
	writes        atomic.Int64
	writeFailures atomic.Int64
}

// NewQueryCache wraps store. A non-positive timeout uses DefaultTimeout.
func NewQueryCache(store Store, timeout time.Duration, logger *slog.Logger) *QueryCache {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryCache{
		store:   store,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "query_cache")),
	}
}

// Lookup decodes the entry for key into dest and reports whether it did.
func (c *QueryCache) Lookup(ctx context.Context, key string, dest interface{}) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if !c.store.Ready(ctx) {
		c.degrade("cache store not ready", key, nil)
		return false
	}

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.degrade("cache read failed", key, err)
		return false
	}
	if !ok {
		c.misses.Add(1)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.degrade("cache entry undecodable", key, err)
		return false
	}

	c.hits.Add(1)
	return true
}

// Save encodes value and stores it under key for ttl.
func (c *QueryCache) Save(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.writeFailures.Add(1)
		logging.LogWarn(c.logger, "cache write skipped", err, slog.String("key", key))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.writeFailures.Add(1)
		logging.LogWarn(c.logger, "cache write failed", err, slog.String("key", key))
		return
	}
	c.writes.Add(1)
}

// Ready reports whether the underlying store is reachable.
func (c *QueryCache) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.store.Ready(ctx)
}

// Stats returns the current counters.
func (c *QueryCache) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Degraded:      c.degraded.Load(),
		Writes:        c.writes.Load(),
		WriteFailures: c.writeFailures.Load(),
	}
}

// Close closes the underlying store.
func (c *QueryCache) Close() error {
	return c.store.Close()
}

func (c *QueryCache) degrade(message, key string, err error) {
	c.degraded.Add(1)
	c.misses.Add(1)
	logging.LogWarn(c.logger, message, err, slog.String("key", key))
}

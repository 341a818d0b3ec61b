// Package cache stores computed search results in Redis keyed by the
// normalized query, with a TTL and whole-cache invalidation. Cached values
// carry a format version so stale-format entries read as misses instead of
// decode failures.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Un3xpecteed/Search-Engine/internal/searcher/scorer"
	"github.com/Un3xpecteed/Search-Engine/pkg/metrics"
	pkgredis "github.com/Un3xpecteed/Search-Engine/pkg/redis"
)

const keyPrefix = "search:"

// formatVersion tags cached envelopes; a bump discards every previously
// cached value on read.
const formatVersion = 1

// KV is the key-value surface the cache needs from Redis.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// envelope is the serialized form of a cached result list.
type envelope struct {
	Version int             `json:"version"`
	Query   string          `json:"query"`
	Results []scorer.Result `json:"results"`
}

// ResultCache caches ranked search results by normalized query.
type ResultCache struct {
	client  KV
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a ResultCache with the given TTL. m may be nil.
func New(client KV, ttl time.Duration, m *metrics.Metrics) *ResultCache {
	return &ResultCache{
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "result-cache"),
	}
}

// Get looks up the cached results for query. The second return value
// reports a hit; every failure mode (connection error, missing key, decode
// failure, version mismatch) is a miss, never an error.
func (c *ResultCache) Get(ctx context.Context, query string) ([]scorer.Result, bool) {
	key := c.buildKey(query)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		c.logger.Error("cache unmarshal failed, treating as miss", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	if env.Version != formatVersion {
		c.logger.Warn("cache entry has stale format, treating as miss",
			"key", key,
			"entry_version", env.Version,
			"expected_version", formatVersion,
		)
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	c.logger.Debug("cache hit", "query", query, "key", key)
	return env.Results, true
}

// Set stores the results for query. Writes are best-effort: failures are
// logged and do not surface to the search request that produced them.
func (c *ResultCache) Set(ctx context.Context, query string, results []scorer.Result) {
	key := c.buildKey(query)
	data, err := json.Marshal(envelope{
		Version: formatVersion,
		Query:   normalize(query),
		Results: results,
	})
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached search result. Called after each
// successful document ingest, because a new document can change IDF for
// any word.
func (c *ResultCache) InvalidateAll(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating result cache: %w", err)
	}
	c.logger.Info("result cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the process-local hit and miss counters.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResultCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *ResultCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func (c *ResultCache) buildKey(query string) string {
	hash := sha256.Sum256([]byte(normalize(query)))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

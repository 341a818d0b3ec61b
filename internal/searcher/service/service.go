// Package service coordinates search requests: cache lookup, scoring on a
// miss, and best-effort cache population. Search is fail-soft by contract;
// infrastructure failures degrade to an empty result and are logged, never
// returned to the caller.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Un3xpecteed/Search-Engine/internal/searcher/scorer"
	"github.com/Un3xpecteed/Search-Engine/pkg/logger"
	"github.com/Un3xpecteed/Search-Engine/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Scorer computes ranked results for a query against the live index.
type Scorer interface {
	Score(ctx context.Context, query string, limit int) ([]scorer.Result, error)
}

// ResultCache is the cache surface the coordinator needs.
type ResultCache interface {
	Get(ctx context.Context, query string) ([]scorer.Result, bool)
	Set(ctx context.Context, query string, results []scorer.Result)
}

// Service is the search coordinator.
type Service struct {
	scorer  Scorer
	cache   ResultCache
	limit   int
	metrics *metrics.Metrics
	group   singleflight.Group
	logger  *slog.Logger
}

// New creates a Service. cache and m may be nil; a nil cache disables
// caching entirely.
func New(sc Scorer, cache ResultCache, limit int, m *metrics.Metrics) *Service {
	return &Service{
		scorer:  sc,
		cache:   cache,
		limit:   limit,
		metrics: m,
		logger:  slog.Default().With("component", "search-service"),
	}
}

// Search returns ranked results for query and reports whether they came
// from the cache. A blank query short-circuits to an empty result before
// touching cache or store. Concurrent identical misses collapse onto a
// single scorer invocation.
func (s *Service) Search(ctx context.Context, query string) (results []scorer.Result, cacheHit bool) {
	start := time.Now()
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return []scorer.Result{}, false
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, normalized); ok {
			s.observe("hit", len(cached), time.Since(start))
			return cached, true
		}
	}

	// The hit flag rides along so a caller collapsed onto a flight whose
	// leader found the entry in the cache reports a hit, not a miss.
	type outcome struct {
		results []scorer.Result
		hit     bool
	}
	val, _, _ := s.group.Do(normalized, func() (interface{}, error) {
		if s.cache != nil {
			if cached, ok := s.cache.Get(ctx, normalized); ok {
				return outcome{results: cached, hit: true}, nil
			}
		}
		return outcome{results: s.compute(ctx, normalized)}, nil
	})
	out := val.(outcome)

	status := "miss"
	if out.hit {
		status = "hit"
	}
	s.observe(status, len(out.results), time.Since(start))
	return out.results, out.hit
}

// compute runs the scorer and populates the cache. Scorer failures degrade
// to an empty result; they are logged and counted but never propagate.
func (s *Service) compute(ctx context.Context, normalized string) []scorer.Result {
	log := logger.FromContext(ctx)
	results, err := s.scorer.Score(ctx, normalized, s.limit)
	if err != nil {
		log.Error("search degraded to empty result", "query", normalized, "error", err)
		if s.metrics != nil {
			s.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		}
		return []scorer.Result{}
	}
	// Empty result lists are not cached: they cost nothing to recompute
	// and would otherwise pin zero-hit answers for a full TTL window.
	if s.cache != nil && len(results) > 0 {
		s.cache.Set(ctx, normalized, results)
	}
	return results
}

func (s *Service) observe(cacheStatus string, resultCount int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	resultType := cacheStatus
	if resultCount == 0 {
		resultType = "zero_result"
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	s.metrics.SearchResultsCount.Observe(float64(resultCount))
}

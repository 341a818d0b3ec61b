package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Un3xpecteed/Search-Engine/internal/analytics"
	"github.com/Un3xpecteed/Search-Engine/internal/searcher/cache"
	"github.com/Un3xpecteed/Search-Engine/internal/searcher/scorer"
	"github.com/Un3xpecteed/Search-Engine/pkg/logger"
	"github.com/Un3xpecteed/Search-Engine/pkg/middleware"
)

// SearchService is the coordinator surface the handler depends on.
type SearchService interface {
	Search(ctx context.Context, query string) (results []scorer.Result, cacheHit bool)
}

// EventTracker receives analytics events; satisfied by the Kafka-backed
// collector.
type EventTracker interface {
	Track(event any)
}

// SearchResponse is the JSON body returned by the search endpoint.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []scorer.Result `json:"results"`
}

type Handler struct {
	service SearchService
	cache   *cache.ResultCache
	events  EventTracker
	logger  *slog.Logger
}

func New(svc SearchService, resultCache *cache.ResultCache, events EventTracker) *Handler {
	return &Handler{
		service: svc,
		cache:   resultCache,
		events:  events,
		logger:  slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=. Searches never fail outward: a
// well-formed request always gets a 200 with a (possibly empty) result list.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")

	results, cacheHit := h.service.Search(ctx, query)
	latencyMs := time.Since(start).Milliseconds()

	log.Info("search completed",
		"query", query,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	if h.events != nil {
		// Zero-hit answers are never cached, so the three outcome types
		// partition every search.
		eventType := analytics.EventCacheMiss
		switch {
		case len(results) == 0:
			eventType = analytics.EventZeroResult
		case cacheHit:
			eventType = analytics.EventCacheHit
		}
		h.events.Track(analytics.SearchEvent{
			Type:      eventType,
			Query:     query,
			Returned:  len(results),
			LatencyMs: latencyMs,
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, SearchResponse{Query: query, Results: results})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.InvalidateAll(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

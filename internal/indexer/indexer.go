// Package indexer turns raw document text into persisted inverted-index
// state. Indexing is synchronous: a document and its full index entry set
// commit in one transaction before the upload request returns.
package indexer

import (
	"context"
	"log/slog"
	"time"

	"github.com/Un3xpecteed/Search-Engine/internal/indexer/store"
	"github.com/Un3xpecteed/Search-Engine/internal/indexer/tokenizer"
	apperrors "github.com/Un3xpecteed/Search-Engine/pkg/errors"
	"github.com/Un3xpecteed/Search-Engine/pkg/metrics"
)

// DocumentStore persists a document together with its index entries.
type DocumentStore interface {
	CreateDocument(ctx context.Context, name, content string, wordCount int, counts map[string]int) (*store.Document, error)
}

// CacheInvalidator drops all cached search results. Any committed document
// can shift IDF for any word, so invalidation is always whole-cache.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Indexer ingests documents into the inverted index.
type Indexer struct {
	store   DocumentStore
	cache   CacheInvalidator
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates an Indexer. cache and m may be nil, in which case cache
// invalidation and metrics are skipped.
func New(docs DocumentStore, cache CacheInvalidator, m *metrics.Metrics) *Indexer {
	return &Indexer{
		store:   docs,
		cache:   cache,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
}

// AddDocument tokenizes content, computes per-word counts, and persists the
// document plus its index entries transactionally. Content that tokenizes
// to nothing is rejected with ErrEmptyDocument and no document is created.
// A successful commit invalidates the entire result cache; invalidation
// failure is logged and never fails the ingest.
func (ix *Indexer) AddDocument(ctx context.Context, name, content string) (*store.Document, error) {
	start := time.Now()

	counts, total := tokenizer.CountWords(content)
	if total == 0 {
		ix.logger.Info("document rejected, no indexable words", "name", name)
		return nil, apperrors.Newf(apperrors.ErrEmptyDocument, 422, "document %q contains no indexable words", name)
	}

	doc, err := ix.store.CreateDocument(ctx, name, content, total, counts)
	if err != nil {
		return nil, err
	}

	if ix.cache != nil {
		if err := ix.cache.InvalidateAll(ctx); err != nil {
			// Stale cache entries expire with their TTL; a failed flush
			// must not block the write path.
			ix.logger.Error("cache invalidation failed after ingest",
				"doc_id", doc.ID,
				"name", name,
				"error", err,
			)
		}
	}

	if ix.metrics != nil {
		ix.metrics.DocsIndexedTotal.Inc()
		ix.metrics.IndexLatency.Observe(time.Since(start).Seconds())
	}
	ix.logger.Info("document indexed",
		"doc_id", doc.ID,
		"name", name,
		"word_count", doc.WordCount,
		"distinct_words", len(counts),
	)
	return doc, nil
}

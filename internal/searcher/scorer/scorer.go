// Package scorer ranks documents against a query using smoothed TF-IDF.
package scorer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/Un3xpecteed/Search-Engine/internal/indexer/store"
	"github.com/Un3xpecteed/Search-Engine/internal/indexer/tokenizer"
)

// Result is a single scored document.
type Result struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// IndexReader is the read-side view of the inverted index store.
type IndexReader interface {
	DocumentCount(ctx context.Context) (int64, error)
	Postings(ctx context.Context, words []string) ([]store.Posting, error)
}

// Scorer computes TF-IDF relevance scores against the current index state.
type Scorer struct {
	index  IndexReader
	logger *slog.Logger
}

// New creates a Scorer over the given index.
func New(index IndexReader) *Scorer {
	return &Scorer{
		index:  index,
		logger: slog.Default().With("component", "scorer"),
	}
}

// Score ranks documents for the query and returns at most limit results,
// best first.
//
// Per query word w with document frequency df out of N documents the word
// weight is idf = ln((N+1)/(df+1)), which stays non-negative for df <= N
// and is total (no division by zero when a word is absent or universal).
// Each matching (word, document) pair contributes
// tf*idf with tf = count / max(word_count, 1), and a document's score is
// the sum over the query words it contains. Any document sharing at least
// one query word is included, even at score zero (a universal word has
// idf = 0 but still matches). Ties and equal scores order by ascending
// document id so results are deterministic.
//
// An empty query or an empty index yields an empty result, not an error.
func (s *Scorer) Score(ctx context.Context, query string, limit int) ([]Result, error) {
	words := tokenizer.Unique(query)
	if len(words) == 0 {
		return []Result{}, nil
	}

	total, err := s.index.DocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if total == 0 {
		return []Result{}, nil
	}

	postings, err := s.index.Postings(ctx, words)
	if err != nil {
		return nil, fmt.Errorf("fetching postings: %w", err)
	}

	// Each posting row is one distinct (word, document) pair, so document
	// frequency is a straight count of rows per word.
	df := make(map[string]int, len(words))
	for _, p := range postings {
		df[p.Word]++
	}

	type docScore struct {
		id    int64
		name  string
		score float64
	}
	scores := make(map[int64]*docScore)
	for _, p := range postings {
		idf := math.Log((float64(total) + 1) / (float64(df[p.Word]) + 1))
		tf := float64(p.Count) / math.Max(float64(p.DocWordCount), 1)
		ds, ok := scores[p.DocID]
		if !ok {
			ds = &docScore{id: p.DocID, name: p.DocName}
			scores[p.DocID] = ds
		}
		ds.score += tf * idf
	}

	ranked := make([]docScore, 0, len(scores))
	for _, ds := range scores {
		ranked = append(ranked, *ds)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	results := make([]Result, 0, len(ranked))
	for _, ds := range ranked {
		results = append(results, Result{Name: ds.name, Score: ds.score})
	}
	s.logger.Debug("query scored",
		"words", words,
		"total_docs", total,
		"postings", len(postings),
		"results", len(results),
	)
	return results, nil
}

package scorer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/Un3xpecteed/Search-Engine/internal/indexer/store"
)

type fakeIndex struct {
	docs         int64
	postings     []store.Posting
	countErr     error
	postingsErr  error
	postingCalls int
}

func (f *fakeIndex) DocumentCount(ctx context.Context) (int64, error) {
	return f.docs, f.countErr
}

func (f *fakeIndex) Postings(ctx context.Context, words []string) ([]store.Posting, error) {
	f.postingCalls++
	if f.postingsErr != nil {
		return nil, f.postingsErr
	}
	byWord := make(map[string]struct{}, len(words))
	for _, w := range words {
		byWord[w] = struct{}{}
	}
	var out []store.Posting
	for _, p := range f.postings {
		if _, ok := byWord[p.Word]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// catMatIndex holds "a": "the cat sat on the mat" and
// "b": "the dog sat on the log", both six words long.
func catMatIndex() *fakeIndex {
	postings := []store.Posting{
		{Word: "the", DocID: 1, DocName: "a", Count: 2, DocWordCount: 6},
		{Word: "cat", DocID: 1, DocName: "a", Count: 1, DocWordCount: 6},
		{Word: "sat", DocID: 1, DocName: "a", Count: 1, DocWordCount: 6},
		{Word: "on", DocID: 1, DocName: "a", Count: 1, DocWordCount: 6},
		{Word: "mat", DocID: 1, DocName: "a", Count: 1, DocWordCount: 6},
		{Word: "the", DocID: 2, DocName: "b", Count: 2, DocWordCount: 6},
		{Word: "dog", DocID: 2, DocName: "b", Count: 1, DocWordCount: 6},
		{Word: "sat", DocID: 2, DocName: "b", Count: 1, DocWordCount: 6},
		{Word: "on", DocID: 2, DocName: "b", Count: 1, DocWordCount: 6},
		{Word: "log", DocID: 2, DocName: "b", Count: 1, DocWordCount: 6},
	}
	return &fakeIndex{docs: 2, postings: postings}
}

func TestScoreEmptyQuery(t *testing.T) {
	index := catMatIndex()
	s := New(index)

	for _, query := range []string{"", "   ", "?!"} {
		results, err := s.Score(context.Background(), query, 10)
		if err != nil {
			t.Fatalf("query %q: %v", query, err)
		}
		if len(results) != 0 {
			t.Errorf("query %q: results = %v, want empty", query, results)
		}
	}
	if index.postingCalls != 0 {
		t.Errorf("postings queried %d times for empty queries, want 0", index.postingCalls)
	}
}

func TestScoreEmptyIndex(t *testing.T) {
	index := &fakeIndex{docs: 0}
	s := New(index)

	results, err := s.Score(context.Background(), "cat", 10)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
	if index.postingCalls != 0 {
		t.Error("postings queried against an empty index")
	}
}

func TestScoreSingleMatch(t *testing.T) {
	s := New(catMatIndex())

	results, err := s.Score(context.Background(), "cat", 10)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %v, want exactly one", results)
	}
	if results[0].Name != "a" {
		t.Errorf("name = %q, want a", results[0].Name)
	}
	// N=2, df=1: score = (1/6) * ln(3/2).
	want := (1.0 / 6.0) * math.Log(1.5)
	if math.Abs(results[0].Score-want) > 1e-12 {
		t.Errorf("score = %v, want %v", results[0].Score, want)
	}
}

// A word present in every document has idf = ln((N+1)/(N+1)) = 0. Matching
// documents are still included, at score zero, ordered by document id.
func TestScoreUniversalWordIncludedAtZero(t *testing.T) {
	s := New(catMatIndex())

	results, err := s.Score(context.Background(), "sat", 10)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %v, want both documents", results)
	}
	if results[0].Name != "a" || results[1].Name != "b" {
		t.Errorf("order = [%s %s], want [a b]", results[0].Name, results[1].Name)
	}
	for _, r := range results {
		if r.Score != 0 {
			t.Errorf("%s score = %v, want 0", r.Name, r.Score)
		}
	}
}

func TestScoreAbsentWordContributesNothing(t *testing.T) {
	s := New(catMatIndex())

	withAbsent, err := s.Score(context.Background(), "cat zebra", 10)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	without, err := s.Score(context.Background(), "cat", 10)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !reflect.DeepEqual(withAbsent, without) {
		t.Errorf("absent word changed results: %v vs %v", withAbsent, without)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := New(catMatIndex())

	first, err := s.Score(context.Background(), "the cat dog", 10)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	second, err := s.Score(context.Background(), "the cat dog", 10)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same store state scored differently: %v vs %v", first, second)
	}
}

func TestScoreTruncatesToLimit(t *testing.T) {
	index := &fakeIndex{docs: 15}
	for i := 1; i <= 15; i++ {
		index.postings = append(index.postings, store.Posting{
			Word:         "common",
			DocID:        int64(i),
			DocName:      fmt.Sprintf("doc%d", i),
			Count:        i, // higher id, higher tf
			DocWordCount: 100,
		})
	}
	s := New(index)

	results, err := s.Score(context.Background(), "common", 10)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(results) != 10 {
		t.Fatalf("len = %d, want 10", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not in descending score order at %d: %v", i, results)
		}
	}
	if results[0].Name != "doc15" {
		t.Errorf("top result = %s, want doc15", results[0].Name)
	}
}

func TestScoreStoreFailure(t *testing.T) {
	index := &fakeIndex{docs: 2, postingsErr: errors.New("connection reset")}
	s := New(index)

	if _, err := s.Score(context.Background(), "cat", 10); err == nil {
		t.Fatal("expected error from failing store")
	}

	index = &fakeIndex{countErr: errors.New("connection reset")}
	s = New(index)
	if _, err := s.Score(context.Background(), "cat", 10); err == nil {
		t.Fatal("expected error from failing count")
	}
}

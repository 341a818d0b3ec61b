package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Un3xpecteed/Search-Engine/internal/searcher/scorer"
)

type fakeScorer struct {
	results []scorer.Result
	err     error
	calls   int
}

func (f *fakeScorer) Score(ctx context.Context, query string, limit int) ([]scorer.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeCache struct {
	data     map[string][]scorer.Result
	getCalls int
	setCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]scorer.Result)}
}

func (f *fakeCache) Get(ctx context.Context, query string) ([]scorer.Result, bool) {
	f.getCalls++
	r, ok := f.data[query]
	return r, ok
}

func (f *fakeCache) Set(ctx context.Context, query string, results []scorer.Result) {
	f.setCalls++
	f.data[query] = results
}

func TestSearchBlankQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n"} {
		sc := &fakeScorer{}
		cache := newFakeCache()
		svc := New(sc, cache, 10, nil)

		results, hit := svc.Search(context.Background(), query)
		if len(results) != 0 || results == nil {
			t.Errorf("query %q: want empty non-nil results, got %v", query, results)
		}
		if hit {
			t.Errorf("query %q: blank query reported as cache hit", query)
		}
		if sc.calls != 0 || cache.getCalls != 0 {
			t.Errorf("query %q: blank query touched scorer or cache", query)
		}
	}
}

func TestSearchCacheHitSkipsScorer(t *testing.T) {
	want := []scorer.Result{{Name: "a", Score: 0.5}}
	sc := &fakeScorer{}
	cache := newFakeCache()
	cache.data["cat"] = want
	svc := New(sc, cache, 10, nil)

	got, hit := svc.Search(context.Background(), "  CAT ")
	if !hit {
		t.Fatal("expected cache hit")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if sc.calls != 0 {
		t.Errorf("scorer called %d times on cache hit", sc.calls)
	}
}

func TestSearchMissComputesAndCaches(t *testing.T) {
	want := []scorer.Result{{Name: "a", Score: 0.5}, {Name: "b", Score: 0.1}}
	sc := &fakeScorer{results: want}
	cache := newFakeCache()
	svc := New(sc, cache, 10, nil)

	got, hit := svc.Search(context.Background(), "cat")
	if hit {
		t.Error("miss reported as hit")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if sc.calls != 1 {
		t.Errorf("scorer calls = %d, want 1", sc.calls)
	}
	if !reflect.DeepEqual(cache.data["cat"], want) {
		t.Error("results not written to cache after miss")
	}
}

func TestSearchEmptyResultsNotCached(t *testing.T) {
	sc := &fakeScorer{results: []scorer.Result{}}
	cache := newFakeCache()
	svc := New(sc, cache, 10, nil)

	got, _ := svc.Search(context.Background(), "unheard")
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
	if cache.setCalls != 0 {
		t.Error("empty result list was cached")
	}
}

func TestSearchScorerFailureDegradesToEmpty(t *testing.T) {
	sc := &fakeScorer{err: errors.New("postgres down")}
	cache := newFakeCache()
	svc := New(sc, cache, 10, nil)

	got, hit := svc.Search(context.Background(), "cat")
	if got == nil || len(got) != 0 {
		t.Errorf("want empty non-nil results on scorer failure, got %v", got)
	}
	if hit {
		t.Error("degraded search reported as hit")
	}
	if cache.setCalls != 0 {
		t.Error("degraded empty result was cached")
	}
}

// missFirstCache misses on the first Get and hits afterwards, modelling a
// concurrent search populating the cache between the outer lookup and the
// in-flight recheck.
type missFirstCache struct {
	fakeCache
	results []scorer.Result
}

func (f *missFirstCache) Get(ctx context.Context, query string) ([]scorer.Result, bool) {
	f.getCalls++
	if f.getCalls == 1 {
		return nil, false
	}
	return f.results, true
}

func TestSearchInFlightRecheckReportsHit(t *testing.T) {
	want := []scorer.Result{{Name: "a", Score: 0.5}}
	sc := &fakeScorer{}
	cache := &missFirstCache{results: want}
	svc := New(sc, cache, 10, nil)

	got, hit := svc.Search(context.Background(), "cat")
	if !hit {
		t.Error("result found by the in-flight recheck reported as miss")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if sc.calls != 0 {
		t.Errorf("scorer called %d times despite cached result", sc.calls)
	}
}

func TestSearchNilCache(t *testing.T) {
	want := []scorer.Result{{Name: "a", Score: 0.5}}
	sc := &fakeScorer{results: want}
	svc := New(sc, nil, 10, nil)

	got, hit := svc.Search(context.Background(), "cat")
	if hit {
		t.Error("hit reported with caching disabled")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

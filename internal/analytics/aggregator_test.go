package analytics

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func track(t *testing.T, agg *Aggregator, event any) {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	if err := HandleEvent(agg)(context.Background(), []byte("analytics"), value); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func TestHandleEventDispatch(t *testing.T) {
	agg := NewAggregator()

	track(t, agg, SearchEvent{Type: EventCacheMiss, Query: "cat", Returned: 2, LatencyMs: 10, Timestamp: time.Now().UTC()})
	track(t, agg, SearchEvent{Type: EventCacheHit, Query: "cat", Returned: 2, LatencyMs: 1, CacheHit: true, Timestamp: time.Now().UTC()})
	track(t, agg, SearchEvent{Type: EventZeroResult, Query: "ghost", Returned: 0, LatencyMs: 5, Timestamp: time.Now().UTC()})
	track(t, agg, IndexEvent{Type: EventIndexDoc, DocumentID: 1, Name: "doc1", WordCount: 6, Timestamp: time.Now().UTC()})

	stats := agg.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("total searches = %d, want 3", stats.TotalSearches)
	}
	if stats.TotalDocsIndexed != 1 {
		t.Errorf("docs indexed = %d, want 1", stats.TotalDocsIndexed)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("zero results = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "ghost" {
		t.Errorf("zero-result queries = %v", stats.ZeroResultQueries)
	}
}

func TestHandleEventMalformedPayloadIsDropped(t *testing.T) {
	agg := NewAggregator()
	if err := HandleEvent(agg)(context.Background(), nil, []byte("{not json")); err != nil {
		t.Fatalf("malformed payload must not error (no redelivery), got %v", err)
	}
	if stats := agg.Stats(); stats.TotalSearches != 0 {
		t.Errorf("malformed payload counted: %+v", stats)
	}
}

// Equal counts must produce the same ranking on every call.
func TestTopQueriesStableOnTies(t *testing.T) {
	agg := NewAggregator()
	for _, q := range []string{"mat", "cat", "bat"} {
		track(t, agg, SearchEvent{Type: EventCacheMiss, Query: q, Returned: 1, Timestamp: time.Now().UTC()})
	}

	first := agg.Stats().TopQueries
	want := []QueryCount{{Query: "bat", Count: 1}, {Query: "cat", Count: 1}, {Query: "mat", Count: 1}}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("top queries = %v, want %v", first, want)
	}
	for i := 0; i < 10; i++ {
		if got := agg.Stats().TopQueries; !reflect.DeepEqual(got, first) {
			t.Fatalf("ranking changed between calls: %v vs %v", got, first)
		}
	}
}

func TestTopQueriesOrdersByCount(t *testing.T) {
	agg := NewAggregator()
	for i := 0; i < 3; i++ {
		track(t, agg, SearchEvent{Type: EventCacheMiss, Query: "cat", Returned: 1, Timestamp: time.Now().UTC()})
	}
	track(t, agg, SearchEvent{Type: EventCacheMiss, Query: "dog", Returned: 1, Timestamp: time.Now().UTC()})

	top := agg.Stats().TopQueries
	if len(top) != 2 || top[0].Query != "cat" || top[0].Count != 3 || top[1].Query != "dog" {
		t.Errorf("top queries = %v", top)
	}
}

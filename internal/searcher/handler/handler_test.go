package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/Un3xpecteed/Search-Engine/internal/analytics"
	"github.com/Un3xpecteed/Search-Engine/internal/searcher/scorer"
)

type fakeService struct {
	results  []scorer.Result
	cacheHit bool
	gotQuery string
}

func (f *fakeService) Search(ctx context.Context, query string) ([]scorer.Result, bool) {
	f.gotQuery = query
	return f.results, f.cacheHit
}

func doSearch(t *testing.T, svc SearchService, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := New(svc, nil, nil)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func TestSearchReturnsResults(t *testing.T) {
	want := []scorer.Result{
		{Name: "a", Score: 0.0676},
		{Name: "b", Score: 0.0123},
	}
	svc := &fakeService{results: want}

	rec := doSearch(t, svc, "/api/v1/search?q=cat")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.gotQuery != "cat" {
		t.Errorf("service received query %q", svc.gotQuery)
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Query != "cat" {
		t.Errorf("query = %q, want cat", resp.Query)
	}
	if !reflect.DeepEqual(resp.Results, want) {
		t.Errorf("results = %v, want %v", resp.Results, want)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := &fakeService{results: []scorer.Result{}}

	rec := doSearch(t, svc, "/api/v1/search")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	// Empty result list serializes as [], never null.
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("results = %v, want []", resp.Results)
	}
}

type fakeTracker struct {
	events []any
}

func (f *fakeTracker) Track(event any) {
	f.events = append(f.events, event)
}

func TestSearchEventTypes(t *testing.T) {
	tests := []struct {
		name     string
		results  []scorer.Result
		cacheHit bool
		want     analytics.EventType
	}{
		{"miss with results", []scorer.Result{{Name: "a", Score: 0.5}}, false, analytics.EventCacheMiss},
		{"cache hit", []scorer.Result{{Name: "a", Score: 0.5}}, true, analytics.EventCacheHit},
		{"no results", []scorer.Result{}, false, analytics.EventZeroResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &fakeTracker{}
			h := New(&fakeService{results: tt.results, cacheHit: tt.cacheHit}, nil, tracker)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=cat", nil)
			rec := httptest.NewRecorder()

			h.Search(rec, req)
			if len(tracker.events) != 1 {
				t.Fatalf("tracked %d events, want 1", len(tracker.events))
			}
			event, ok := tracker.events[0].(analytics.SearchEvent)
			if !ok {
				t.Fatalf("tracked %T, want SearchEvent", tracker.events[0])
			}
			if event.Type != tt.want {
				t.Errorf("event type = %q, want %q", event.Type, tt.want)
			}
			if event.Query != "cat" || event.Returned != len(tt.results) || event.CacheHit != tt.cacheHit {
				t.Errorf("event = %+v", event)
			}
		})
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	h := New(&fakeService{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
	rec := httptest.NewRecorder()

	h.CacheStats(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "disabled" {
		t.Errorf("status = %q, want disabled", resp["status"])
	}
}

func TestCacheInvalidateDisabled(t *testing.T) {
	h := New(&fakeService{}, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil)
	rec := httptest.NewRecorder()

	h.CacheInvalidate(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

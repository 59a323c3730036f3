package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hiddenday/planner/pkg/domain"
)

func TestPriceBand(t *testing.T) {
	tests := []struct {
		budget string
		want   string
	}{
		{"10", "1"},
		{"24", "1"},
		{"25", "1,2"},
		{"59", "1,2"},
		{"60", "2,3"},
		{"119", "2,3"},
		{"120", "3,4"},
		{"500", "3,4"},
		{"lots", "1,2,3"},
		{"", "1,2,3"},
	}

	for _, tt := range tests {
		if got := priceBand(tt.budget); got != tt.want {
			t.Errorf("priceBand(%q) = %q, want %q", tt.budget, got, tt.want)
		}
	}
}

func TestYelpSource(t *testing.T) {
	center := domain.Coordinate{Lat: 30.3322, Lon: -81.6557}

	t.Run("requires an API key", func(t *testing.T) {
		if _, err := NewYelpSource(YelpConfig{}); err == nil {
			t.Error("expected error for missing API key")
		}
	})

	t.Run("maps businesses and drops missing coordinates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-key" {
				t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`{"businesses": [
				{"name": "Bold Bean", "url": "https://yelp.test/bold-bean",
				 "coordinates": {"latitude": 30.31, "longitude": -81.66},
				 "location": {"display_address": ["869 Stockton St", "Jacksonville, FL"]}},
				{"name": "Mystery Venue", "coordinates": {}},
				{"name": "Null Island Cafe", "coordinates": {"latitude": null, "longitude": -81.0}}
			]}`))
		}))
		defer server.Close()

		source, err := NewYelpSource(YelpConfig{APIKey: "test-key", BaseURL: server.URL})
		if err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		items, err := source.FetchItems(context.Background(), center, domain.ItemQuery{
			Interests: "coffee, brunch",
			Budget:    "40",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}

		item := items[0]
		if item.Title != "Bold Bean" || item.Source != domain.SourceYelp {
			t.Errorf("unexpected item: %+v", item)
		}
		if item.Lat != 30.31 || item.Lon != -81.66 {
			t.Errorf("unexpected coordinates: %+v", item)
		}
		if item.Address != "869 Stockton St, Jacksonville, FL" {
			t.Errorf("unexpected address: %q", item.Address)
		}
	})

	t.Run("open-now pass relaxes when empty", func(t *testing.T) {
		var requests []map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			requests = append(requests, map[string]string{
				"open_now": q.Get("open_now"),
				"radius":   q.Get("radius"),
				"price":    q.Get("price"),
				"term":     q.Get("term"),
			})
			if q.Get("open_now") == "true" {
				w.Write([]byte(`{"businesses": []}`))
				return
			}
			w.Write([]byte(`{"businesses": [
				{"name": "Late Spot", "coordinates": {"latitude": 30.3, "longitude": -81.6}}
			]}`))
		}))
		defer server.Close()

		source, _ := NewYelpSource(YelpConfig{APIKey: "k", BaseURL: server.URL})
		items, err := source.FetchItems(context.Background(), center, domain.ItemQuery{
			Interests:  "coffee",
			Budget:     "40",
			UseOpenNow: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 1 || items[0].Title != "Late Spot" {
			t.Fatalf("expected the relaxed pass result, got %v", items)
		}

		if len(requests) != 2 {
			t.Fatalf("expected 2 passes, got %d", len(requests))
		}
		strict, relaxed := requests[0], requests[1]
		if strict["open_now"] != "true" || strict["radius"] != "8000" || strict["price"] != "1,2" {
			t.Errorf("unexpected strict pass params: %v", strict)
		}
		if relaxed["open_now"] != "" || relaxed["radius"] != "12000" || relaxed["price"] != "1,2,3,4" {
			t.Errorf("unexpected relaxed pass params: %v", relaxed)
		}
		if strict["term"] != "coffee" {
			t.Errorf("expected first interest as term, got %q", strict["term"])
		}
	})

	t.Run("single pass when open-now not requested", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(`{"businesses": []}`))
		}))
		defer server.Close()

		source, _ := NewYelpSource(YelpConfig{APIKey: "k", BaseURL: server.URL})
		if _, err := source.FetchItems(context.Background(), center, domain.ItemQuery{Budget: "40"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("blank interests use the generic term", func(t *testing.T) {
		var gotTerm string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotTerm = r.URL.Query().Get("term")
			w.Write([]byte(`{"businesses": []}`))
		}))
		defer server.Close()

		source, _ := NewYelpSource(YelpConfig{APIKey: "k", BaseURL: server.URL})
		source.FetchItems(context.Background(), center, domain.ItemQuery{})
		if gotTerm != "things to do" {
			t.Errorf("expected generic term, got %q", gotTerm)
		}
	})

	t.Run("upstream failure surfaces as error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		source, _ := NewYelpSource(YelpConfig{APIKey: "k", BaseURL: server.URL})
		if _, err := source.FetchItems(context.Background(), center, domain.ItemQuery{}); err == nil {
			t.Error("expected error for upstream failure")
		}
	})

	t.Run("caps results at twelve", func(t *testing.T) {
		body := `{"businesses": [`
		for i := 0; i < 15; i++ {
			if i > 0 {
				body += ","
			}
			body += `{"name": "b", "coordinates": {"latitude": 30.3, "longitude": -81.6}}`
		}
		body += `]}`

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		defer server.Close()

		source, _ := NewYelpSource(YelpConfig{APIKey: "k", BaseURL: server.URL})
		items, err := source.FetchItems(context.Background(), center, domain.ItemQuery{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 12 {
			t.Errorf("expected 12 items, got %d", len(items))
		}
	})

	t.Run("context cancellation propagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"businesses": []}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		source, _ := NewYelpSource(YelpConfig{APIKey: "k", BaseURL: server.URL})
		if _, err := source.FetchItems(ctx, center, domain.ItemQuery{}); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

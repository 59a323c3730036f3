package events

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hiddenday/planner/pkg/domain"
)

// TicketmasterSource searches the Discovery API for events in a time window
// around the center. 429 responses are retried a couple of times with a
// gentle backoff (the API's burst limit is roughly 1 rps), and results are
// held in a short micro-cache to absorb double submits.
type TicketmasterSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration

	cacheMu sync.Mutex
	cache   map[tmCacheKey]tmCacheEntry
}

type TicketmasterConfig struct {
	APIKey  string
	BaseURL string // optional, for tests
}

const tmMicroCacheTTL = 30 * time.Second

func NewTicketmasterSource(config TicketmasterConfig) (*TicketmasterSource, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ticketmaster API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://app.ticketmaster.com/discovery/v2"
	}

	return &TicketmasterSource{
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		backoff:    1200 * time.Millisecond,
		cache:      make(map[tmCacheKey]tmCacheEntry),
	}, nil
}

func (s *TicketmasterSource) Name() string {
	return domain.SourceEvent
}

type tmCacheKey struct {
	lat, lon   float64
	start, end string
	keyword    string
}

type tmCacheEntry struct {
	fetchedAt time.Time
	items     []domain.PlanItem
}

type tmEventsResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

type tmEvent struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			DateTime  string `json:"dateTime"`
			LocalDate string `json:"localDate"`
		} `json:"start"`
	} `json:"dates"`
	Embedded struct {
		Venues []tmVenue `json:"venues"`
	} `json:"_embedded"`
}

type tmVenue struct {
	Name     string `json:"name"`
	Location struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"location"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	State struct {
		Name      string `json:"name"`
		StateCode string `json:"stateCode"`
	} `json:"state"`
	Address struct {
		Line1 string `json:"line1"`
	} `json:"address"`
}

func (s *TicketmasterSource) FetchItems(ctx context.Context, center domain.Coordinate, q domain.ItemQuery) ([]domain.PlanItem, error) {
	keyword := q.Keyword()
	startStr := isoNoMS(q.Start)
	endStr := isoNoMS(q.End)

	key := tmCacheKey{
		lat:     round5(center.Lat),
		lon:     round5(center.Lon),
		start:   startStr,
		end:     endStr,
		keyword: keyword,
	}
	if items, ok := s.cached(key); ok {
		return items, nil
	}

	eventsURL := fmt.Sprintf("%s/events.json", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", eventsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	params := req.URL.Query()
	params.Set("apikey", s.apiKey)
	params.Set("latlong", fmt.Sprintf("%g,%g", center.Lat, center.Lon))
	params.Set("radius", "25")
	params.Set("unit", "miles")
	params.Set("startDateTime", startStr)
	params.Set("endDateTime", endStr)
	params.Set("sort", "date,asc")
	params.Set("size", "30")
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")

	backoff := s.backoff
	for attempt := 0; attempt < 3; attempt++ {
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to search events: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff = backoff * 3 / 2
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("ticketmaster search failed: status %d", resp.StatusCode)
		}

		var eventsResp tmEventsResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&eventsResp)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
		}

		items := s.convertEvents(eventsResp.Embedded.Events)
		s.store(key, items)
		return items, nil
	}

	return nil, domain.ErrRateLimitExceeded
}

func (s *TicketmasterSource) convertEvents(tmEvents []tmEvent) []domain.PlanItem {
	items := make([]domain.PlanItem, 0, len(tmEvents))
	for _, ev := range tmEvents {
		if len(ev.Embedded.Venues) == 0 {
			continue
		}
		venue := ev.Embedded.Venues[0]

		lat, latErr := strconv.ParseFloat(venue.Location.Latitude, 64)
		lon, lonErr := strconv.ParseFloat(venue.Location.Longitude, 64)
		if latErr != nil || lonErr != nil {
			continue
		}

		title := ev.Name
		if title == "" {
			title = "Event"
		}

		whenISO := ev.Dates.Start.DateTime
		if whenISO == "" {
			whenISO = ev.Dates.Start.LocalDate
		}

		items = append(items, domain.PlanItem{
			Title:   title,
			Lat:     lat,
			Lon:     lon,
			URL:     ev.URL,
			Source:  domain.SourceEvent,
			Venue:   venue.Name,
			Address: venueAddress(venue),
			WhenISO: whenISO,
		})
	}
	return items
}

func venueAddress(venue tmVenue) string {
	state := venue.State.StateCode
	if state == "" {
		state = venue.State.Name
	}

	address := ""
	for _, part := range []string{venue.Address.Line1, venue.City.Name, state} {
		if part == "" {
			continue
		}
		if address != "" {
			address += ", "
		}
		address += part
	}
	return address
}

func (s *TicketmasterSource) cached(key tmCacheKey) ([]domain.PlanItem, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	entry, ok := s.cache[key]
	if !ok || time.Since(entry.fetchedAt) > tmMicroCacheTTL {
		return nil, false
	}
	return entry.items, true
}

func (s *TicketmasterSource) store(key tmCacheKey, items []domain.PlanItem) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache[key] = tmCacheEntry{fetchedAt: time.Now(), items: items}
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// isoNoMS formats a time the way the Discovery API wants it: ISO-8601 in
// UTC with no fractional seconds.
func isoNoMS(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

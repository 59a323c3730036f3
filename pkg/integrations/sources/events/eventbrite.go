package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hiddenday/planner/pkg/domain"
)

// EventbriteSource searches the Eventbrite API with up to three relaxation
// passes: keyword-filtered within 10 km, the same radius without the
// keyword, then 25 km without the keyword. The provider is sparse for
// exact-location, exact-keyword queries, so a single empty pass would
// starve the response unnecessarily. The first pass that yields anything
// wins, and the whole ladder shares one deadline so relaxation cannot
// stretch the request indefinitely.
type EventbriteSource struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxLatency time.Duration
}

type EventbriteConfig struct {
	Token   string
	BaseURL string // optional, for tests
}

const eventbriteItemLimit = 20

func NewEventbriteSource(config EventbriteConfig) (*EventbriteSource, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("eventbrite token is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://www.eventbriteapi.com/v3"
	}

	return &EventbriteSource{
		baseURL:    baseURL,
		token:      config.Token,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		maxLatency: 15 * time.Second,
	}, nil
}

func (s *EventbriteSource) Name() string {
	return domain.SourceEventbrite
}

type ebSearchResponse struct {
	Events []ebEvent `json:"events"`
}

type ebEvent struct {
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	URL   string   `json:"url"`
	Venue *ebVenue `json:"venue"`
	Start struct {
		UTC string `json:"utc"`
	} `json:"start"`
}

type ebVenue struct {
	Name      string `json:"name"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Address   struct {
		LocalizedAddressDisplay string `json:"localized_address_display"`
	} `json:"address"`
}

func (s *EventbriteSource) FetchItems(ctx context.Context, center domain.Coordinate, q domain.ItemQuery) ([]domain.PlanItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.maxLatency)
	defer cancel()

	base := map[string]string{
		"start_date.range_start":       isoNoMS(q.Start),
		"start_date.range_end":         isoNoMS(q.End),
		"location.latitude":            fmt.Sprintf("%g", center.Lat),
		"location.longitude":           fmt.Sprintf("%g", center.Lon),
		"location.within":              "10km",
		"expand":                       "venue",
		"virtual_events":               "false",
		"include_all_series_instances": "true",
		"sort_by":                      "date",
	}

	passes := []map[string]string{
		withParam(base, "q", q.Interests),
		base,
		withParam(base, "location.within", "25km"),
	}

	var lastErr error
	for _, params := range passes {
		items, err := s.search(ctx, params)
		if err != nil {
			lastErr = err
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	return []domain.PlanItem{}, lastErr
}

func (s *EventbriteSource) search(ctx context.Context, params map[string]string) ([]domain.PlanItem, error) {
	searchURL := fmt.Sprintf("%s/events/search/", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrRateLimitExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eventbrite search failed: status %d", resp.StatusCode)
	}

	var searchResp ebSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]domain.PlanItem, 0, len(searchResp.Events))
	for _, ev := range searchResp.Events {
		// Events without a located venue cannot be placed on the map.
		if ev.Venue == nil {
			continue
		}
		lat, latErr := strconv.ParseFloat(ev.Venue.Latitude, 64)
		lon, lonErr := strconv.ParseFloat(ev.Venue.Longitude, 64)
		if latErr != nil || lonErr != nil {
			continue
		}

		title := ev.Name.Text
		if title == "" {
			title = "Event"
		}

		items = append(items, domain.PlanItem{
			Title:   title,
			Lat:     lat,
			Lon:     lon,
			URL:     ev.URL,
			Source:  domain.SourceEventbrite,
			Venue:   ev.Venue.Name,
			Address: ev.Venue.Address.LocalizedAddressDisplay,
			WhenISO: ev.Start.UTC,
		})
		if len(items) >= eventbriteItemLimit {
			break
		}
	}

	return items, nil
}

func withParam(base map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	if value != "" {
		out[key] = value
	}
	return out
}

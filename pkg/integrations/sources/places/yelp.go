package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hiddenday/planner/pkg/domain"
)

// YelpSource searches the Yelp Fusion business API around a center point.
// When the caller asked for open-now it runs a strict pass first and, if
// that comes back empty, relaxes to a wider radius with the full price
// range.
type YelpSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type YelpConfig struct {
	APIKey  string
	BaseURL string // optional, for tests
}

func NewYelpSource(config YelpConfig) (*YelpSource, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("yelp API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.yelp.com/v3"
	}

	return &YelpSource{
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}, nil
}

func (s *YelpSource) Name() string {
	return domain.SourceYelp
}

type yelpSearchResponse struct {
	Businesses []yelpBusiness `json:"businesses"`
}

type yelpBusiness struct {
	Name        string          `json:"name"`
	URL         string          `json:"url"`
	Coordinates yelpCoordinates `json:"coordinates"`
	Location    yelpLocation    `json:"location"`
}

type yelpCoordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type yelpLocation struct {
	DisplayAddress []string `json:"display_address"`
}

// priceBand maps a numeric budget to Yelp price tiers. A budget that does
// not parse gets the broad band.
func priceBand(budget string) string {
	b, err := strconv.Atoi(strings.TrimSpace(budget))
	if err != nil {
		return "1,2,3"
	}
	switch {
	case b < 25:
		return "1"
	case b < 60:
		return "1,2"
	case b < 120:
		return "2,3"
	default:
		return "3,4"
	}
}

func (s *YelpSource) FetchItems(ctx context.Context, center domain.Coordinate, q domain.ItemQuery) ([]domain.PlanItem, error) {
	term := q.Keyword()
	if term == "" {
		term = "things to do"
	}

	if q.UseOpenNow {
		strict := map[string]string{
			"latitude":  formatCoord(center.Lat),
			"longitude": formatCoord(center.Lon),
			"term":      term,
			"radius":    "8000",
			"limit":     "12",
			"price":     priceBand(q.Budget),
			"open_now":  "true",
		}
		items, err := s.search(ctx, strict)
		if err == nil && len(items) > 0 {
			return items, nil
		}
	}

	relaxed := map[string]string{
		"latitude":  formatCoord(center.Lat),
		"longitude": formatCoord(center.Lon),
		"term":      term,
		"radius":    "12000",
		"limit":     "12",
		"price":     "1,2,3,4",
	}
	return s.search(ctx, relaxed)
}

func (s *YelpSource) search(ctx context.Context, params map[string]string) ([]domain.PlanItem, error) {
	searchURL := fmt.Sprintf("%s/businesses/search", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search businesses: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrRateLimitExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yelp search failed: status %d", resp.StatusCode)
	}

	var searchResp yelpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]domain.PlanItem, 0, len(searchResp.Businesses))
	for _, b := range searchResp.Businesses {
		// A business without coordinates cannot be placed on the map.
		if b.Coordinates.Latitude == nil || b.Coordinates.Longitude == nil {
			continue
		}

		title := b.Name
		if title == "" {
			title = "Place"
		}

		items = append(items, domain.PlanItem{
			Title:   title,
			Lat:     *b.Coordinates.Latitude,
			Lon:     *b.Coordinates.Longitude,
			URL:     b.URL,
			Source:  domain.SourceYelp,
			Address: strings.Join(b.Location.DisplayAddress, ", "),
		})
		if len(items) >= 12 {
			break
		}
	}

	return items, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hiddenday/planner/pkg/domain"
)

// GooglePlacesSource queries the Places nearby-search endpoint with a fixed
// radius and an open-now filter, using the whole interests string as the
// keyword.
type GooglePlacesSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type GooglePlacesConfig struct {
	APIKey  string
	BaseURL string // optional, for tests
}

func NewGooglePlacesSource(config GooglePlacesConfig) (*GooglePlacesSource, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("google places API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/place"
	}

	return &GooglePlacesSource{
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}, nil
}

func (s *GooglePlacesSource) Name() string {
	return domain.SourceGoogle
}

type googlePlacesResponse struct {
	Results []googlePlace `json:"results"`
	Status  string        `json:"status"`
}

type googlePlace struct {
	Name     string `json:"name"`
	PlaceID  string `json:"place_id"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (s *GooglePlacesSource) FetchItems(ctx context.Context, center domain.Coordinate, q domain.ItemQuery) ([]domain.PlanItem, error) {
	searchURL := fmt.Sprintf("%s/nearbysearch/json", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	params := req.URL.Query()
	params.Set("key", s.apiKey)
	params.Set("location", fmt.Sprintf("%.6f,%.6f", center.Lat, center.Lon))
	params.Set("radius", "5000")
	params.Set("opennow", "true")
	if q.Interests != "" {
		params.Set("keyword", q.Interests)
	}
	req.URL.RawQuery = params.Encode()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google places search failed: status %d", resp.StatusCode)
	}

	var placesResp googlePlacesResponse
	if err := json.NewDecoder(resp.Body).Decode(&placesResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]domain.PlanItem, 0, len(placesResp.Results))
	for _, place := range placesResp.Results {
		if place.Geometry.Location.Lat == 0 && place.Geometry.Location.Lng == 0 {
			continue
		}

		items = append(items, domain.PlanItem{
			Title:   place.Name,
			Lat:     place.Geometry.Location.Lat,
			Lon:     place.Geometry.Location.Lng,
			URL:     fmt.Sprintf("https://www.google.com/maps/place/?q=place_id:%s", place.PlaceID),
			Source:  domain.SourceGoogle,
			Address: place.Vicinity,
		})
		if len(items) >= 10 {
			break
		}
	}

	return items, nil
}

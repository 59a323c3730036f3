package integrations

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

// NominatimClient resolves free-text locations against the OpenStreetMap
// Nominatim search endpoint. No API key; the usage policy requires a
// descriptive User-Agent instead.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type NominatimConfig struct {
	UserAgent string
	BaseURL   string // optional, for tests
}

func NewNominatimClient(config NominatimConfig) (*NominatimClient, error) {
	if config.UserAgent == "" {
		return nil, fmt.Errorf("nominatim user agent is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}

	return &NominatimClient{
		baseURL:    baseURL,
		userAgent:  config.UserAgent,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}, nil
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a location to coordinates. A miss (zero results or a
// non-success status) returns (nil, nil): that is an expected outcome, not
// a failure. Only transport-level problems surface as errors.
func (c *NominatimClient) Geocode(ctx context.Context, query string) (*domain.Coordinate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	searchURL := fmt.Sprintf("%s/search", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("format", "jsonv2")
	q.Set("q", query)
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse longitude %q: %w", results[0].Lon, err)
	}

	return &domain.Coordinate{Lat: lat, Lon: lon}, nil
}

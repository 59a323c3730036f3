package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	APIs     APIConfig      `json:"apis"`
	Cache    CacheConfig    `json:"cache"`
}

// ServerConfig for HTTP server settings
type ServerConfig struct {
	Port         string `json:"port"`
	ReadTimeout  int    `json:"read_timeout_seconds"`
	WriteTimeout int    `json:"write_timeout_seconds"`
}

// DatabaseConfig for the SQLite plan store
type DatabaseConfig struct {
	Path string `json:"path"`
}

// APIConfig holds all external API configurations. A provider whose
// credential is empty is simply not registered.
type APIConfig struct {
	Yelp         YelpConfig         `json:"yelp"`
	Ticketmaster TicketmasterConfig `json:"ticketmaster"`
	Eventbrite   EventbriteConfig   `json:"eventbrite"`
	GooglePlaces GooglePlacesConfig `json:"google_places"`
	Geocoder     GeocoderConfig     `json:"geocoder"`
}

// YelpConfig for the Yelp Fusion API
type YelpConfig struct {
	APIKey string `json:"api_key"`
}

// TicketmasterConfig for the Ticketmaster Discovery API
type TicketmasterConfig struct {
	APIKey string `json:"api_key"`
}

// EventbriteConfig for the Eventbrite API. Enabled gates the source even
// when a token is present; the provider is flaky enough to want a kill
// switch independent of credentials.
type EventbriteConfig struct {
	Token   string `json:"token"`
	Enabled bool   `json:"enabled"`
}

// GooglePlacesConfig for the Google Places API
type GooglePlacesConfig struct {
	APIKey string `json:"api_key"`
}

// GeocoderConfig for the Nominatim geocoder, which requires a descriptive
// user agent instead of an API key
type GeocoderConfig struct {
	UserAgent string `json:"user_agent"`
}

// CacheConfig for the plan response cache
type CacheConfig struct {
	PlanTTLMinutes int `json:"plan_ttl_minutes"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values using the pattern HIDDENDAY_SECTION_KEY
func Load(configPath string) (*Config, error) {
	config := &Config{}

	// Load from file if it exists
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Apply defaults
	applyDefaults(config)

	// Override with environment variables
	applyEnvOverrides(config)

	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 30
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 30
	}
	if config.Database.Path == "" {
		config.Database.Path = "./hidden-day.db"
	}
	if config.APIs.Geocoder.UserAgent == "" {
		config.APIs.Geocoder.UserAgent = "HiddenDay/1.0 (+https://hidden.day)"
	}
	if config.Cache.PlanTTLMinutes == 0 {
		config.Cache.PlanTTLMinutes = 10
	}
}

func applyEnvOverrides(config *Config) {
	// Server overrides
	if v := os.Getenv("HIDDENDAY_SERVER_PORT"); v != "" {
		config.Server.Port = v
	}

	// Database overrides
	if v := os.Getenv("HIDDENDAY_DATABASE_PATH"); v != "" {
		config.Database.Path = v
	}

	// API key overrides
	if v := os.Getenv("HIDDENDAY_YELP_API_KEY"); v != "" {
		config.APIs.Yelp.APIKey = v
	}
	if v := os.Getenv("HIDDENDAY_TICKETMASTER_API_KEY"); v != "" {
		config.APIs.Ticketmaster.APIKey = v
	}
	if v := os.Getenv("HIDDENDAY_EVENTBRITE_TOKEN"); v != "" {
		config.APIs.Eventbrite.Token = v
	}
	if v := os.Getenv("HIDDENDAY_EVENTBRITE_ENABLED"); v != "" {
		config.APIs.Eventbrite.Enabled = v != "0" && v != "false" && v != "no"
	}
	if v := os.Getenv("HIDDENDAY_GOOGLE_PLACES_API_KEY"); v != "" {
		config.APIs.GooglePlaces.APIKey = v
	}
	if v := os.Getenv("HIDDENDAY_GEOCODER_USER_AGENT"); v != "" {
		config.APIs.Geocoder.UserAgent = v
	}
}

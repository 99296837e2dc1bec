package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeGeoapify represents the Geoapify geocoding and routing APIs.
	ProviderTypeGeoapify ProviderType = "geoapify"
	// ProviderTypeHere represents the HERE geocoding and routing APIs.
	ProviderTypeHere ProviderType = "here"
	// ProviderTypeGoogle represents Google Maps geocoding and directions.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim with OSRM routing.
	ProviderTypeNominatim ProviderType = "nominatim"
)

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType  // Type of provider to create
	APIKey    string        // API key (not used by Nominatim)
	Language  string        // Language hint sent with every request
	RateLimit int           // Requests per second, zero means unlimited
	Timeout   time.Duration // Per request timeout, DefaultTimeout when zero
	Logger    *slog.Logger  // Logger for the provider
}

// ErrMissingAPIKey is returned when a provider that needs a key is configured without one.
var ErrMissingAPIKey = errors.New("API key is required")

// NewProvider creates a geocoding provider based on the provided configuration.
// It applies the Factory pattern to decouple provider instantiation from business logic.
//
// Supported provider types:
// - "geoapify": Geoapify geocoding and routing (requires API key)
// - "here": HERE geocoding and routing (requires API key)
// - "google": Google Maps Geocoding and Directions (requires API key)
// - "nominatim": OpenStreetMap Nominatim and OSRM (free, no API key required)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	switch config.Type {
	case ProviderTypeGeoapify:
		return newGeoapifyProvider(config)
	case ProviderTypeHere:
		return newHereProvider(config)
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return newNominatimProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

func newGeoapifyProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w for Geoapify provider", ErrMissingAPIKey)
	}
	return NewGeoapifyProvider(config.APIKey, config.Language, config.RateLimit, config.Timeout, config.Logger), nil
}

func newHereProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w for HERE provider", ErrMissingAPIKey)
	}
	return NewHereProvider(config.APIKey, config.Language, config.RateLimit, config.Timeout, config.Logger), nil
}

// newGoogleProvider creates a Google Maps provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w for Google provider", ErrMissingAPIKey)
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
		maps.WithHTTPClient(newHTTPClient(config.Timeout)),
	}

	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Language, config.Logger), nil
}

// newNominatimProvider creates a Nominatim provider.
func newNominatimProvider(config ProviderConfig) (Provider, error) {
	if config.RateLimit > nominatimRateLimit {
		config.Logger.Warn("Rate limit above Nominatim fair use policy is ignored",
			"requested", config.RateLimit, "applied", nominatimRateLimit)
	}
	return NewNominatimProvider(config.Language, config.Timeout, config.Logger), nil
}

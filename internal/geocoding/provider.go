package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// Provider is the single upstream used for address lookup, reverse lookup and routing.
// Implementations translate the upstream wire format into the canonical models.
// An empty slice with a nil error means the upstream found nothing.
type Provider interface {
	Geocode(ctx context.Context, address string) ([]models.GeocodeResult, error)
	ReverseGeocode(ctx context.Context, coords models.Coordinates) ([]models.GeocodeResult, error)
	Route(ctx context.Context, origin, destination models.Coordinates, mode TransportMode) ([]models.Route, error)
}

// Common provider errors.
var (
	ErrEmptyAddress    = errors.New("geocoding provider got empty address")
	ErrUnsupportedMode = errors.New("unsupported transport mode")
	ErrUnauthorized    = errors.New("provider rejected the API key")
)

// ProviderError is returned for every upstream failure: transport errors, non-2xx
// statuses and undecodable bodies. It carries the upstream text.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func wrapError(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// TransportMode is a routing profile.
type TransportMode string

// Supported transport modes.
const (
	ModePedestrian      TransportMode = "pedestrian"
	ModeCar             TransportMode = "car"
	ModeTruck           TransportMode = "truck"
	ModeBicycle         TransportMode = "bicycle"
	ModeScooter         TransportMode = "scooter"
	ModeTaxi            TransportMode = "taxi"
	ModeBus             TransportMode = "bus"
	ModePublicTransport TransportMode = "publicTransport"
)

// AllModes lists every supported transport mode.
func AllModes() []TransportMode {
	return []TransportMode{
		ModePedestrian, ModeCar, ModeTruck, ModeBicycle,
		ModeScooter, ModeTaxi, ModeBus, ModePublicTransport,
	}
}

// ParseMode validates a single transport mode name.
func ParseMode(raw string) (TransportMode, error) {
	for _, mode := range AllModes() {
		if string(mode) == raw {
			return mode, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedMode, raw)
}

// ParseModes validates mode names, drops duplicates and keeps the input order.
// All invalid names are reported together.
func ParseModes(raw []string) ([]TransportMode, error) {
	var (
		modes   []TransportMode
		invalid []string
	)
	seen := make(map[TransportMode]bool)

	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		mode, err := ParseMode(name)
		if err != nil {
			invalid = append(invalid, name)
			continue
		}
		if !seen[mode] {
			seen[mode] = true
			modes = append(modes, mode)
		}
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, strings.Join(invalid, ", "))
	}

	return modes, nil
}

// SplitModes splits a comma separated list of mode names as given in a query string.
func SplitModes(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return strings.Split(csv, ",")
}

// sectionType returns the section type reported for a transport mode.
func sectionType(mode TransportMode) string {
	switch mode {
	case ModePedestrian:
		return "pedestrian"
	case ModePublicTransport, ModeBus:
		return "transit"
	default:
		return "vehicle"
	}
}

// tagRoutes stamps every route with the mode it was requested for.
func tagRoutes(routes []models.Route, mode TransportMode) []models.Route {
	for i := range routes {
		routes[i].TransportMode = string(mode)
		for j := range routes[i].Sections {
			if routes[i].Sections[j].Actions == nil {
				routes[i].Sections[j].Actions = []models.Action{}
			}
		}
	}
	return routes
}

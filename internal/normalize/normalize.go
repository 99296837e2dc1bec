// Package normalize builds the canonical cache keys used by every store namespace.
//
// Each namespace has exactly one key form:
//   - address: the raw string lowercased, nothing else;
//   - point of interest: lowercased, double quotes removed, whitespace collapsed and trimmed;
//   - route: the shortest exact decimal form of both coordinate pairs plus the transport mode;
//   - reverse: coordinates rounded to six decimals.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// Kind selects the normalization rules for a raw lookup string.
type Kind int

const (
	// KindAddress is a free-form address string.
	KindAddress Kind = iota
	// KindPOI is the name of a point of interest.
	KindPOI
)

// Coordinate parsing errors.
var (
	ErrMalformedCoordinates = errors.New("coordinates must be in lat,lng format")
	ErrCoordinateRange      = errors.New("coordinates out of range")
)

const (
	maxLatitude  = 90
	maxLongitude = 180
)

// Key normalizes raw according to kind.
func Key(raw string, kind Kind) string {
	switch kind {
	case KindPOI:
		return POI(raw)
	default:
		return Address(raw)
	}
}

// Address lowercases the address. Whitespace and punctuation are significant.
func Address(raw string) string {
	return strings.ToLower(raw)
}

// POI lowercases the name, drops double quotes and collapses whitespace runs into single spaces.
func POI(raw string) string {
	cleaned := strings.ReplaceAll(strings.ToLower(raw), `"`, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// CoordinateKey renders coordinates as "lat,lng" using the shortest decimal that round-trips.
func CoordinateKey(c models.Coordinates) string {
	return formatFloat(c.Latitude) + "," + formatFloat(c.Longitude)
}

// RouteKey builds the route namespace key for one origin, destination and transport mode.
func RouteKey(origin, destination models.Coordinates, mode string) string {
	return CoordinateKey(origin) + "," + CoordinateKey(destination) + "|" + mode
}

// ReverseKey rounds the coordinates to six decimals, roughly 10 cm on the ground.
func ReverseKey(c models.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// ParseCoordinates parses a "lat,lng" string. Surrounding whitespace around either number is ignored.
func ParseCoordinates(raw string) (models.Coordinates, error) {
	parts := strings.Split(raw, ",")
	const coordinateParts = 2
	if len(parts) != coordinateParts {
		return models.Coordinates{}, fmt.Errorf("%w: %q", ErrMalformedCoordinates, raw)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: invalid latitude %q", ErrMalformedCoordinates, parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: invalid longitude %q", ErrMalformedCoordinates, parts[1])
	}

	coords := models.Coordinates{Latitude: lat, Longitude: lng}
	if err = ValidateCoordinates(coords); err != nil {
		return models.Coordinates{}, err
	}

	return coords, nil
}

// ValidateCoordinates checks that latitude and longitude are finite and inside their WGS84 ranges.
func ValidateCoordinates(c models.Coordinates) error {
	if !finite(c.Latitude) || !finite(c.Longitude) ||
		c.Latitude < -maxLatitude || c.Latitude > maxLatitude ||
		c.Longitude < -maxLongitude || c.Longitude > maxLongitude {
		return fmt.Errorf("%w: %s", ErrCoordinateRange, CoordinateKey(c))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LooksLikeCoordinates reports whether raw parses as a coordinate pair.
func LooksLikeCoordinates(raw string) bool {
	_, err := ParseCoordinates(raw)
	return err == nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

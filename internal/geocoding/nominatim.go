package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/normalize"
	"github.com/UnknownOlympus/hermes/internal/polyline"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/time/rate"
)

// OpenStreetMap endpoints: Nominatim for geocoding, OSRM for routing.
const (
	NominatimSearchURL  = "https://nominatim.openstreetmap.org/search"
	NominatimReverseURL = "https://nominatim.openstreetmap.org/reverse"
	OSRMRouteURL        = "https://router.project-osrm.org/route/v1"

	nominatimName = "nominatim"
	// nominatimUserAgent MUST include valid contact info per Nominatim usage policy:
	// https://operations.osmfoundation.org/policies/nominatim/
	nominatimUserAgent = "Hermes-Geocoding-Proxy/1.0 (https://github.com/UnknownOlympus/hermes)"
	// nominatimRateLimit is the fair use limit of the public instance.
	nominatimRateLimit = 1
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API
// for geocoding and the OSRM demo server for routing.
type NominatimProvider struct {
	fetch      *httpFetcher
	language   string
	searchURL  *url.URL
	reverseURL *url.URL
	routeURL   string
}

// nominatimResponse represents one JSON result of the Nominatim API.
type nominatimResponse struct {
	PlaceID     int64            `json:"place_id"`
	Lat         string           `json:"lat"`          // Latitude as string
	Lon         string           `json:"lon"`          // Longitude as string
	DisplayName string           `json:"display_name"` // Full formatted address
	AddressType string           `json:"addresstype"`
	BoundingBox []string         `json:"boundingbox"` // south, north, west, east
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	State       string `json:"state"`
	County      string `json:"county"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Suburb      string `json:"suburb"`
	Road        string `json:"road"`
	Postcode    string `json:"postcode"`
	HouseNumber string `json:"house_number"`
}

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
	Geometry *geojson.Geometry `json:"geometry"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
	ErrOSRMNoRoute            = errors.New("osrm could not route between the points")
)

// NewNominatimProvider creates a new Nominatim provider using the public endpoints.
func NewNominatimProvider(language string, timeout time.Duration, log *slog.Logger) *NominatimProvider {
	return NewNominatimProviderWithClient(newHTTPClient(timeout), language, newLimiter(nominatimRateLimit), log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(
	client HTTPClient,
	language string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *NominatimProvider {
	return &NominatimProvider{
		fetch: &httpFetcher{
			name:    nominatimName,
			client:  client,
			limiter: limiter,
			log:     log,
			headers: map[string]string{
				"User-Agent":      nominatimUserAgent,
				"Accept-Language": language,
			},
		},
		language:   language,
		searchURL:  mustParseURL(NominatimSearchURL),
		reverseURL: mustParseURL(NominatimReverseURL),
		routeURL:   OSRMRouteURL,
	}
}

// Geocode converts an address to matches using the Nominatim API.
//
// Uses a progressive fallback strategy for addresses Nominatim does not know verbatim:
// 1. Try full address
// 2. Try address without the last comma separated component (usually the house number)
// 3. Try address without the last two components
// 4. Try the first component only (city or village)
//
// All fallbacks returning nothing is an empty result, not an error.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) ([]models.GeocodeResult, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	np.fetch.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	addressVariations := np.generateAddressFallbacks(address)

	for idx, addrVariation := range addressVariations {
		results, err := np.geocodeSingleAddress(ctx, addrVariation)
		if err == nil {
			if idx > 0 {
				np.fetch.log.InfoContext(ctx, "Geocoded using fallback address",
					"original", address,
					"fallback", addrVariation,
					"fallback_level", idx)
			}
			return results, nil
		}

		// If it's not an empty response error, return immediately (API error, invalid coords, etc.)
		if !errors.Is(err, ErrNominatimEmptyResponse) {
			return nil, wrapError(nominatimName, "geocode", err)
		}

		np.fetch.log.DebugContext(ctx, "Address variation returned no results, trying fallback",
			"variation", addrVariation,
			"fallback_level", idx)
	}

	np.fetch.log.WarnContext(ctx, "All address fallbacks exhausted",
		"address", address,
		"variations_tried", len(addressVariations))

	return []models.GeocodeResult{}, nil
}

// generateAddressFallbacks creates a list of progressively simpler address variations.
func (np *NominatimProvider) generateAddressFallbacks(address string) []string {
	seen := make(map[string]bool)
	variations := []string{}

	addVariation := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	addVariation(address)

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 1 {
		addVariation(strings.Join(parts[:len(parts)-1], ", "))

		const lenComponents = 2
		if len(parts) > lenComponents {
			addVariation(strings.Join(parts[:len(parts)-2], ", "))
		}

		addVariation(parts[0])
	}

	return variations
}

// geocodeSingleAddress performs a single search request without fallback logic.
func (np *NominatimProvider) geocodeSingleAddress(ctx context.Context, address string) ([]models.GeocodeResult, error) {
	reqURL := withQuery(np.searchURL, url.Values{
		"q":               {address},
		"format":          {"json"},
		"limit":           {resultsLimit},
		"addressdetails":  {"1"},
		"accept-language": {np.language},
	})

	var results []nominatimResponse
	if err := np.fetch.getJSON(ctx, reqURL, &results); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	return nominatimResults(results)
}

// ReverseGeocode returns the address at coords. Nominatim returns a single object.
func (np *NominatimProvider) ReverseGeocode(ctx context.Context, coords models.Coordinates) ([]models.GeocodeResult, error) {
	np.fetch.log.DebugContext(ctx, "Reverse geocoding using Nominatim", "coords", normalize.CoordinateKey(coords))

	reqURL := withQuery(np.reverseURL, url.Values{
		"lat":             {strconv.FormatFloat(coords.Latitude, 'f', -1, 64)},
		"lon":             {strconv.FormatFloat(coords.Longitude, 'f', -1, 64)},
		"format":          {"json"},
		"addressdetails":  {"1"},
		"accept-language": {np.language},
	})

	var result nominatimResponse
	if err := np.fetch.getJSON(ctx, reqURL, &result); err != nil {
		return nil, wrapError(nominatimName, "reverse geocode", err)
	}
	if result.Lat == "" && result.Lon == "" {
		return []models.GeocodeResult{}, nil
	}

	results, err := nominatimResults([]nominatimResponse{result})
	if err != nil {
		return nil, wrapError(nominatimName, "reverse geocode", err)
	}
	return results, nil
}

// Route asks OSRM for routes with alternatives. OSRM has no public transport,
// bus or truck profiles.
func (np *NominatimProvider) Route(
	ctx context.Context,
	origin, destination models.Coordinates,
	mode TransportMode,
) ([]models.Route, error) {
	profile, err := osrmProfile(mode)
	if err != nil {
		return nil, wrapError(nominatimName, "route", err)
	}

	reqURL, err := url.Parse(fmt.Sprintf("%s/%s/%s,%s;%s,%s", np.routeURL, profile,
		strconv.FormatFloat(origin.Longitude, 'f', -1, 64), strconv.FormatFloat(origin.Latitude, 'f', -1, 64),
		strconv.FormatFloat(destination.Longitude, 'f', -1, 64), strconv.FormatFloat(destination.Latitude, 'f', -1, 64),
	))
	if err != nil {
		return nil, wrapError(nominatimName, "route", fmt.Errorf("failed to parse route URL: %w", err))
	}
	reqURL = withQuery(reqURL, url.Values{
		"overview":     {"full"},
		"geometries":   {"geojson"},
		"alternatives": {"true"},
	})

	var resp osrmResponse
	if err = np.fetch.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, wrapError(nominatimName, "route", err)
	}

	switch resp.Code {
	case "Ok":
		// continue
	case "NoRoute":
		return []models.Route{}, nil
	default:
		return nil, wrapError(nominatimName, "route", fmt.Errorf("%w: %s", ErrOSRMNoRoute, resp.Code))
	}

	routes := make([]models.Route, 0, len(resp.Routes))
	for idx, route := range resp.Routes {
		var points []polyline.Point
		if route.Geometry != nil {
			if line, ok := route.Geometry.Geometry().(orb.LineString); ok {
				for _, p := range line {
					points = append(points, polyline.Point{Lat: p.Lat(), Lng: p.Lon()})
				}
			}
		}

		encoded, errEnc := polyline.Encode(points, polyline.DefaultPrecision)
		if errEnc != nil {
			return nil, wrapError(nominatimName, "route", errEnc)
		}

		routes = append(routes, models.Route{
			ID: fmt.Sprintf("route-%d", idx),
			Sections: []models.Section{{
				ID:        "section-0",
				Type:      sectionType(mode),
				Transport: models.Transport{Mode: string(mode)},
				Actions:   []models.Action{},
				Summary: models.SectionSummary{
					Duration: int(route.Duration),
					Length:   int(route.Distance),
				},
				Polyline: encoded,
			}},
		})
	}

	return tagRoutes(routes, mode), nil
}

func nominatimResults(results []nominatimResponse) ([]models.GeocodeResult, error) {
	out := make([]models.GeocodeResult, 0, len(results))
	for _, item := range results {
		lat, err := strconv.ParseFloat(item.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, item.Lat)
		}
		lon, err := strconv.ParseFloat(item.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, item.Lon)
		}

		city := item.Address.City
		if city == "" {
			city = item.Address.Town
		}
		if city == "" {
			city = item.Address.Village
		}

		result := models.GeocodeResult{
			Title:      item.DisplayName,
			ID:         strconv.FormatInt(item.PlaceID, 10),
			ResultType: nominatimResultType(item.AddressType),
			Address: models.Address{
				Label:       item.DisplayName,
				CountryCode: strings.ToUpper(item.Address.CountryCode),
				CountryName: item.Address.Country,
				State:       item.Address.State,
				County:      item.Address.County,
				City:        city,
				District:    item.Address.Suburb,
				Street:      item.Address.Road,
				PostalCode:  item.Address.Postcode,
				HouseNumber: item.Address.HouseNumber,
			},
			Position:    &models.Position{Lat: lat, Lng: lon},
			BoundingBox: nominatimBoundingBox(item.BoundingBox),
		}
		result.FillDefaults()
		out = append(out, result)
	}
	return out, nil
}

// nominatimBoundingBox converts Nominatim's [south, north, west, east] strings. Bad input yields nil.
func nominatimBoundingBox(raw []string) *models.BoundingBox {
	const bboxLen = 4
	if len(raw) != bboxLen {
		return nil
	}
	values := make([]float64, bboxLen)
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		values[i] = v
	}
	return &models.BoundingBox{South: values[0], North: values[1], West: values[2], East: values[3]}
}

func nominatimResultType(addressType string) string {
	switch addressType {
	case "building", "house":
		return "houseNumber"
	case "road":
		return "street"
	case "city", "town", "village", "suburb", "postcode":
		return "locality"
	case "state", "county", "country":
		return "administrativeArea"
	default:
		return "place"
	}
}

func osrmProfile(mode TransportMode) (string, error) {
	switch mode {
	case ModeCar, ModeTaxi:
		return "driving", nil
	case ModePedestrian:
		return "foot", nil
	case ModeBicycle, ModeScooter:
		return "bike", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
}

package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/normalize"
	"github.com/UnknownOlympus/hermes/internal/polyline"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/time/rate"
)

// Geoapify API endpoints.
const (
	GeoapifyGeocodeURL = "https://api.geoapify.com/v1/geocode/search"
	GeoapifyReverseURL = "https://api.geoapify.com/v1/geocode/reverse"
	GeoapifyRoutingURL = "https://api.geoapify.com/v1/routing"

	geoapifyName  = "geoapify"
	resultsLimit  = "10"
	geojsonFormat = "geojson"
)

// GeoapifyProvider implements the Provider interface using the Geoapify geocoding and routing APIs.
// Responses are GeoJSON and are translated into the canonical HERE-shaped models.
type GeoapifyProvider struct {
	fetch      *httpFetcher
	apiKey     string
	language   string
	geocodeURL *url.URL
	reverseURL *url.URL
	routingURL *url.URL
}

type geoapifyFeatureCollection struct {
	Features []geoapifyFeature `json:"features"`
}

type geoapifyFeature struct {
	Properties geoapifyProperties `json:"properties"`
	Geometry   *geojson.Geometry  `json:"geometry"`
	BBox       geojson.BBox       `json:"bbox"`
}

type geoapifyProperties struct {
	Formatted   string  `json:"formatted"`
	PlaceID     string  `json:"place_id"`
	ResultType  string  `json:"result_type"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country"`
	State       string  `json:"state"`
	County      string  `json:"county"`
	City        string  `json:"city"`
	District    string  `json:"district"`
	Suburb      string  `json:"suburb"`
	Street      string  `json:"street"`
	Postcode    string  `json:"postcode"`
	HouseNumber string  `json:"housenumber"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`

	// Routing properties.
	Distance float64       `json:"distance"`
	Time     float64       `json:"time"`
	Legs     []geoapifyLeg `json:"legs"`
}

type geoapifyLeg struct {
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
}

// NewGeoapifyProvider creates a new Geoapify provider with its own HTTP client and rate limiter.
func NewGeoapifyProvider(apiKey, language string, rateLimit int, timeout time.Duration, log *slog.Logger) *GeoapifyProvider {
	return NewGeoapifyProviderWithClient(newHTTPClient(timeout), apiKey, language, newLimiter(rateLimit), log)
}

// NewGeoapifyProviderWithClient allows injecting custom HTTP client.
func NewGeoapifyProviderWithClient(
	client HTTPClient,
	apiKey, language string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *GeoapifyProvider {
	return &GeoapifyProvider{
		fetch: &httpFetcher{
			name:    geoapifyName,
			client:  client,
			limiter: limiter,
			log:     log,
		},
		apiKey:     apiKey,
		language:   language,
		geocodeURL: mustParseURL(GeoapifyGeocodeURL),
		reverseURL: mustParseURL(GeoapifyReverseURL),
		routingURL: mustParseURL(GeoapifyRoutingURL),
	}
}

// Geocode looks the address up and returns up to ten matches.
func (gp *GeoapifyProvider) Geocode(ctx context.Context, address string) ([]models.GeocodeResult, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	gp.fetch.log.DebugContext(ctx, "Geocoding using Geoapify", "address", address)

	reqURL := withQuery(gp.geocodeURL, url.Values{
		"text":   {address},
		"format": {geojsonFormat},
		"lang":   {gp.language},
		"limit":  {resultsLimit},
		"apiKey": {gp.apiKey},
	})

	var collection geoapifyFeatureCollection
	if err := gp.fetch.getJSON(ctx, reqURL, &collection); err != nil {
		return nil, wrapError(geoapifyName, "geocode", err)
	}

	return gp.toResults(collection), nil
}

// ReverseGeocode returns the addresses closest to coords.
func (gp *GeoapifyProvider) ReverseGeocode(ctx context.Context, coords models.Coordinates) ([]models.GeocodeResult, error) {
	gp.fetch.log.DebugContext(ctx, "Reverse geocoding using Geoapify", "coords", normalize.CoordinateKey(coords))

	reqURL := withQuery(gp.reverseURL, url.Values{
		"lat":    {strconv.FormatFloat(coords.Latitude, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(coords.Longitude, 'f', -1, 64)},
		"format": {geojsonFormat},
		"lang":   {gp.language},
		"apiKey": {gp.apiKey},
	})

	var collection geoapifyFeatureCollection
	if err := gp.fetch.getJSON(ctx, reqURL, &collection); err != nil {
		return nil, wrapError(geoapifyName, "reverse geocode", err)
	}

	return gp.toResults(collection), nil
}

// Route requests routes for one transport mode. Each returned feature becomes one route
// whose sections are the legs of its MultiLineString geometry.
func (gp *GeoapifyProvider) Route(
	ctx context.Context,
	origin, destination models.Coordinates,
	mode TransportMode,
) ([]models.Route, error) {
	profile, err := geoapifyProfile(mode)
	if err != nil {
		return nil, wrapError(geoapifyName, "route", err)
	}

	reqURL := withQuery(gp.routingURL, url.Values{
		"waypoints": {fmt.Sprintf("%s|%s", normalize.CoordinateKey(origin), normalize.CoordinateKey(destination))},
		"mode":      {profile},
		"details":   {"instruction_details"},
		"lang":      {gp.language},
		"apiKey":    {gp.apiKey},
	})

	var collection geoapifyFeatureCollection
	if err = gp.fetch.getJSON(ctx, reqURL, &collection); err != nil {
		return nil, wrapError(geoapifyName, "route", err)
	}

	routes := make([]models.Route, 0, len(collection.Features))
	for idx, feature := range collection.Features {
		route, errConv := geoapifyRoute(idx, feature, mode)
		if errConv != nil {
			return nil, wrapError(geoapifyName, "route", errConv)
		}
		routes = append(routes, route)
	}

	return tagRoutes(routes, mode), nil
}

func (gp *GeoapifyProvider) toResults(collection geoapifyFeatureCollection) []models.GeocodeResult {
	results := make([]models.GeocodeResult, 0, len(collection.Features))
	for _, feature := range collection.Features {
		props := feature.Properties
		district := props.District
		if district == "" {
			district = props.Suburb
		}

		result := models.GeocodeResult{
			Title:      props.Formatted,
			ID:         props.PlaceID,
			ResultType: geoapifyResultType(props.ResultType),
			Address: models.Address{
				Label:       props.Formatted,
				CountryCode: props.CountryCode,
				CountryName: props.Country,
				State:       props.State,
				County:      props.County,
				City:        props.City,
				District:    district,
				Street:      props.Street,
				PostalCode:  props.Postcode,
				HouseNumber: props.HouseNumber,
			},
			Position: featurePosition(feature),
		}

		if feature.BBox.Valid() {
			bound := feature.BBox.Bound()
			result.BoundingBox = &models.BoundingBox{
				West:  bound.Left(),
				South: bound.Bottom(),
				East:  bound.Right(),
				North: bound.Top(),
			}
		}

		result.FillDefaults()
		results = append(results, result)
	}
	return results
}

func featurePosition(feature geoapifyFeature) *models.Position {
	if feature.Properties.Lat != 0 || feature.Properties.Lon != 0 {
		return &models.Position{Lat: feature.Properties.Lat, Lng: feature.Properties.Lon}
	}
	if feature.Geometry == nil {
		return nil
	}
	if point, ok := feature.Geometry.Geometry().(orb.Point); ok {
		return &models.Position{Lat: point.Lat(), Lng: point.Lon()}
	}
	return nil
}

// routeLines flattens a route geometry into its lines. A LineString is one line.
func routeLines(geometry *geojson.Geometry) []orb.LineString {
	if geometry == nil {
		return nil
	}
	switch g := geometry.Geometry().(type) {
	case orb.LineString:
		return []orb.LineString{g}
	case orb.MultiLineString:
		return g
	default:
		return nil
	}
}

func geoapifyRoute(idx int, feature geoapifyFeature, mode TransportMode) (models.Route, error) {
	lines := routeLines(feature.Geometry)
	sections := make([]models.Section, 0, len(lines))

	for legIdx, line := range lines {
		points := make([]polyline.Point, 0, len(line))
		for _, coord := range line {
			points = append(points, polyline.Point{Lat: coord.Lat(), Lng: coord.Lon()})
		}

		encoded, err := polyline.Encode(points, polyline.DefaultPrecision)
		if err != nil {
			return models.Route{}, fmt.Errorf("failed to encode route geometry: %w", err)
		}

		summary := models.SectionSummary{
			Duration: int(feature.Properties.Time),
			Length:   int(feature.Properties.Distance),
		}
		if legIdx < len(feature.Properties.Legs) && len(lines) > 1 {
			leg := feature.Properties.Legs[legIdx]
			summary = models.SectionSummary{Duration: int(leg.Time), Length: int(leg.Distance)}
		}

		section := models.Section{
			ID:        fmt.Sprintf("section-%d", legIdx),
			Type:      sectionType(mode),
			Transport: models.Transport{Mode: string(mode)},
			Actions:   []models.Action{},
			Summary:   summary,
			Polyline:  encoded,
		}
		if len(points) > 0 {
			first, last := points[0], points[len(points)-1]
			section.Departure.Place = &models.Location{Location: models.Position{Lat: first.Lat, Lng: first.Lng}}
			section.Arrival.Place = &models.Location{Location: models.Position{Lat: last.Lat, Lng: last.Lng}}
		}
		sections = append(sections, section)
	}

	return models.Route{ID: fmt.Sprintf("route-%d", idx), Sections: sections}, nil
}

func geoapifyProfile(mode TransportMode) (string, error) {
	switch mode {
	case ModePedestrian:
		return "walk", nil
	case ModeCar, ModeTaxi:
		return "drive", nil
	case ModeTruck:
		return "truck", nil
	case ModeBicycle:
		return "bicycle", nil
	case ModeScooter:
		return "scooter", nil
	case ModeBus:
		return "bus", nil
	case ModePublicTransport:
		return "approximated_transit", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
}

func geoapifyResultType(raw string) string {
	switch raw {
	case "building":
		return "houseNumber"
	case "street":
		return "street"
	case "city", "suburb", "district", "postcode":
		return "locality"
	case "state", "county", "country":
		return "administrativeArea"
	case "amenity":
		return "place"
	default:
		return raw
	}
}

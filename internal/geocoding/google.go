package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/normalize"
	"github.com/UnknownOlympus/hermes/internal/polyline"
	"googlemaps.github.io/maps"
)

const googleName = "google"

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	language string          // language hint passed with every request
	log      *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the subset of *maps.Client used by the provider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// NewGoogleProvider initializes a new GoogleProvider around a Maps client.
func NewGoogleProvider(client GoogleAPIClient, language string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, language: language, log: log}
}

// Geocode looks the address up using the Google Maps Geocoding API.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) ([]models.GeocodeResult, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address, Language: gp.language}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, wrapError(googleName, "geocode", fmt.Errorf("failed to geocode address: %w", err))
	}

	return googleResults(geocodeResponse), nil
}

// ReverseGeocode returns the addresses closest to coords.
func (gp *GoogleProvider) ReverseGeocode(ctx context.Context, coords models.Coordinates) ([]models.GeocodeResult, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "coords", normalize.CoordinateKey(coords))

	req := maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: coords.Latitude, Lng: coords.Longitude},
		Language: gp.language,
	}
	geocodeResponse, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return nil, wrapError(googleName, "reverse geocode", fmt.Errorf("failed to reverse geocode: %w", err))
	}

	return googleResults(geocodeResponse), nil
}

// Route requests directions with alternatives. Each leg becomes a section whose
// polyline is re-encoded from Google's format into a flexible polyline.
func (gp *GoogleProvider) Route(
	ctx context.Context,
	origin, destination models.Coordinates,
	mode TransportMode,
) ([]models.Route, error) {
	travelMode, err := googleTravelMode(mode)
	if err != nil {
		return nil, wrapError(googleName, "route", err)
	}

	req := maps.DirectionsRequest{
		Origin:       normalize.CoordinateKey(origin),
		Destination:  normalize.CoordinateKey(destination),
		Mode:         travelMode,
		Alternatives: true,
		Language:     gp.language,
	}
	directions, _, err := gp.client.Directions(ctx, &req)
	if err != nil {
		return nil, wrapError(googleName, "route", fmt.Errorf("failed to get directions: %w", err))
	}

	routes := make([]models.Route, 0, len(directions))
	for idx, direction := range directions {
		route, errConv := googleRoute(idx, direction, mode)
		if errConv != nil {
			return nil, wrapError(googleName, "route", errConv)
		}
		routes = append(routes, route)
	}

	return tagRoutes(routes, mode), nil
}

func googleResults(response []maps.GeocodingResult) []models.GeocodeResult {
	results := make([]models.GeocodeResult, 0, len(response))
	for _, item := range response {
		location := item.Geometry.Location
		result := models.GeocodeResult{
			Title:      item.FormattedAddress,
			ID:         item.PlaceID,
			ResultType: googleResultType(item.Types),
			Address:    googleAddress(item),
			Position:   &models.Position{Lat: location.Lat, Lng: location.Lng},
		}

		viewport := item.Geometry.Viewport
		if viewport.NorthEast != (maps.LatLng{}) || viewport.SouthWest != (maps.LatLng{}) {
			result.BoundingBox = &models.BoundingBox{
				West:  viewport.SouthWest.Lng,
				South: viewport.SouthWest.Lat,
				East:  viewport.NorthEast.Lng,
				North: viewport.NorthEast.Lat,
			}
		}

		result.FillDefaults()
		results = append(results, result)
	}
	return results
}

func googleAddress(item maps.GeocodingResult) models.Address {
	address := models.Address{Label: item.FormattedAddress}
	for _, component := range item.AddressComponents {
		for _, componentType := range component.Types {
			switch componentType {
			case "country":
				address.CountryName = component.LongName
				address.CountryCode = component.ShortName
			case "administrative_area_level_1":
				address.State = component.LongName
			case "administrative_area_level_2":
				address.County = component.LongName
			case "locality":
				address.City = component.LongName
			case "sublocality", "neighborhood":
				if address.District == "" {
					address.District = component.LongName
				}
			case "route":
				address.Street = component.LongName
			case "postal_code":
				address.PostalCode = component.LongName
			case "street_number":
				address.HouseNumber = component.LongName
			}
		}
	}
	return address
}

func googleResultType(types []string) string {
	for _, t := range types {
		switch t {
		case "street_address", "premise":
			return "houseNumber"
		case "route":
			return "street"
		case "locality", "sublocality", "neighborhood", "postal_code":
			return "locality"
		case "administrative_area_level_1", "administrative_area_level_2", "country":
			return "administrativeArea"
		case "establishment", "point_of_interest":
			return "place"
		}
	}
	return "place"
}

// stepAction maps a directions step onto a HERE action name.
func stepAction(step *maps.Step) string {
	if step.TransitDetails != nil {
		return "board"
	}
	return "continue"
}

func googleRoute(idx int, direction maps.Route, mode TransportMode) (models.Route, error) {
	sections := make([]models.Section, 0, len(direction.Legs))
	for legIdx, leg := range direction.Legs {
		var points []polyline.Point
		actions := make([]models.Action, 0, len(leg.Steps))
		for _, step := range leg.Steps {
			decoded, err := step.Polyline.Decode()
			if err != nil {
				return models.Route{}, fmt.Errorf("failed to decode step polyline: %w", err)
			}
			for _, p := range decoded {
				points = append(points, polyline.Point{Lat: p.Lat, Lng: p.Lng})
			}
			actions = append(actions, models.Action{
				Action:      stepAction(step),
				Duration:    int(step.Duration.Seconds()),
				Length:      step.Distance.Meters,
				Instruction: step.HTMLInstructions,
			})
		}

		encoded, err := polyline.Encode(points, polyline.DefaultPrecision)
		if err != nil {
			return models.Route{}, fmt.Errorf("failed to encode route geometry: %w", err)
		}

		sections = append(sections, models.Section{
			ID:        fmt.Sprintf("section-%d", legIdx),
			Type:      sectionType(mode),
			Transport: models.Transport{Mode: string(mode)},
			Actions:   actions,
			Departure: models.Place{Place: &models.Location{
				Location: models.Position{Lat: leg.StartLocation.Lat, Lng: leg.StartLocation.Lng},
			}},
			Arrival: models.Place{Place: &models.Location{
				Location: models.Position{Lat: leg.EndLocation.Lat, Lng: leg.EndLocation.Lng},
			}},
			Summary: models.SectionSummary{
				Duration: int(leg.Duration.Seconds()),
				Length:   leg.Distance.Meters,
			},
			Polyline: encoded,
		})
	}

	return models.Route{ID: fmt.Sprintf("route-%d", idx), Sections: sections}, nil
}

func googleTravelMode(mode TransportMode) (maps.Mode, error) {
	switch mode {
	case ModePedestrian:
		return maps.TravelModeWalking, nil
	case ModeCar, ModeTaxi, ModeTruck:
		return maps.TravelModeDriving, nil
	case ModeBicycle, ModeScooter:
		return maps.TravelModeBicycling, nil
	case ModeBus, ModePublicTransport:
		return maps.TravelModeTransit, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
}

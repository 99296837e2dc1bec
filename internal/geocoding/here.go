package geocoding

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/normalize"
	"golang.org/x/time/rate"
)

// HERE API endpoints.
const (
	HereGeocodeURL = "https://geocode.search.hereapi.com/v1/geocode"
	HereReverseURL = "https://revgeocode.search.hereapi.com/v1/revgeocode"
	HereRouterURL  = "https://router.hereapi.com/v8/routes"
	HereTransitURL = "https://transit.router.hereapi.com/v8/routes"

	hereName         = "here"
	hereAlternatives = "3"
)

// HereProvider implements the Provider interface using the HERE geocoding and routing APIs.
// The canonical models already follow HERE's shape so responses are decoded directly.
type HereProvider struct {
	fetch      *httpFetcher
	apiKey     string
	language   string
	geocodeURL *url.URL
	reverseURL *url.URL
	routerURL  *url.URL
	transitURL *url.URL
}

type hereItemsResponse struct {
	Items []models.GeocodeResult `json:"items"`
}

type hereRoutesResponse struct {
	Routes []hereRoute `json:"routes"`
}

type hereRoute struct {
	ID       string        `json:"id"`
	Sections []hereSection `json:"sections"`
}

// hereSection is a router or transit section. The transit API reports
// travelSummary where the router reports summary.
type hereSection struct {
	models.Section
	TravelSummary *models.SectionSummary `json:"travelSummary,omitempty"`
}

// NewHereProvider creates a new HERE provider with its own HTTP client and rate limiter.
func NewHereProvider(apiKey, language string, rateLimit int, timeout time.Duration, log *slog.Logger) *HereProvider {
	return NewHereProviderWithClient(newHTTPClient(timeout), apiKey, language, newLimiter(rateLimit), log)
}

// NewHereProviderWithClient allows injecting custom HTTP client.
func NewHereProviderWithClient(
	client HTTPClient,
	apiKey, language string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *HereProvider {
	return &HereProvider{
		fetch: &httpFetcher{
			name:    hereName,
			client:  client,
			limiter: limiter,
			log:     log,
		},
		apiKey:     apiKey,
		language:   language,
		geocodeURL: mustParseURL(HereGeocodeURL),
		reverseURL: mustParseURL(HereReverseURL),
		routerURL:  mustParseURL(HereRouterURL),
		transitURL: mustParseURL(HereTransitURL),
	}
}

// Geocode looks the address up and returns up to ten matches.
func (hp *HereProvider) Geocode(ctx context.Context, address string) ([]models.GeocodeResult, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	hp.fetch.log.DebugContext(ctx, "Geocoding using HERE", "address", address)

	reqURL := withQuery(hp.geocodeURL, url.Values{
		"q":      {address},
		"lang":   {hp.language},
		"limit":  {resultsLimit},
		"apiKey": {hp.apiKey},
	})

	var resp hereItemsResponse
	if err := hp.fetch.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, wrapError(hereName, "geocode", err)
	}

	return fillResults(resp.Items), nil
}

// ReverseGeocode returns the addresses closest to coords.
func (hp *HereProvider) ReverseGeocode(ctx context.Context, coords models.Coordinates) ([]models.GeocodeResult, error) {
	hp.fetch.log.DebugContext(ctx, "Reverse geocoding using HERE", "coords", normalize.CoordinateKey(coords))

	reqURL := withQuery(hp.reverseURL, url.Values{
		"at":     {normalize.CoordinateKey(coords)},
		"lang":   {hp.language},
		"apiKey": {hp.apiKey},
	})

	var resp hereItemsResponse
	if err := hp.fetch.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, wrapError(hereName, "reverse geocode", err)
	}

	return fillResults(resp.Items), nil
}

// Route requests up to three alternatives for one transport mode.
// Public transport goes to the transit router, every other mode to the vehicle router.
func (hp *HereProvider) Route(
	ctx context.Context,
	origin, destination models.Coordinates,
	mode TransportMode,
) ([]models.Route, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, wrapError(hereName, "route", err)
	}

	params := url.Values{
		"origin":       {normalize.CoordinateKey(origin)},
		"destination":  {normalize.CoordinateKey(destination)},
		"alternatives": {hereAlternatives},
		"lang":         {hp.language},
		"apiKey":       {hp.apiKey},
	}

	base := hp.routerURL
	if mode == ModePublicTransport {
		base = hp.transitURL
		params.Set("return", "polyline,actions,travelSummary")
		params.Set("departureTime", "any")
	} else {
		params.Set("transportMode", string(mode))
		params.Set("return", "summary,polyline")
	}

	var resp hereRoutesResponse
	if err := hp.fetch.getJSON(ctx, withQuery(base, params), &resp); err != nil {
		return nil, wrapError(hereName, "route", err)
	}

	routes := make([]models.Route, 0, len(resp.Routes))
	for _, route := range resp.Routes {
		sections := make([]models.Section, 0, len(route.Sections))
		for _, section := range route.Sections {
			canonical := section.Section
			if section.TravelSummary != nil && canonical.Summary == (models.SectionSummary{}) {
				canonical.Summary = *section.TravelSummary
			}
			sections = append(sections, canonical)
		}
		routes = append(routes, models.Route{ID: route.ID, Sections: sections})
	}

	return tagRoutes(routes, mode), nil
}

func fillResults(items []models.GeocodeResult) []models.GeocodeResult {
	if items == nil {
		return []models.GeocodeResult{}
	}
	for i := range items {
		items[i].FillDefaults()
	}
	return items
}

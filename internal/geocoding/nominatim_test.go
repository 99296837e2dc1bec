package geocoding_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/polyline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newNominatim(client geocoding.HTTPClient) *geocoding.NominatimProvider {
	return geocoding.NewNominatimProviderWithClient(client, "bg", rate.NewLimiter(rate.Inf, 0), slog.Default())
}

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org/search")
				assert.Equal(t, "1600 Amphitheatre Parkway, Mountain View, CA", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "10", req.URL.Query().Get("limit"))
				assert.Equal(
					t,
					"Hermes-Geocoding-Proxy/1.0 (https://github.com/UnknownOlympus/hermes)",
					req.Header.Get("User-Agent"),
				)
				assert.Equal(t, "bg", req.Header.Get("Accept-Language"))

				return jsonResponse(http.StatusOK, `[{
					"place_id": 123,
					"lat": "37.4224764",
					"lon": "-122.0842499",
					"display_name": "Google Building 41, 1600, Amphitheatre Parkway, Mountain View",
					"addresstype": "building",
					"boundingbox": ["37.42", "37.43", "-122.09", "-122.08"],
					"address": {"road": "Amphitheatre Parkway", "town": "Mountain View", "country_code": "us", "house_number": "1600"}
				}]`), nil
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "1600 Amphitheatre Parkway, Mountain View, CA")

		require.NoError(t, err)
		require.Len(t, results, 1)
		result := results[0]
		assert.Equal(t, "123", result.ID)
		assert.Equal(t, "houseNumber", result.ResultType)
		assert.Equal(t, "Mountain View", result.Address.City)
		assert.Equal(t, "US", result.Address.CountryCode)
		assert.InEpsilon(t, 37.4224764, result.Position.Lat, 0.0001)
		assert.InEpsilon(t, -122.0842499, result.Position.Lng, 0.0001)
		require.NotNil(t, result.BoundingBox)
		assert.InEpsilon(t, 37.43, result.BoundingBox.North, 1e-9)
		assert.InEpsilon(t, -122.09, result.BoundingBox.West, 1e-9)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`), nil
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, results)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `invalid json`), nil
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, results)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"invalid","lon":"-122.0842499"}]`), nil
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "some address")

		require.Nil(t, results)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"37.4224764","lon":"invalid"}]`), nil
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "some address")

		require.Nil(t, results)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "some address")

		require.Nil(t, results)
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to execute nominatim request")
	})

	t.Run("context cancellation", func(t *testing.T) {
		newCtx, cancel := context.WithCancel(context.Background())
		cancel()

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, req.Context().Err()
			},
		}

		results, err := newNominatim(mockClient).Geocode(newCtx, "some address")

		require.Error(t, err)
		require.Nil(t, results)
	})
}

func TestNominatimProvider_AddressFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("fallback to village name when full address fails", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				requestCount++
				switch query := req.URL.Query().Get("q"); query {
				case "с. Бистрица, ул. Първа, 3", "с. Бистрица, ул. Първа":
					return jsonResponse(http.StatusOK, `[]`), nil
				case "с. Бистрица":
					return jsonResponse(http.StatusOK, `[{"lat":"42.5831","lon":"23.3620"}]`), nil
				default:
					t.Fatalf("Unexpected query: %s", query)
					return nil, assert.AnError
				}
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "с. Бистрица, ул. Първа, 3")

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.InEpsilon(t, 42.5831, results[0].Position.Lat, 0.0001)
		assert.InEpsilon(t, 23.3620, results[0].Position.Lng, 0.0001)
		assert.Equal(t, 3, requestCount, "should try 3 fallback levels")
	})

	t.Run("success on first try with full address", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusOK, `[{"lat":"42.6977","lon":"23.3219"}]`), nil
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "София, бул. Витоша, 1")

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 1, requestCount, "should succeed on first try")
	})

	t.Run("all fallbacks empty is an empty result", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "с. Несъществуващо, ул. Няма, 999")

		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
		assert.Equal(t, 3, requestCount)
	})

	t.Run("single-part address no fallback", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusOK, `[{"lat":"42.1354","lon":"24.7453"}]`), nil
			},
		}

		results, err := newNominatim(mockClient).Geocode(ctx, "Пловдив")

		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, 1, requestCount, "single-part address should only try once")
	})
}

func TestNominatimProvider_ReverseGeocode(t *testing.T) {
	ctx := t.Context()
	coords := models.Coordinates{Latitude: 42.6977, Longitude: 23.3219}

	t.Run("single object result", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Contains(t, req.URL.Path, "/reverse")
				assert.Equal(t, "42.6977", req.URL.Query().Get("lat"))
				assert.Equal(t, "23.3219", req.URL.Query().Get("lon"))
				return jsonResponse(http.StatusOK,
					`{"place_id": 9, "lat": "42.6977", "lon": "23.3219", "display_name": "Sofia", "addresstype": "city"}`), nil
			},
		}

		results, err := newNominatim(mockClient).ReverseGeocode(ctx, coords)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "locality", results[0].ResultType)
	})

	t.Run("unable to geocode", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"error": "Unable to geocode"}`), nil
			},
		}

		results, err := newNominatim(mockClient).ReverseGeocode(ctx, coords)

		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestNominatimProvider_Route(t *testing.T) {
	ctx := t.Context()
	origin := models.Coordinates{Latitude: 42.6951, Longitude: 23.3219}
	destination := models.Coordinates{Latitude: 42.7001, Longitude: 23.3301}

	t.Run("osrm route", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "router.project-osrm.org", req.URL.Host)
				assert.Equal(t, "/route/v1/foot/23.3219,42.6951;23.3301,42.7001", req.URL.Path)
				assert.Equal(t, "geojson", req.URL.Query().Get("geometries"))
				return jsonResponse(http.StatusOK, `{
					"code": "Ok",
					"routes": [{"distance": 1300.7, "duration": 950.2,
						"geometry": {"type": "LineString", "coordinates": [[23.3219, 42.6951], [23.3301, 42.7001]]}}]
				}`), nil
			},
		}

		routes, err := newNominatim(mockClient).Route(ctx, origin, destination, geocoding.ModePedestrian)

		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, "pedestrian", routes[0].TransportMode)
		assert.Equal(t, 1300, routes[0].Sections[0].Summary.Length)

		points, err := polyline.Decode(routes[0].Sections[0].Polyline)
		require.NoError(t, err)
		assert.Len(t, points, 2)
	})

	t.Run("no route", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"code": "NoRoute", "routes": []}`), nil
			},
		}

		routes, err := newNominatim(mockClient).Route(ctx, origin, destination, geocoding.ModeCar)

		require.NoError(t, err)
		assert.Empty(t, routes)
	})

	t.Run("unsupported profile", func(t *testing.T) {
		_, err := newNominatim(&mockHTTPClient{}).Route(ctx, origin, destination, geocoding.ModePublicTransport)

		require.ErrorIs(t, err, geocoding.ErrUnsupportedMode)
	})
}

func TestNewNominatimProvider(t *testing.T) {
	provider := geocoding.NewNominatimProvider("bg", 0, slog.Default())

	require.NotNil(t, provider)
}

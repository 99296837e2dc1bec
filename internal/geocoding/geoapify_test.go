package geocoding_test

import (
	"errors"
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

const geoapifyGeocodeBody = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {
        "formatted": "ulitsa Vitosha 1, 1000 Sofia, Bulgaria",
        "place_id": "51abc",
        "result_type": "building",
        "country_code": "bg",
        "country": "Bulgaria",
        "state": "Sofia City",
        "city": "Sofia",
        "suburb": "Sredets",
        "street": "ulitsa Vitosha",
        "postcode": "1000",
        "housenumber": "1",
        "lat": 42.6951,
        "lon": 23.3219
      },
      "geometry": {"type": "Point", "coordinates": [23.3219, 42.6951]},
      "bbox": [23.3210, 42.6940, 23.3230, 42.6960]
    },
    {
      "type": "Feature",
      "properties": {"formatted": "Sofia, Bulgaria", "place_id": "51def", "result_type": "city"},
      "geometry": {"type": "Point", "coordinates": [23.3219, 42.6977]}
    }
  ]
}`

const geoapifyRouteBody = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"mode": "walk", "distance": 1250, "time": 905.4, "legs": [{"distance": 1250, "time": 905.4}]},
      "geometry": {"type": "MultiLineString", "coordinates": [[[23.3219, 42.6951], [23.3225, 42.6960], [23.3301, 42.7001]]]}
    }
  ]
}`

func newGeoapify(client geocoding.HTTPClient) *geocoding.GeoapifyProvider {
	return geocoding.NewGeoapifyProviderWithClient(client, "secret", "bg", rate.NewLimiter(rate.Inf, 0), slog.Default())
}

func TestGeoapifyProvider_Geocode(t *testing.T) {
	ctx := t.Context()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Equal(t, "api.geoapify.com", req.URL.Host)
				assert.Equal(t, "/v1/geocode/search", req.URL.Path)
				query := req.URL.Query()
				assert.Equal(t, "ул. Витоша 1", query.Get("text"))
				assert.Equal(t, "bg", query.Get("lang"))
				assert.Equal(t, "10", query.Get("limit"))
				assert.Equal(t, "geojson", query.Get("format"))
				assert.Equal(t, "secret", query.Get("apiKey"))
				return jsonResponse(http.StatusOK, geoapifyGeocodeBody), nil
			},
		}

		results, err := newGeoapify(mockClient).Geocode(ctx, "ул. Витоша 1")

		require.NoError(t, err)
		require.Len(t, results, 2)

		first := results[0]
		assert.Equal(t, "ulitsa Vitosha 1, 1000 Sofia, Bulgaria", first.Title)
		assert.Equal(t, "51abc", first.ID)
		assert.Equal(t, "houseNumber", first.ResultType)
		assert.Equal(t, "Sredets", first.Address.District)
		assert.Equal(t, "1000", first.Address.PostalCode)
		require.NotNil(t, first.Position)
		assert.InEpsilon(t, 42.6951, first.Position.Lat, 1e-9)
		require.NotNil(t, first.BoundingBox)
		assert.InEpsilon(t, 23.3210, first.BoundingBox.West, 1e-9)
		assert.InEpsilon(t, 42.6960, first.BoundingBox.North, 1e-9)
		assert.Empty(t, first.AccessPoints)

		second := results[1]
		assert.Equal(t, "locality", second.ResultType)
		require.NotNil(t, second.Position, "position taken from point geometry")
		assert.InEpsilon(t, 42.6977, second.Position.Lat, 1e-9)
		require.NotNil(t, second.BoundingBox, "missing bbox is synthesized")
		assert.InEpsilon(t, 42.7077, second.BoundingBox.North, 1e-9)
	})

	t.Run("empty feature collection", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"type":"FeatureCollection","features":[]}`), nil
			},
		}

		results, err := newGeoapify(mockClient).Geocode(ctx, "nowhere")

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty address", func(t *testing.T) {
		_, err := newGeoapify(&mockHTTPClient{}).Geocode(ctx, "")

		require.ErrorIs(t, err, geocoding.ErrEmptyAddress)
	})

	t.Run("unauthorized", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusUnauthorized, `{"message":"Invalid apiKey"}`), nil
			},
		}

		_, err := newGeoapify(mockClient).Geocode(ctx, "Sofia")

		require.ErrorIs(t, err, geocoding.ErrUnauthorized)
		var providerErr *geocoding.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, "geoapify", providerErr.Provider)
		assert.Contains(t, err.Error(), "Invalid apiKey")
	})

	t.Run("server error carries upstream text", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusInternalServerError, "upstream exploded"), nil
			},
		}

		_, err := newGeoapify(mockClient).Geocode(ctx, "Sofia")

		var providerErr *geocoding.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Contains(t, err.Error(), "geoapify API returned status 500: upstream exploded")
	})

	t.Run("network error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
		}

		_, err := newGeoapify(mockClient).Geocode(ctx, "Sofia")

		var providerErr *geocoding.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("invalid json", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"features": [`), nil
			},
		}

		_, err := newGeoapify(mockClient).Geocode(ctx, "Sofia")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode geoapify response")
	})
}

func TestGeoapifyProvider_ReverseGeocode(t *testing.T) {
	mockClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "/v1/geocode/reverse", req.URL.Path)
			assert.Equal(t, "42.6951", req.URL.Query().Get("lat"))
			assert.Equal(t, "23.3219", req.URL.Query().Get("lon"))
			return jsonResponse(http.StatusOK, geoapifyGeocodeBody), nil
		},
	}

	results, err := newGeoapify(mockClient).ReverseGeocode(t.Context(), models.Coordinates{Latitude: 42.6951, Longitude: 23.3219})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestGeoapifyProvider_Route(t *testing.T) {
	ctx := t.Context()
	origin := models.Coordinates{Latitude: 42.6951, Longitude: 23.3219}
	destination := models.Coordinates{Latitude: 42.7001, Longitude: 23.3301}

	t.Run("pedestrian route", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "/v1/routing", req.URL.Path)
				assert.Equal(t, "42.6951,23.3219|42.7001,23.3301", req.URL.Query().Get("waypoints"))
				assert.Equal(t, "walk", req.URL.Query().Get("mode"))
				return jsonResponse(http.StatusOK, geoapifyRouteBody), nil
			},
		}

		routes, err := newGeoapify(mockClient).Route(ctx, origin, destination, geocoding.ModePedestrian)

		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, "pedestrian", routes[0].TransportMode)
		require.Len(t, routes[0].Sections, 1)

		section := routes[0].Sections[0]
		assert.Equal(t, "section-0", section.ID)
		assert.Equal(t, "pedestrian", section.Type)
		assert.Equal(t, 905, section.Summary.Duration)
		assert.Equal(t, 1250, section.Summary.Length)
		assert.NotNil(t, section.Actions)
		assert.Empty(t, section.Departure.Time)

		points, err := polyline.Decode(section.Polyline)
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.InDelta(t, 42.6951, points[0].Lat, 1e-5)
		assert.InDelta(t, 23.3301, points[2].Lng, 1e-5)
	})

	t.Run("mode mapping", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "drive", req.URL.Query().Get("mode"))
				return jsonResponse(http.StatusOK, geoapifyRouteBody), nil
			},
		}

		routes, err := newGeoapify(mockClient).Route(ctx, origin, destination, geocoding.ModeTaxi)

		require.NoError(t, err)
		assert.Equal(t, "taxi", routes[0].TransportMode)
		assert.Equal(t, "vehicle", routes[0].Sections[0].Type)
	})

	t.Run("unknown mode never reaches upstream", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("unexpected upstream call")
				return nil, nil
			},
		}

		_, err := newGeoapify(mockClient).Route(ctx, origin, destination, geocoding.TransportMode("rocket"))

		require.ErrorIs(t, err, geocoding.ErrUnsupportedMode)
	})

	t.Run("upstream error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadRequest, `{"message":"Points are too far"}`), nil
			},
		}

		_, err := newGeoapify(mockClient).Route(ctx, origin, destination, geocoding.ModeCar)

		var providerErr *geocoding.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, "route", providerErr.Op)
		assert.Contains(t, err.Error(), "Points are too far")
	})
}

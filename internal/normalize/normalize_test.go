package normalize_test

import (
	"math"
	"testing"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "софия, ул. витоша 1", normalize.Address("София, ул. Витоша 1"))
	assert.Equal(t, "  padded  ", normalize.Address("  Padded  "), "whitespace is significant for addresses")
	assert.Equal(t, normalize.Address("VITOSHA"), normalize.Key("vitosha", normalize.KindAddress))
}

func TestPOI(t *testing.T) {
	t.Parallel()

	t.Run("quotes case and spacing collapse to one key", func(t *testing.T) {
		t.Parallel()
		want := "дг №7 детелина"

		assert.Equal(t, want, normalize.POI(`  ДГ №7 "Детелина"  `))
		assert.Equal(t, want, normalize.POI("дг №7 детелина"))
		assert.Equal(t, want, normalize.POI("ДГ   №7\t\"детелина\""))
	})

	t.Run("key dispatch", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a b", normalize.Key(` "A"   B `, normalize.KindPOI))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, normalize.POI(`  "" `))
	})
}

func TestCoordinateKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42.6977,23.3219", normalize.CoordinateKey(models.Coordinates{Latitude: 42.6977, Longitude: 23.3219}))
	assert.Equal(t, "42,-23.5", normalize.CoordinateKey(models.Coordinates{Latitude: 42, Longitude: -23.5}))
	assert.Equal(t,
		"42.123456789,23.987654321",
		normalize.CoordinateKey(models.Coordinates{Latitude: 42.123456789, Longitude: 23.987654321}),
		"no rounding is applied",
	)
}

func TestRouteKey(t *testing.T) {
	t.Parallel()

	origin := models.Coordinates{Latitude: 42.69, Longitude: 23.32}
	destination := models.Coordinates{Latitude: 42.7, Longitude: 23.33}

	assert.Equal(t, "42.69,23.32,42.7,23.33|pedestrian", normalize.RouteKey(origin, destination, "pedestrian"))
	assert.NotEqual(t,
		normalize.RouteKey(origin, destination, "car"),
		normalize.RouteKey(origin, destination, "pedestrian"),
	)
}

func TestReverseKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42.697700,23.321900", normalize.ReverseKey(models.Coordinates{Latitude: 42.6977, Longitude: 23.3219}))
	assert.Equal(t,
		normalize.ReverseKey(models.Coordinates{Latitude: 42.69770001, Longitude: 23.3219}),
		normalize.ReverseKey(models.Coordinates{Latitude: 42.6977, Longitude: 23.32190004}),
	)
}

func TestParseCoordinates(t *testing.T) {
	t.Parallel()

	t.Run("valid pair", func(t *testing.T) {
		t.Parallel()
		coords, err := normalize.ParseCoordinates("42.6977, 23.3219")

		require.NoError(t, err)
		assert.InDelta(t, 42.6977, coords.Latitude, 1e-9)
		assert.InDelta(t, 23.3219, coords.Longitude, 1e-9)
		assert.True(t, normalize.LooksLikeCoordinates("42.6977,23.3219"))
	})

	t.Run("name is not a pair", func(t *testing.T) {
		t.Parallel()
		_, err := normalize.ParseCoordinates(`ДГ №7 "Детелина"`)

		require.ErrorIs(t, err, normalize.ErrMalformedCoordinates)
		assert.False(t, normalize.LooksLikeCoordinates("ДГ №7, Детелина"))
	})

	t.Run("three parts", func(t *testing.T) {
		t.Parallel()
		_, err := normalize.ParseCoordinates("1,2,3")

		require.ErrorIs(t, err, normalize.ErrMalformedCoordinates)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Parallel()
		_, err := normalize.ParseCoordinates("91,23")

		require.ErrorIs(t, err, normalize.ErrCoordinateRange)
	})

	t.Run("not a number", func(t *testing.T) {
		t.Parallel()
		_, err := normalize.ParseCoordinates("NaN,NaN")

		require.ErrorIs(t, err, normalize.ErrCoordinateRange)
		assert.False(t, normalize.LooksLikeCoordinates("42.69,NaN"))
	})

	t.Run("infinite", func(t *testing.T) {
		t.Parallel()
		_, err := normalize.ParseCoordinates("+Inf,23.32")

		require.ErrorIs(t, err, normalize.ErrCoordinateRange)
	})
}

func TestValidateCoordinates(t *testing.T) {
	t.Parallel()

	assert.NoError(t, normalize.ValidateCoordinates(models.Coordinates{Latitude: -90, Longitude: 180}))
	assert.ErrorIs(t, normalize.ValidateCoordinates(
		models.Coordinates{Latitude: math.NaN(), Longitude: 23.32}), normalize.ErrCoordinateRange)
	assert.ErrorIs(t, normalize.ValidateCoordinates(
		models.Coordinates{Latitude: 42.69, Longitude: math.Inf(-1)}), normalize.ErrCoordinateRange)
}

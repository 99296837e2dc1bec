package geocoding_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

// jsonResponse builds a canned response with the given status and body.
func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestParseModes(t *testing.T) {
	t.Parallel()

	t.Run("valid modes keep order and drop duplicates", func(t *testing.T) {
		t.Parallel()
		modes, err := geocoding.ParseModes([]string{"car", " pedestrian", "car", "publicTransport"})

		require.NoError(t, err)
		assert.Equal(t, []geocoding.TransportMode{
			geocoding.ModeCar, geocoding.ModePedestrian, geocoding.ModePublicTransport,
		}, modes)
	})

	t.Run("invalid modes are listed together", func(t *testing.T) {
		t.Parallel()
		_, err := geocoding.ParseModes([]string{"car", "rocket", "horse"})

		require.ErrorIs(t, err, geocoding.ErrUnsupportedMode)
		assert.Contains(t, err.Error(), "rocket, horse")
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		modes, err := geocoding.ParseModes(geocoding.SplitModes(""))

		require.NoError(t, err)
		assert.Empty(t, modes)
	})

	t.Run("query string list", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"car", "bus"}, geocoding.SplitModes("car,bus"))
	})

	t.Run("every documented mode parses", func(t *testing.T) {
		t.Parallel()
		for _, mode := range geocoding.AllModes() {
			parsed, err := geocoding.ParseMode(string(mode))
			require.NoError(t, err)
			assert.Equal(t, mode, parsed)
		}
	})
}

func TestProviderError(t *testing.T) {
	t.Parallel()

	err := &geocoding.ProviderError{Provider: "here", Op: "geocode", Err: assert.AnError}

	assert.Equal(t, "here geocode: "+assert.AnError.Error(), err.Error())
	require.ErrorIs(t, err, assert.AnError)

	var target *geocoding.ProviderError
	require.True(t, errors.As(error(err), &target))
	assert.Equal(t, "here", target.Provider)
}

// Package debuggeo builds the GeoJSON payload returned next to geocoding results
// so callers can eyeball where the matches landed.
package debuggeo

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultBoundaryCode selects the Sofia municipality in the bundled file.
const DefaultBoundaryCode = "SOF"

//go:embed municipalities.geojson
var embeddedMunicipalities []byte

// ErrBoundaryNotFound is returned when no feature matches the requested code.
var ErrBoundaryNotFound = errors.New("boundary not found")

// LoadBoundary reads a municipalities FeatureCollection (the bundled one when path is empty)
// and returns the first feature whose "nuts4" property contains code.
func LoadBoundary(path, code string) (*geojson.Feature, error) {
	data := embeddedMunicipalities
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read boundary file: %w", err)
		}
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode boundary file: %w", err)
	}

	for _, f := range fc.Features {
		if strings.Contains(f.Properties.MustString("nuts4", ""), code) {
			return f, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrBoundaryNotFound, code)
}

// Builder assembles debug feature collections around a fixed seed feature.
type Builder struct {
	seed *geojson.Feature
}

// NewBuilder creates a builder. A nil seed produces collections with point features only.
func NewBuilder(seed *geojson.Feature) *Builder {
	return &Builder{seed: seed}
}

// Build returns the seed feature followed by one Point per result position, in input order.
// Results without a position are skipped.
func (b *Builder) Build(results []models.GeocodeResult) *geojson.FeatureCollection {
	fc := b.New()
	b.Append(fc, results)
	return fc
}

// New returns a collection holding only the seed feature.
func (b *Builder) New() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if b.seed != nil {
		fc.Append(b.seed)
	}
	return fc
}

// Append adds one Point per result position to fc.
func (b *Builder) Append(fc *geojson.FeatureCollection, results []models.GeocodeResult) {
	for _, r := range results {
		if r.Position == nil {
			continue
		}
		fc.Append(geojson.NewFeature(orb.Point{r.Position.Lng, r.Position.Lat}))
	}
}

// Package reference loads the named points of interest that can be used as route destinations.
package reference

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/normalize"
)

//go:embed pois.json
var embeddedDataset []byte

var (
	ErrEmptyName      = errors.New("point of interest has no name")
	ErrDuplicateEntry = errors.New("duplicate point of interest")
)

// Seeder is the part of the store that accepts reference data.
type Seeder interface {
	SeedPOIs(ctx context.Context, pois []models.PointOfInterest) error
}

type entry struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Load reads the dataset at path, or the bundled one when path is empty.
func Load(path string) ([]models.PointOfInterest, error) {
	if path == "" {
		return Parse(embeddedDataset)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read points of interest file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a JSON array of {name, address, lat, lng} objects.
// Every entry is keyed by its normalized name, and two names that normalize to the same key are rejected.
func Parse(data []byte) ([]models.PointOfInterest, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode points of interest: %w", err)
	}

	seen := make(map[string]string, len(entries))
	pois := make([]models.PointOfInterest, 0, len(entries))
	for i, e := range entries {
		key := normalize.POI(e.Name)
		if key == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyName)
		}
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("entry %d %q collides with %q: %w", i, e.Name, prev, ErrDuplicateEntry)
		}

		coords := models.Coordinates{Latitude: e.Lat, Longitude: e.Lng}
		if err := normalize.ValidateCoordinates(coords); err != nil {
			return nil, fmt.Errorf("entry %d %q: %w", i, e.Name, err)
		}

		seen[key] = e.Name
		pois = append(pois, models.PointOfInterest{
			Key:         key,
			Name:        e.Name,
			Address:     e.Address,
			Coordinates: coords,
		})
	}

	return pois, nil
}

// Seed writes pois to the store.
func Seed(ctx context.Context, store Seeder, pois []models.PointOfInterest) error {
	if len(pois) == 0 {
		return nil
	}
	if err := store.SeedPOIs(ctx, pois); err != nil {
		return fmt.Errorf("failed to seed points of interest: %w", err)
	}
	return nil
}

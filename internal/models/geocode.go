package models

// DefaultBoundingBoxPadding is the half-size in degrees of a bounding box synthesized
// around a result position when the provider does not report one.
const DefaultBoundingBoxPadding = 0.01

// Position is a latitude/longitude pair as it appears in geocode results.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Coordinates converts the position back to a Coordinates value.
func (p Position) Coordinates() Coordinates {
	return Coordinates{Latitude: p.Lat, Longitude: p.Lng}
}

// BoundingBox is the viewport of a geocode result.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// PadBoundingBox builds a bounding box of +/- padding degrees around the position.
func PadBoundingBox(pos Position, padding float64) *BoundingBox {
	return &BoundingBox{
		West:  pos.Lng - padding,
		South: pos.Lat - padding,
		East:  pos.Lng + padding,
		North: pos.Lat + padding,
	}
}

// Address holds the structured parts of a geocoded address. Every field is optional.
type Address struct {
	Label       string `json:"label,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	CountryName string `json:"countryName,omitempty"`
	State       string `json:"state,omitempty"`
	County      string `json:"county,omitempty"`
	City        string `json:"city,omitempty"`
	District    string `json:"district,omitempty"`
	Street      string `json:"street,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	HouseNumber string `json:"houseNumber,omitempty"`
}

// GeocodeResult is the canonical shape of one geocoding match.
// Field names on the wire follow the HERE geocoder so clients written
// against it keep working regardless of the configured upstream.
type GeocodeResult struct {
	Title        string       `json:"title"`
	ID           string       `json:"id"`
	ResultType   string       `json:"resultType"`
	Address      Address      `json:"address"`
	Position     *Position    `json:"position,omitempty"`
	AccessPoints []Position   `json:"access"`
	BoundingBox  *BoundingBox `json:"mapView,omitempty"`
}

// FillDefaults synthesizes a padded bounding box when the result has a position but no box,
// and replaces a nil access point list with an empty one.
func (r *GeocodeResult) FillDefaults() {
	if r.AccessPoints == nil {
		r.AccessPoints = []Position{}
	}
	if r.BoundingBox == nil && r.Position != nil {
		r.BoundingBox = PadBoundingBox(*r.Position, DefaultBoundingBoxPadding)
	}
}

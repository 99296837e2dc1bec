package models

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 `json:"lat"` // Latitude of the geographical point.
	Longitude float64 `json:"lng"` // Longitude of the geographical point.
}

// Position converts the coordinates into the position shape used by geocode results.
func (c Coordinates) Position() *Position {
	return &Position{Lat: c.Latitude, Lng: c.Longitude}
}

// Pair returns the coordinates as a [lat, lng] pair, the shape accepted in batch route bodies.
func (c Coordinates) Pair() [2]float64 {
	return [2]float64{c.Latitude, c.Longitude}
}

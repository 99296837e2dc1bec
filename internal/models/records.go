package models

// AddressRecord is a cached geocoding answer keyed by the normalized address.
type AddressRecord struct {
	Key   string          `json:"key"`
	Items []GeocodeResult `json:"items"`
}

// RouteRecord is a cached routing answer for one origin, destination and transport mode.
type RouteRecord struct {
	Key         string      `json:"key"`
	Origin      Coordinates `json:"origin"`
	Destination Coordinates `json:"destination"`
	Mode        string      `json:"mode"`
	Routes      []Route     `json:"routes"`
}

// ReverseRecord is a cached reverse geocoding answer keyed by rounded coordinates.
type ReverseRecord struct {
	Key   string          `json:"key"`
	Items []GeocodeResult `json:"items"`
}

// PointOfInterest is a named reference location that can be used as a route destination.
type PointOfInterest struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Address     string      `json:"address,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

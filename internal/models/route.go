package models

// Route is one routing alternative between two points.
type Route struct {
	ID            string    `json:"id,omitempty"`
	TransportMode string    `json:"transportMode"`
	Sections      []Section `json:"sections"`
}

// Section is a single leg of a route travelled with one mode.
type Section struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Transport Transport      `json:"transport"`
	Actions   []Action       `json:"actions"`
	Departure Place          `json:"departure"`
	Arrival   Place          `json:"arrival"`
	Summary   SectionSummary `json:"summary"`
	Polyline  string         `json:"polyline"`
}

// Transport names the mode a section is travelled with.
type Transport struct {
	Mode string `json:"mode"`
}

// Action is a manoeuvre instruction. Providers that do not return instructions leave the list empty.
type Action struct {
	Action      string `json:"action"`
	Duration    int    `json:"duration"`
	Length      int    `json:"length,omitempty"`
	Instruction string `json:"instruction,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// Place is a departure or arrival point. Time is empty when the provider has no schedule.
type Place struct {
	Time  string    `json:"time"`
	Place *Location `json:"place,omitempty"`
}

// Location wraps the coordinates of a departure or arrival place.
type Location struct {
	Type     string   `json:"type,omitempty"`
	Location Position `json:"location"`
}

// SectionSummary holds the duration in seconds and the length in meters of a section.
type SectionSummary struct {
	Duration int `json:"duration"`
	Length   int `json:"length"`
}

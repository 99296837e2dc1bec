// Package mapview renders an encoded route polyline as a self-contained Leaflet map fragment.
package mapview

import (
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/UnknownOlympus/hermes/internal/polyline"
	"github.com/paulmach/orb"
	"googlemaps.github.io/maps"
)

// Format selects the polyline encoding of the input.
type Format string

const (
	// FormatFlexible is the HERE flexible polyline produced by every route in this service.
	FormatFlexible Format = "flexible"
	// FormatGoogle is the classic Google encoded polyline algorithm.
	FormatGoogle Format = "google"
)

var (
	ErrNoPoints      = errors.New("polyline has no points")
	ErrUnknownFormat = errors.New("unknown polyline format")
)

const routeWeight = 5

var mapTemplate = template.Must(template.New("map").Parse(`<div id="{{.ID}}" style="width: 100%; height: 100%; min-height: 480px;"></div>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script>
(function () {
	var points = {{.Points}};
	var map = L.map({{.ID}});
	L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
		attribution: "&copy; OpenStreetMap contributors"
	}).addTo(map);
	L.circleMarker(points[0], {color: "red", radius: 8}).bindTooltip("start").addTo(map);
	L.circleMarker(points[points.length - 1], {color: "blue", radius: 8}).bindTooltip("end").addTo(map);
	L.polyline(points, {weight: {{.Weight}}, opacity: 1}).addTo(map);
	map.fitBounds([{{.SouthWest}}, {{.NorthEast}}]);
})();
</script>
`))

type view struct {
	ID        string
	Points    [][2]float64
	SouthWest [2]float64
	NorthEast [2]float64
	Weight    int
}

// ParseFormat maps the optional "format" query value. Empty means flexible.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatFlexible:
		return FormatFlexible, nil
	case FormatGoogle:
		return FormatGoogle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Decode turns an encoded polyline into points.
func Decode(encoded string, format Format) ([]polyline.Point, error) {
	switch format {
	case FormatGoogle:
		latLngs, err := maps.DecodePolyline(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode google polyline: %w", err)
		}
		points := make([]polyline.Point, 0, len(latLngs))
		for _, ll := range latLngs {
			points = append(points, polyline.Point{Lat: ll.Lat, Lng: ll.Lng})
		}
		if len(points) == 0 {
			return nil, ErrNoPoints
		}
		return points, nil
	case FormatFlexible:
		return polyline.Decode(encoded)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Render writes the map fragment: start and end markers, the route line and bounds fitted to it.
func Render(w io.Writer, points []polyline.Point) error {
	if len(points) == 0 {
		return ErrNoPoints
	}

	line := make(orb.LineString, 0, len(points))
	pairs := make([][2]float64, 0, len(points))
	for _, p := range points {
		line = append(line, orb.Point{p.Lng, p.Lat})
		pairs = append(pairs, [2]float64{p.Lat, p.Lng})
	}
	bound := line.Bound()

	v := view{
		ID:        "hermes-map",
		Points:    pairs,
		SouthWest: [2]float64{bound.Min.Lat(), bound.Min.Lon()},
		NorthEast: [2]float64{bound.Max.Lat(), bound.Max.Lon()},
		Weight:    routeWeight,
	}

	if err := mapTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}
	return nil
}

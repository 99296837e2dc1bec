package server

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/UnknownOlympus/hermes/internal/apperr"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/normalize"
	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb/geojson"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	return v
}

// validateStruct runs the struct tags and turns the first violation into a MalformedInput error.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.MalformedInput("request", err.Error())
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return apperr.MissingField(fe.Field())
	}
	return apperr.MalformedInput(fe.Field(), "failed "+fe.Tag()+" check")
}

type errorResponse struct {
	Error string `json:"error"`
}

type geocodeQuery struct {
	Address string `query:"address" validate:"required"`
}

type geocodeResponse struct {
	Items []models.GeocodeResult      `json:"items"`
	Debug *geojson.FeatureCollection `json:"debug"`
}

type addressItem struct {
	Address string                 `json:"address" validate:"required"`
	Items   []models.GeocodeResult `json:"items"`
}

type geocodeBatchRequest struct {
	JSON []addressItem `json:"json" validate:"required,dive"`
}

type geocodeBatchResponse struct {
	Result []addressItem               `json:"result"`
	Debug  *geojson.FeatureCollection `json:"debug"`
}

type routeQuery struct {
	PointA string `query:"pointA" validate:"required"`
	PointB string `query:"pointB" validate:"required"`
	Modes  string `query:"modes"`
}

type routeResponse struct {
	Routes []models.Route `json:"routes"`
}

type routeItem struct {
	Origin      []float64       `json:"origin"      validate:"len=2"`
	Destination json.RawMessage `json:"destination" validate:"required"`
	Modes       []string        `json:"modes,omitempty"`
}

type routeBatchRequest struct {
	JSON []routeItem `json:"json" validate:"required,dive"`
}

type routeBatchItem struct {
	Origin      [2]float64     `json:"origin"`
	Destination [2]float64     `json:"destination"`
	Routes      []models.Route `json:"routes"`
}

type reverseQuery struct {
	Lat *float64 `query:"lat" validate:"required"`
	Lng *float64 `query:"lng" validate:"required"`
}

type reverseResponse struct {
	Items []models.GeocodeResult `json:"items"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// destinationString accepts either a [lat, lng] pair or a point of interest name
// and returns the form understood by the resolver.
func destinationString(raw json.RawMessage) (string, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}

	var pair []float64
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return "", apperr.MalformedInput("destination", "must be a [lat, lng] pair or a point of interest name")
	}
	return normalize.CoordinateKey(models.Coordinates{Latitude: pair[0], Longitude: pair[1]}), nil
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/hermes/internal/apperr"
	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/mapview"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/normalize"
	"github.com/UnknownOlympus/hermes/internal/service"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(healthResponse{Status: "healthy"})
}

func (s *Server) handleReady(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.WarnContext(ctx, "Readiness check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(healthResponse{Status: "unavailable"})
	}
	return c.JSON(healthResponse{Status: "ready"})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.metrics.Snapshot())
}

func (s *Server) handleMap(c *fiber.Ctx) error {
	format, err := mapview.ParseFormat(c.Query("format"))
	if err != nil {
		return apperr.InvalidGeometry(err)
	}

	points, err := mapview.Decode(c.Query("polyline"), format)
	if err != nil {
		return apperr.InvalidGeometry(err)
	}

	var buf bytes.Buffer
	if err = mapview.Render(&buf, points); err != nil {
		return apperr.InvalidGeometry(err)
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) handleGeocode(c *fiber.Ctx) error {
	var q geocodeQuery
	if err := c.QueryParser(&q); err != nil {
		return apperr.MalformedInput("query", err.Error())
	}
	if err := validateStruct(&q); err != nil {
		return err
	}

	items, err := s.resolver.ResolveAddress(c.UserContext(), q.Address)
	if err != nil {
		return err
	}

	return c.JSON(geocodeResponse{Items: items, Debug: s.debug.Build(items)})
}

func (s *Server) handleGeocodeBatch(c *fiber.Ctx) error {
	var req geocodeBatchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperr.MalformedInput("body", "invalid JSON")
	}
	if err := validateStruct(&req); err != nil {
		return err
	}

	addresses := make([]string, len(req.JSON))
	for i, item := range req.JSON {
		addresses[i] = item.Address
	}

	results, err := s.resolver.ResolveAddresses(c.UserContext(), addresses)
	if err != nil {
		return err
	}

	debug := s.debug.New()
	for i := range req.JSON {
		req.JSON[i].Items = results[i]
		s.debug.Append(debug, results[i])
	}

	return c.JSON(geocodeBatchResponse{Result: req.JSON, Debug: debug})
}

func (s *Server) handleRoute(c *fiber.Ctx) error {
	var q routeQuery
	if err := c.QueryParser(&q); err != nil {
		return apperr.MalformedInput("query", err.Error())
	}
	if err := validateStruct(&q); err != nil {
		return err
	}

	origin, err := normalize.ParseCoordinates(q.PointA)
	if err != nil {
		return apperr.MalformedInput("pointA", err.Error())
	}

	modes, err := parseModes(geocoding.SplitModes(q.Modes))
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	destination, err := s.resolver.ResolveDestination(ctx, q.PointB)
	if err != nil {
		return err
	}

	routes, err := s.resolver.ResolveRoute(ctx, origin, destination, modes)
	if err != nil {
		return err
	}

	return c.JSON(routeResponse{Routes: routes})
}

func (s *Server) handleRouteBatch(c *fiber.Ctx) error {
	var req routeBatchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperr.MalformedInput("body", "invalid JSON")
	}
	if err := validateStruct(&req); err != nil {
		return err
	}

	defaultModes, err := parseModes(geocoding.SplitModes(c.Query("modes")))
	if err != nil {
		return err
	}

	requests := make([]service.RouteRequest, len(req.JSON))
	for i, item := range req.JSON {
		destination, err := destinationString(item.Destination)
		if err != nil {
			return &service.BatchError{Index: i, Item: string(item.Destination), Err: err}
		}

		modes := defaultModes
		if len(item.Modes) > 0 {
			if modes, err = parseModes(item.Modes); err != nil {
				return &service.BatchError{Index: i, Item: destination, Err: err}
			}
		}

		requests[i] = service.RouteRequest{
			Origin:      models.Coordinates{Latitude: item.Origin[0], Longitude: item.Origin[1]},
			Destination: destination,
			Modes:       modes,
		}
	}

	results, err := s.resolver.ResolveRoutes(c.UserContext(), requests)
	if err != nil {
		return err
	}

	out := make([]routeBatchItem, len(results))
	for i, r := range results {
		out[i] = routeBatchItem{
			Origin:      r.Origin.Pair(),
			Destination: r.Destination.Pair(),
			Routes:      r.Routes,
		}
	}

	return c.JSON(out)
}

func (s *Server) handleReverseGeocode(c *fiber.Ctx) error {
	var q reverseQuery
	if err := c.QueryParser(&q); err != nil {
		return apperr.MalformedInput("coordinates", err.Error())
	}
	if err := validateStruct(&q); err != nil {
		return err
	}

	items, err := s.resolver.ReverseGeocode(c.UserContext(), models.Coordinates{Latitude: *q.Lat, Longitude: *q.Lng})
	if err != nil {
		return err
	}

	return c.JSON(reverseResponse{Items: items})
}

func parseModes(raw []string) ([]geocoding.TransportMode, error) {
	modes, err := geocoding.ParseModes(raw)
	if err != nil {
		return nil, apperr.MalformedInput("modes", err.Error())
	}
	return modes, nil
}

// handleError renders every error as {"error": message} with the status of its kind.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(errorResponse{Error: fiberErr.Message})
	}

	status := apperr.StatusOf(err)
	message := apperr.PublicMessage(err)

	var batchErr *service.BatchError
	if errors.As(err, &batchErr) {
		message = fmt.Sprintf("item %d (%s): %s", batchErr.Index, batchErr.Item, apperr.PublicMessage(batchErr.Err))
	}

	if status >= fiber.StatusInternalServerError {
		s.log.ErrorContext(c.UserContext(), "Request failed", "path", c.Path(), "error", err)
	} else {
		s.log.DebugContext(c.UserContext(), "Request rejected",
			"path", c.Path(), "kind", apperr.GetKind(err).String(), "error", err)
	}

	return c.Status(status).JSON(errorResponse{Error: message})
}

// Package server exposes the resolver over HTTP.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/hermes/internal/debuggeo"
	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/metrics"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 60 * time.Second
	idleTimeout  = 60 * time.Second
	readyTimeout = 2 * time.Second
)

// Resolver is what the handlers need from the resolution engine.
type Resolver interface {
	ResolveAddress(ctx context.Context, address string) ([]models.GeocodeResult, error)
	ResolveAddresses(ctx context.Context, addresses []string) ([][]models.GeocodeResult, error)
	ResolveDestination(ctx context.Context, raw string) (models.Coordinates, error)
	ResolveRoute(
		ctx context.Context, origin, destination models.Coordinates, modes []geocoding.TransportMode,
	) ([]models.Route, error)
	ResolveRoutes(ctx context.Context, requests []service.RouteRequest) ([]service.RouteResult, error)
	ReverseGeocode(ctx context.Context, coords models.Coordinates) ([]models.GeocodeResult, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the collaborators of the HTTP surface.
type Options struct {
	Token    string
	Resolver Resolver
	Debug    *debuggeo.Builder
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Store    Pinger
}

// Server is the fiber application with every route mounted.
type Server struct {
	app      *fiber.App
	log      *slog.Logger
	resolver Resolver
	debug    *debuggeo.Builder
	metrics  *metrics.Metrics
	store    Pinger
}

// New builds the application. Nothing listens until Listen is called.
func New(log *slog.Logger, opts Options) *Server {
	s := &Server{
		log:      log,
		resolver: opts.Resolver,
		debug:    opts.Debug,
		metrics:  opts.Metrics,
		store:    opts.Store,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "hermes",
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		IdleTimeout:           idleTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	s.app.Use(accessLog(log))

	s.app.Get("/health", s.handleHealth)
	s.app.Get("/readyz", s.handleReady)
	s.app.Get("/metrics", s.handleMetrics)
	s.app.Get("/metrics/prometheus", adaptor.HTTPHandler(
		promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}),
	))
	s.app.Get("/map", s.handleMap)

	api := s.app.Group("/api", tokenAuth(opts.Token))
	api.Get("/reconciliators/geocodingHere", s.handleGeocode)
	api.Post("/reconciliators/geocodingHere", s.handleGeocodeBatch)
	api.Get("/route", s.handleRoute)
	api.Post("/route", s.handleRouteBatch)
	api.Get("/reverse-geocode", s.handleReverseGeocode)

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("HTTP server started", "address", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

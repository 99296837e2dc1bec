// Package service holds the cache-or-fetch resolution engine shared by every endpoint.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/hermes/internal/apperr"
	"github.com/UnknownOlympus/hermes/internal/geocoding"
	"github.com/UnknownOlympus/hermes/internal/metrics"
	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/UnknownOlympus/hermes/internal/normalize"
	"github.com/UnknownOlympus/hermes/internal/repository"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Resolver turns lookup keys into results. It reads the store first and only
// calls the provider on a miss. Non-empty provider results are written back.
type Resolver struct {
	log          *slog.Logger
	store        repository.Store
	provider     geocoding.Provider
	providerName string
	metrics      metrics.Recorder
	clock        clockwork.Clock
	group        singleflight.Group
	defaultModes []geocoding.TransportMode
	fetchTimeout time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock replaces the wall clock used to time provider calls.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Resolver) {
		r.clock = clock
	}
}

// WithDefaultModes sets the modes used when a route request names none.
func WithDefaultModes(modes ...geocoding.TransportMode) Option {
	return func(r *Resolver) {
		if len(modes) > 0 {
			r.defaultModes = modes
		}
	}
}

// WithFetchTimeout bounds a shared provider fetch. Non-positive values keep geocoding.DefaultTimeout.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.fetchTimeout = timeout
		}
	}
}

// NewResolver creates a new instance of Resolver.
// Pass repository.Bypass(store) as store to run without a cache.
func NewResolver(
	log *slog.Logger,
	store repository.Store,
	provider geocoding.Provider,
	providerName string,
	recorder metrics.Recorder,
	opts ...Option,
) *Resolver {
	r := &Resolver{
		log:          log,
		store:        store,
		provider:     provider,
		providerName: providerName,
		metrics:      recorder,
		clock:        clockwork.NewRealClock(),
		defaultModes: []geocoding.TransportMode{geocoding.ModePedestrian},
		fetchTimeout: geocoding.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultModes returns the modes used when a route request names none.
func (r *Resolver) DefaultModes() []geocoding.TransportMode {
	return r.defaultModes
}

// namespaceOps binds one cache namespace to its store accessors and provider call.
type namespaceOps[T any] struct {
	namespace string
	op        string
	get       func(ctx context.Context, key string) ([]T, error)
	put       func(ctx context.Context, key string, items []T) error
	fetch     func(ctx context.Context) ([]T, error)
}

// resolveCached runs the read-through protocol for one key.
// Concurrent misses for the same key share a single provider call.
func resolveCached[T any](ctx context.Context, r *Resolver, key string, ops namespaceOps[T]) ([]T, error) {
	items, err := ops.get(ctx, key)
	switch {
	case err == nil:
		r.metrics.IncrementHit(ops.namespace)
		r.log.DebugContext(ctx, "Cache hit", "namespace", ops.namespace, "key", key)
		return items, nil
	case !errors.Is(err, repository.ErrNotFound):
		r.log.WarnContext(ctx, "Cache read failed, treating as miss",
			"namespace", ops.namespace, "key", key, "error", err)
	}

	r.metrics.IncrementMiss(ops.namespace)
	r.log.DebugContext(ctx, "Cache miss", "namespace", ops.namespace, "key", key)

	// The shared fetch ignores the caller's cancellation and is bounded by fetchTimeout.
	v, err, _ := r.group.Do(ops.namespace+"\x00"+key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()

		fresh, err := callProvider(ctx, r, ops.op, ops.fetch)
		if err != nil {
			return nil, err
		}
		if len(fresh) == 0 {
			r.log.InfoContext(ctx, "Provider returned no results, not caching",
				"namespace", ops.namespace, "key", key)
			return fresh, nil
		}
		if err = ops.put(ctx, key, fresh); err != nil {
			r.log.ErrorContext(ctx, "Failed to write cache entry",
				"namespace", ops.namespace, "key", key, "error", err)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]T), nil
}

// callProvider times a provider call and converts its failure into an API error.
func callProvider[T any](ctx context.Context, r *Resolver, op string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	r.metrics.IncrementCall(r.providerName)

	start := r.clock.Now()
	items, err := fetch(ctx)
	r.metrics.ObserveProviderLatency(r.providerName, r.clock.Since(start).Seconds())

	if err != nil {
		r.metrics.IncrementProviderError(r.providerName)
		r.log.ErrorContext(ctx, "Provider request failed", "provider", r.providerName, "op", op, "error", err)
		return nil, providerError(err)
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}

func providerError(err error) error {
	switch {
	case errors.Is(err, geocoding.ErrUnsupportedMode):
		return apperr.Wrap(apperr.KindMalformedInput, "transport mode not supported by the provider", err)
	case errors.Is(err, geocoding.ErrEmptyAddress):
		return apperr.MissingField("address")
	default:
		return apperr.Provider(err)
	}
}

// ResolveAddress geocodes one address. The cache key is the lowercased address,
// while the provider receives it as typed.
func (r *Resolver) ResolveAddress(ctx context.Context, address string) ([]models.GeocodeResult, error) {
	if strings.TrimSpace(address) == "" {
		return nil, apperr.MissingField("address")
	}

	return resolveCached(ctx, r, normalize.Address(address), namespaceOps[models.GeocodeResult]{
		namespace: repository.NamespaceAddress,
		op:        "geocode",
		get: func(ctx context.Context, key string) ([]models.GeocodeResult, error) {
			record, err := r.store.GetAddress(ctx, key)
			if err != nil {
				return nil, err
			}
			return record.Items, nil
		},
		put: func(ctx context.Context, key string, items []models.GeocodeResult) error {
			return r.store.PutAddress(ctx, &models.AddressRecord{Key: key, Items: items})
		},
		fetch: func(ctx context.Context) ([]models.GeocodeResult, error) {
			return r.provider.Geocode(ctx, address)
		},
	})
}

// ResolveAddresses geocodes a batch in input order and stops at the first failure.
// Items resolved before the failure stay cached.
func (r *Resolver) ResolveAddresses(ctx context.Context, addresses []string) ([][]models.GeocodeResult, error) {
	results := make([][]models.GeocodeResult, 0, len(addresses))
	for i, address := range addresses {
		items, err := r.ResolveAddress(ctx, address)
		if err != nil {
			return nil, &BatchError{Index: i, Item: address, Err: err}
		}
		results = append(results, items)
	}
	return results, nil
}

// ReverseGeocode returns the addresses near coords. Keys are rounded to six decimals.
func (r *Resolver) ReverseGeocode(ctx context.Context, coords models.Coordinates) ([]models.GeocodeResult, error) {
	if err := normalize.ValidateCoordinates(coords); err != nil {
		return nil, apperr.MalformedInput("coordinates", err.Error())
	}

	return resolveCached(ctx, r, normalize.ReverseKey(coords), namespaceOps[models.GeocodeResult]{
		namespace: repository.NamespaceReverse,
		op:        "reverse geocode",
		get: func(ctx context.Context, key string) ([]models.GeocodeResult, error) {
			record, err := r.store.GetReverse(ctx, key)
			if err != nil {
				return nil, err
			}
			return record.Items, nil
		},
		put: func(ctx context.Context, key string, items []models.GeocodeResult) error {
			return r.store.PutReverse(ctx, &models.ReverseRecord{Key: key, Items: items})
		},
		fetch: func(ctx context.Context) ([]models.GeocodeResult, error) {
			return r.provider.ReverseGeocode(ctx, coords)
		},
	})
}

// ResolvePOI looks a point of interest up by name. There is no provider fallback:
// a miss is an UnresolvedReference error.
func (r *Resolver) ResolvePOI(ctx context.Context, name string) (*models.PointOfInterest, error) {
	key := normalize.POI(name)
	if key == "" {
		return nil, apperr.MissingField("destination")
	}

	poi, err := r.store.GetPOI(ctx, key)
	switch {
	case err == nil:
		r.metrics.IncrementHit(repository.NamespacePOI)
		return poi, nil
	case errors.Is(err, repository.ErrNotFound):
		r.metrics.IncrementMiss(repository.NamespacePOI)
		r.log.InfoContext(ctx, "Unknown point of interest", "name", name, "key", key)
		return nil, apperr.UnresolvedReference(name)
	default:
		r.log.ErrorContext(ctx, "Failed to read point of interest", "key", key, "error", err)
		return nil, apperr.Internal(err)
	}
}

// ResolveDestination accepts either "lat,lng" or a point of interest name.
func (r *Resolver) ResolveDestination(ctx context.Context, raw string) (models.Coordinates, error) {
	coords, err := normalize.ParseCoordinates(raw)
	switch {
	case err == nil:
		return coords, nil
	case errors.Is(err, normalize.ErrCoordinateRange):
		return models.Coordinates{}, apperr.MalformedInput("destination", err.Error())
	}

	poi, err := r.ResolvePOI(ctx, raw)
	if err != nil {
		return models.Coordinates{}, err
	}
	return poi.Coordinates, nil
}

// ResolveRoute computes routes for every requested mode, or the default modes when none
// are given. Each mode is cached under its own key and the results are concatenated in mode order.
func (r *Resolver) ResolveRoute(
	ctx context.Context,
	origin, destination models.Coordinates,
	modes []geocoding.TransportMode,
) ([]models.Route, error) {
	if err := normalize.ValidateCoordinates(origin); err != nil {
		return nil, apperr.MalformedInput("origin", err.Error())
	}
	if err := normalize.ValidateCoordinates(destination); err != nil {
		return nil, apperr.MalformedInput("destination", err.Error())
	}
	if len(modes) == 0 {
		modes = r.defaultModes
	}

	routes := []models.Route{}
	for _, mode := range modes {
		found, err := r.resolveRouteMode(ctx, origin, destination, mode)
		if err != nil {
			return nil, err
		}
		routes = append(routes, found...)
	}
	return routes, nil
}

func (r *Resolver) resolveRouteMode(
	ctx context.Context,
	origin, destination models.Coordinates,
	mode geocoding.TransportMode,
) ([]models.Route, error) {
	return resolveCached(ctx, r, normalize.RouteKey(origin, destination, string(mode)), namespaceOps[models.Route]{
		namespace: repository.NamespaceRoute,
		op:        "route",
		get: func(ctx context.Context, key string) ([]models.Route, error) {
			record, err := r.store.GetRoute(ctx, key)
			if err != nil {
				return nil, err
			}
			return record.Routes, nil
		},
		put: func(ctx context.Context, key string, routes []models.Route) error {
			return r.store.PutRoute(ctx, &models.RouteRecord{
				Key:         key,
				Origin:      origin,
				Destination: destination,
				Mode:        string(mode),
				Routes:      routes,
			})
		},
		fetch: func(ctx context.Context) ([]models.Route, error) {
			return r.provider.Route(ctx, origin, destination, mode)
		},
	})
}

// RouteRequest is one item of a batch route request.
// Destination is either "lat,lng" or a point of interest name.
type RouteRequest struct {
	Origin      models.Coordinates
	Destination string
	Modes       []geocoding.TransportMode
}

// RouteResult is the resolved form of a RouteRequest.
type RouteResult struct {
	Origin      models.Coordinates
	Destination models.Coordinates
	Routes      []models.Route
}

// ResolveRoutes resolves a batch in input order. A point of interest that cannot be
// resolved, or any provider failure, aborts the whole batch.
func (r *Resolver) ResolveRoutes(ctx context.Context, requests []RouteRequest) ([]RouteResult, error) {
	results := make([]RouteResult, 0, len(requests))
	for i, req := range requests {
		destination, err := r.ResolveDestination(ctx, req.Destination)
		if err != nil {
			return nil, &BatchError{Index: i, Item: req.Destination, Err: err}
		}

		routes, err := r.ResolveRoute(ctx, req.Origin, destination, req.Modes)
		if err != nil {
			item := normalize.CoordinateKey(req.Origin) + " -> " + req.Destination
			return nil, &BatchError{Index: i, Item: item, Err: err}
		}

		results = append(results, RouteResult{Origin: req.Origin, Destination: destination, Routes: routes})
	}
	return results, nil
}

// BatchError identifies the batch item that aborted a batch request.
type BatchError struct {
	Index int
	Item  string
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch item %d (%s): %v", e.Index, e.Item, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

package repository

import (
	"context"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// bypassStore turns the cache namespaces off: reads always miss and writes are dropped.
// Points of interest are reference data, not cache, so they still go to the wrapped store.
type bypassStore struct {
	next Store
}

// Bypass wraps store so the cache namespaces are disabled.
func Bypass(store Store) Store {
	return &bypassStore{next: store}
}

func (b *bypassStore) GetAddress(context.Context, string) (*models.AddressRecord, error) {
	return nil, ErrNotFound
}

func (b *bypassStore) PutAddress(context.Context, *models.AddressRecord) error {
	return nil
}

func (b *bypassStore) GetRoute(context.Context, string) (*models.RouteRecord, error) {
	return nil, ErrNotFound
}

func (b *bypassStore) PutRoute(context.Context, *models.RouteRecord) error {
	return nil
}

func (b *bypassStore) GetReverse(context.Context, string) (*models.ReverseRecord, error) {
	return nil, ErrNotFound
}

func (b *bypassStore) PutReverse(context.Context, *models.ReverseRecord) error {
	return nil
}

func (b *bypassStore) GetPOI(ctx context.Context, key string) (*models.PointOfInterest, error) {
	return b.next.GetPOI(ctx, key)
}

func (b *bypassStore) SeedPOIs(ctx context.Context, pois []models.PointOfInterest) error {
	return b.next.SeedPOIs(ctx, pois)
}

func (b *bypassStore) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

// Package repository is the document store behind the three cache namespaces
// (address, route, reverse) and the read-only point of interest table.
package repository

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// Namespace names, used as metric labels and key prefixes.
const (
	NamespaceAddress = "address"
	NamespaceRoute   = "route"
	NamespaceReverse = "reverse"
	NamespacePOI     = "poi"
)

// ErrNotFound is returned by every Get on a miss.
var ErrNotFound = errors.New("record not found")

// Store is the cache layer used by the resolver. Lookups are exact matches on the
// already normalized key. Writes overwrite (last write wins). Nothing expires.
type Store interface {
	GetAddress(ctx context.Context, key string) (*models.AddressRecord, error)
	PutAddress(ctx context.Context, record *models.AddressRecord) error
	GetRoute(ctx context.Context, key string) (*models.RouteRecord, error)
	PutRoute(ctx context.Context, record *models.RouteRecord) error
	GetReverse(ctx context.Context, key string) (*models.ReverseRecord, error)
	PutReverse(ctx context.Context, record *models.ReverseRecord) error
	GetPOI(ctx context.Context, key string) (*models.PointOfInterest, error)
	SeedPOIs(ctx context.Context, pois []models.PointOfInterest) error
	Ping(ctx context.Context) error
}

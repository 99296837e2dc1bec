package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of *pgxpool.Pool used by the store. pgxmock satisfies it in tests.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// PostgresStore keeps cache documents as JSONB rows, one table per namespace.
type PostgresStore struct {
	db  Database
	log *slog.Logger
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS address_cache (
		key        TEXT PRIMARY KEY,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS route_cache (
		key        TEXT PRIMARY KEY,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS reverse_cache (
		key        TEXT PRIMARY KEY,
		document   JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS poi (
		key       TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		address   TEXT NOT NULL DEFAULT '',
		latitude  DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL
	);`,
}

const (
	selectAddressQuery = `SELECT document FROM address_cache WHERE key = $1;`
	upsertAddressQuery = `
		INSERT INTO address_cache (key, document) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET document = EXCLUDED.document, updated_at = now();
	`
	selectRouteQuery = `SELECT document FROM route_cache WHERE key = $1;`
	upsertRouteQuery = `
		INSERT INTO route_cache (key, document) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET document = EXCLUDED.document, updated_at = now();
	`
	selectReverseQuery = `SELECT document FROM reverse_cache WHERE key = $1;`
	upsertReverseQuery = `
		INSERT INTO reverse_cache (key, document) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET document = EXCLUDED.document, updated_at = now();
	`
	selectPOIQuery = `SELECT name, address, latitude, longitude FROM poi WHERE key = $1;`
	upsertPOIQuery = `
		INSERT INTO poi (key, name, address, latitude, longitude) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE
		SET name = EXCLUDED.name, address = EXCLUDED.address,
			latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude;
	`
)

// NewDatabase opens a connection pool and verifies it with a ping.
func NewDatabase(host, port, user, password, name string) (*pgxpool.Pool, error) {
	const connectTimeout = 10 * time.Second

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, port),
		Path:   name,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresStore creates a new instance of PostgresStore with the provided Database.
func NewPostgresStore(db Database, log *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: log}
}

// EnsureSchema creates the cache tables when they do not exist yet.
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresStore) GetAddress(ctx context.Context, key string) (*models.AddressRecord, error) {
	var record models.AddressRecord
	if err := r.getDocument(ctx, NamespaceAddress, selectAddressQuery, key, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PostgresStore) PutAddress(ctx context.Context, record *models.AddressRecord) error {
	return r.putDocument(ctx, NamespaceAddress, upsertAddressQuery, record.Key, record)
}

func (r *PostgresStore) GetRoute(ctx context.Context, key string) (*models.RouteRecord, error) {
	var record models.RouteRecord
	if err := r.getDocument(ctx, NamespaceRoute, selectRouteQuery, key, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PostgresStore) PutRoute(ctx context.Context, record *models.RouteRecord) error {
	return r.putDocument(ctx, NamespaceRoute, upsertRouteQuery, record.Key, record)
}

func (r *PostgresStore) GetReverse(ctx context.Context, key string) (*models.ReverseRecord, error) {
	var record models.ReverseRecord
	if err := r.getDocument(ctx, NamespaceReverse, selectReverseQuery, key, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PostgresStore) PutReverse(ctx context.Context, record *models.ReverseRecord) error {
	return r.putDocument(ctx, NamespaceReverse, upsertReverseQuery, record.Key, record)
}

func (r *PostgresStore) GetPOI(ctx context.Context, key string) (*models.PointOfInterest, error) {
	poi := models.PointOfInterest{Key: key}
	err := r.db.QueryRow(ctx, selectPOIQuery, key).Scan(
		&poi.Name, &poi.Address, &poi.Coordinates.Latitude, &poi.Coordinates.Longitude,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query point of interest: %w", err)
	}
	return &poi, nil
}

// SeedPOIs upserts the reference table in one transaction.
func (r *PostgresStore) SeedPOIs(ctx context.Context, pois []models.PointOfInterest) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, poi := range pois {
		_, err = tx.Exec(ctx, upsertPOIQuery,
			poi.Key, poi.Name, poi.Address, poi.Coordinates.Latitude, poi.Coordinates.Longitude)
		if err != nil {
			if errRb := tx.Rollback(ctx); errRb != nil {
				r.log.ErrorContext(ctx, "Failed to rollback point of interest seeding", "error", errRb)
			}
			return fmt.Errorf("failed to upsert point of interest %q: %w", poi.Key, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit points of interest: %w", err)
	}

	r.log.InfoContext(ctx, "Points of interest seeded", "count", len(pois))
	return nil
}

func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PostgresStore) getDocument(ctx context.Context, namespace, query, key string, out any) error {
	var raw []byte
	err := r.db.QueryRow(ctx, query, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query %s document: %w", namespace, err)
	}

	if err = json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s document: %w", namespace, err)
	}

	r.log.DebugContext(ctx, "Cache document loaded", "namespace", namespace, "key", key)
	return nil
}

func (r *PostgresStore) putDocument(ctx context.Context, namespace, query, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", namespace, err)
	}

	if _, err = r.db.Exec(ctx, query, key, raw); err != nil {
		return fmt.Errorf("failed to upsert %s document: %w", namespace, err)
	}

	return nil
}

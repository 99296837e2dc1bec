package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hermes"

// RedisStore keeps every namespace as JSON strings under "hermes:<namespace>:<key>".
// Keys carry no TTL.
type RedisStore struct {
	client redis.UniversalClient
	log    *slog.Logger
}

// NewRedisStore creates a store on top of an existing client.
func NewRedisStore(client redis.UniversalClient, log *slog.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func redisKey(namespace, key string) string {
	return keyPrefix + ":" + namespace + ":" + key
}

func (s *RedisStore) GetAddress(ctx context.Context, key string) (*models.AddressRecord, error) {
	var record models.AddressRecord
	if err := s.get(ctx, NamespaceAddress, key, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisStore) PutAddress(ctx context.Context, record *models.AddressRecord) error {
	return s.set(ctx, NamespaceAddress, record.Key, record)
}

func (s *RedisStore) GetRoute(ctx context.Context, key string) (*models.RouteRecord, error) {
	var record models.RouteRecord
	if err := s.get(ctx, NamespaceRoute, key, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisStore) PutRoute(ctx context.Context, record *models.RouteRecord) error {
	return s.set(ctx, NamespaceRoute, record.Key, record)
}

func (s *RedisStore) GetReverse(ctx context.Context, key string) (*models.ReverseRecord, error) {
	var record models.ReverseRecord
	if err := s.get(ctx, NamespaceReverse, key, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisStore) PutReverse(ctx context.Context, record *models.ReverseRecord) error {
	return s.set(ctx, NamespaceReverse, record.Key, record)
}

func (s *RedisStore) GetPOI(ctx context.Context, key string) (*models.PointOfInterest, error) {
	var poi models.PointOfInterest
	if err := s.get(ctx, NamespacePOI, key, &poi); err != nil {
		return nil, err
	}
	return &poi, nil
}

// SeedPOIs writes every point of interest in a single pipeline.
func (s *RedisStore) SeedPOIs(ctx context.Context, pois []models.PointOfInterest) error {
	pipe := s.client.Pipeline()
	for _, poi := range pois {
		raw, err := json.Marshal(poi)
		if err != nil {
			return fmt.Errorf("failed to encode point of interest %q: %w", poi.Key, err)
		}
		pipe.Set(ctx, redisKey(NamespacePOI, poi.Key), raw, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed points of interest: %w", err)
	}

	s.log.InfoContext(ctx, "Points of interest seeded", "count", len(pois))
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) get(ctx context.Context, namespace, key string, out any) error {
	raw, err := s.client.Get(ctx, redisKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s document: %w", namespace, err)
	}

	if err = json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s document: %w", namespace, err)
	}
	return nil
}

func (s *RedisStore) set(ctx context.Context, namespace, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", namespace, err)
	}

	if err = s.client.Set(ctx, redisKey(namespace, key), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s document: %w", namespace, err)
	}
	return nil
}

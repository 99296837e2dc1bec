package repository

import (
	"context"
	"sync"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// MemoryStore keeps every namespace in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	addresses map[string]models.AddressRecord
	routes    map[string]models.RouteRecord
	reverse   map[string]models.ReverseRecord
	pois      map[string]models.PointOfInterest
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		addresses: make(map[string]models.AddressRecord),
		routes:    make(map[string]models.RouteRecord),
		reverse:   make(map[string]models.ReverseRecord),
		pois:      make(map[string]models.PointOfInterest),
	}
}

func (s *MemoryStore) GetAddress(_ context.Context, key string) (*models.AddressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.addresses[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (s *MemoryStore) PutAddress(_ context.Context, record *models.AddressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addresses[record.Key] = *record
	return nil
}

func (s *MemoryStore) GetRoute(_ context.Context, key string) (*models.RouteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.routes[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (s *MemoryStore) PutRoute(_ context.Context, record *models.RouteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routes[record.Key] = *record
	return nil
}

func (s *MemoryStore) GetReverse(_ context.Context, key string) (*models.ReverseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.reverse[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (s *MemoryStore) PutReverse(_ context.Context, record *models.ReverseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reverse[record.Key] = *record
	return nil
}

func (s *MemoryStore) GetPOI(_ context.Context, key string) (*models.PointOfInterest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poi, ok := s.pois[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &poi, nil
}

func (s *MemoryStore) SeedPOIs(_ context.Context, pois []models.PointOfInterest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, poi := range pois {
		s.pois[poi.Key] = poi
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

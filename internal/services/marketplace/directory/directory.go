// Package directory serves cached marketplace listings for dashboard views.
package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
)

// Topic identifies one cached listing family.
type Topic string

const (
	// TopicUsers covers the all-users listing.
	TopicUsers Topic = "users"
	// TopicRestaurants covers the restaurant listing.
	TopicRestaurants Topic = "restaurants"
	// TopicCouriers covers the courier listing.
	TopicCouriers Topic = "couriers"
)

const defaultFreshTTL = 30 * time.Second

// Service reads marketplace listings through a short-lived cache.
//
// Provisioning invalidates topics after each successful run so dashboards
// never render a listing that predates the newest account.
type Service struct {
	store    storage.DirectoryStore
	freshTTL time.Duration
	clock    func() time.Time

	mu      sync.RWMutex
	entries map[Topic]cacheEntry
}

type cacheEntry struct {
	value    any
	cachedAt time.Time
}

// Config controls directory cache behavior.
type Config struct {
	FreshTTL time.Duration
	Clock    func() time.Time
}

// NewService builds a directory service over the given store.
func NewService(store storage.DirectoryStore, cfg Config) *Service {
	freshTTL := cfg.FreshTTL
	if freshTTL <= 0 {
		freshTTL = defaultFreshTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:    store,
		freshTTL: freshTTL,
		clock:    clock,
		entries:  make(map[Topic]cacheEntry),
	}
}

// Invalidate drops cached listings for the given topics.
func (s *Service) Invalidate(topics ...Topic) {
	if s == nil {
		return
	}
	s.mu.Lock()
	for _, topic := range topics {
		delete(s.entries, topic)
	}
	s.mu.Unlock()
}

// ListUsers returns all user records, served from cache when fresh.
func (s *Service) ListUsers(ctx context.Context) ([]storage.UserRecord, error) {
	return listCached(ctx, s, TopicUsers, s.store.ListUserRecords)
}

// ListRestaurants returns restaurant listings, served from cache when fresh.
func (s *Service) ListRestaurants(ctx context.Context) ([]storage.RestaurantListing, error) {
	return listCached(ctx, s, TopicRestaurants, s.store.ListRestaurants)
}

// ListCouriers returns courier listings, served from cache when fresh.
func (s *Service) ListCouriers(ctx context.Context) ([]storage.CourierListing, error) {
	return listCached(ctx, s, TopicCouriers, s.store.ListCouriers)
}

// listCached resolves one listing topic through the cache.
// Failed reads are never cached; the next call retries the store.
func listCached[T any](ctx context.Context, s *Service, topic Topic, load func(context.Context) ([]T, error)) ([]T, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("directory store is not configured")
	}

	now := s.clock()
	s.mu.RLock()
	entry, ok := s.entries[topic]
	s.mu.RUnlock()
	if ok && now.Sub(entry.cachedAt) <= s.freshTTL {
		if cached, isT := entry.value.([]T); isT {
			return append([]T(nil), cached...), nil
		}
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[topic] = cacheEntry{value: append([]T(nil), rows...), cachedAt: now}
	s.mu.Unlock()

	return rows, nil
}

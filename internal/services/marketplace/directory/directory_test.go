package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
)

type fakeDirectoryStore struct {
	users       []storage.UserRecord
	restaurants []storage.RestaurantListing
	couriers    []storage.CourierListing
	err         error

	userCalls       int
	restaurantCalls int
	courierCalls    int
}

func (f *fakeDirectoryStore) ListUserRecords(context.Context) ([]storage.UserRecord, error) {
	f.userCalls++
	return f.users, f.err
}

func (f *fakeDirectoryStore) ListRestaurants(context.Context) ([]storage.RestaurantListing, error) {
	f.restaurantCalls++
	return f.restaurants, f.err
}

func (f *fakeDirectoryStore) ListCouriers(context.Context) ([]storage.CourierListing, error) {
	f.courierCalls++
	return f.couriers, f.err
}

func TestListUsersCachesWithinTTL(t *testing.T) {
	store := &fakeDirectoryStore{users: []storage.UserRecord{{ID: "user-1"}}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service := NewService(store, Config{FreshTTL: time.Minute, Clock: func() time.Time { return now }})

	for range 3 {
		users, err := service.ListUsers(context.Background())
		if err != nil {
			t.Fatalf("list users: %v", err)
		}
		if len(users) != 1 || users[0].ID != "user-1" {
			t.Fatalf("unexpected users %+v", users)
		}
	}
	if store.userCalls != 1 {
		t.Fatalf("expected 1 store read, got %d", store.userCalls)
	}
}

func TestListUsersExpiresAfterTTL(t *testing.T) {
	store := &fakeDirectoryStore{users: []storage.UserRecord{{ID: "user-1"}}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service := NewService(store, Config{FreshTTL: time.Minute, Clock: func() time.Time { return now }})

	if _, err := service.ListUsers(context.Background()); err != nil {
		t.Fatalf("list users: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := service.ListUsers(context.Background()); err != nil {
		t.Fatalf("list users: %v", err)
	}
	if store.userCalls != 2 {
		t.Fatalf("expected 2 store reads after expiry, got %d", store.userCalls)
	}
}

func TestInvalidateDropsTopic(t *testing.T) {
	store := &fakeDirectoryStore{
		users:       []storage.UserRecord{{ID: "user-1"}},
		restaurants: []storage.RestaurantListing{{UserID: "user-2", Name: "Casa"}},
	}
	service := NewService(store, Config{FreshTTL: time.Hour})

	if _, err := service.ListUsers(context.Background()); err != nil {
		t.Fatalf("list users: %v", err)
	}
	if _, err := service.ListRestaurants(context.Background()); err != nil {
		t.Fatalf("list restaurants: %v", err)
	}

	service.Invalidate(TopicUsers)

	if _, err := service.ListUsers(context.Background()); err != nil {
		t.Fatalf("list users: %v", err)
	}
	if _, err := service.ListRestaurants(context.Background()); err != nil {
		t.Fatalf("list restaurants: %v", err)
	}

	if store.userCalls != 2 {
		t.Fatalf("expected invalidated users to re-read, got %d calls", store.userCalls)
	}
	if store.restaurantCalls != 1 {
		t.Fatalf("expected restaurants to stay cached, got %d calls", store.restaurantCalls)
	}
}

func TestListCouriersFailureNotCached(t *testing.T) {
	store := &fakeDirectoryStore{err: errors.New("store offline")}
	service := NewService(store, Config{FreshTTL: time.Hour})

	if _, err := service.ListCouriers(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	store.err = nil
	store.couriers = []storage.CourierListing{{UserID: "user-3"}}
	couriers, err := service.ListCouriers(context.Background())
	if err != nil {
		t.Fatalf("list couriers after recovery: %v", err)
	}
	if len(couriers) != 1 {
		t.Fatalf("expected recovered listing, got %+v", couriers)
	}
	if store.courierCalls != 2 {
		t.Fatalf("expected failure to bypass cache, got %d calls", store.courierCalls)
	}
}

func TestCachedSliceIsCopied(t *testing.T) {
	store := &fakeDirectoryStore{users: []storage.UserRecord{{ID: "user-1"}}}
	service := NewService(store, Config{FreshTTL: time.Hour})

	first, err := service.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	first[0].ID = "mutated"

	second, err := service.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if second[0].ID != "user-1" {
		t.Fatal("expected cache to be isolated from caller mutation")
	}
}

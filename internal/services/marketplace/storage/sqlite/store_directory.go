package sqlite

import (
	"context"
	"fmt"

	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
)

// ListRestaurants returns restaurant profiles joined with their owner records.
func (s *Store) ListRestaurants(ctx context.Context) ([]storage.RestaurantListing, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT rp.user_id, ur.display_name, rp.name, rp.status, rp.commission_bps
FROM restaurant_profiles rp
JOIN user_records ur ON ur.id = rp.user_id
ORDER BY rp.created_at DESC, rp.user_id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var listings []storage.RestaurantListing
	for rows.Next() {
		var listing storage.RestaurantListing
		if err := rows.Scan(&listing.UserID, &listing.OwnerName, &listing.Name, &listing.Status, &listing.CommissionBps); err != nil {
			return nil, fmt.Errorf("scan restaurant listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant listings: %w", err)
	}
	return listings, nil
}

// ListCouriers returns courier profiles joined with their owner records.
func (s *Store) ListCouriers(ctx context.Context) ([]storage.CourierListing, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT cp.user_id, ur.display_name, cp.vehicle_type, cp.status, cp.account_state
FROM courier_profiles cp
JOIN user_records ur ON ur.id = cp.user_id
ORDER BY cp.created_at DESC, cp.user_id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list couriers: %w", err)
	}
	defer rows.Close()

	var listings []storage.CourierListing
	for rows.Next() {
		var listing storage.CourierListing
		if err := rows.Scan(&listing.UserID, &listing.Name, &listing.VehicleType, &listing.Status, &listing.AccountState); err != nil {
			return nil, fmt.Errorf("scan courier listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courier listings: %w", err)
	}
	return listings, nil
}

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mealgrid/mealgrid/internal/services/marketplace/identity"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStoreDBNilSafe(t *testing.T) {
	var store *Store
	if store.DB() != nil {
		t.Fatal("expected nil DB for nil store")
	}
}

func TestCreateCredentialHashesPassword(t *testing.T) {
	store := openTempStore(t)

	id, err := store.CreateCredential(context.Background(), storage.CredentialInput{
		ID:             "cred-1",
		Email:          "user@example.com",
		Password:       "secret",
		EmailConfirmed: true,
		Role:           identity.RoleClient,
		CreatedAt:      time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create credential: %v", err)
	}
	if id != "cred-1" {
		t.Fatalf("unexpected id %s", id)
	}

	got, err := store.GetCredentialByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("get credential: %v", err)
	}
	if got.PasswordHash == "secret" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("secret")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
	if !got.EmailConfirmed {
		t.Fatal("expected confirmed email")
	}
	if got.Role != identity.RoleClient {
		t.Fatalf("unexpected role %s", got.Role)
	}
}

func TestCreateCredentialDuplicateEmail(t *testing.T) {
	store := openTempStore(t)

	input := storage.CredentialInput{
		ID:       "cred-1",
		Email:    "user@example.com",
		Password: "secret",
		Role:     identity.RoleClient,
	}
	if _, err := store.CreateCredential(context.Background(), input); err != nil {
		t.Fatalf("create credential: %v", err)
	}

	input.ID = "cred-2"
	_, err := store.CreateCredential(context.Background(), input)
	if !errors.Is(err, storage.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetCredentialByEmailMissing(t *testing.T) {
	store := openTempStore(t)

	_, err := store.GetCredentialByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutGetUserRecordRoundTrip(t *testing.T) {
	store := openTempStore(t)

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	record := storage.UserRecord{
		ID:          "user-1",
		DisplayName: "Chef Ana",
		Phone:       "555-0101",
		Email:       "chef@example.com",
		Role:        identity.RoleRestaurant,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	if err := store.PutUserRecord(context.Background(), record); err != nil {
		t.Fatalf("put user record: %v", err)
	}

	got, err := store.GetUserRecord(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user record: %v", err)
	}
	if got.DisplayName != record.DisplayName || got.Role != record.Role || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestPutUserRecordRequiresID(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutUserRecord(context.Background(), storage.UserRecord{ID: "  "}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestListUserRecordsNewestFirst(t *testing.T) {
	store := openTempStore(t)

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"user-1", "user-2", "user-3"} {
		record := storage.UserRecord{
			ID:          id,
			DisplayName: id,
			Email:       id + "@example.com",
			Role:        identity.RoleClient,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.PutUserRecord(context.Background(), record); err != nil {
			t.Fatalf("put user record: %v", err)
		}
	}

	records, err := store.ListUserRecords(context.Background())
	if err != nil {
		t.Fatalf("list user records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != "user-3" || records[2].ID != "user-1" {
		t.Fatalf("unexpected order: %s, %s, %s", records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestCreateListLedgerAccounts(t *testing.T) {
	store := openTempStore(t)

	account := storage.LedgerAccount{
		ID:          "acct-1",
		UserID:      "user-1",
		AccountType: "restaurant",
		Balance:     "150.00",
		CreatedAt:   time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := store.CreateLedgerAccount(context.Background(), account); err != nil {
		t.Fatalf("create ledger account: %v", err)
	}

	accounts, err := store.ListLedgerAccounts(context.Background())
	if err != nil {
		t.Fatalf("list ledger accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	if accounts[0].Balance != "150.00" || accounts[0].AccountType != "restaurant" {
		t.Fatalf("unexpected account: %+v", accounts[0])
	}
}

func TestCreateLedgerAccountDefaultsBalance(t *testing.T) {
	store := openTempStore(t)

	account := storage.LedgerAccount{ID: "acct-1", AccountType: "platform"}
	if err := store.CreateLedgerAccount(context.Background(), account); err != nil {
		t.Fatalf("create ledger account: %v", err)
	}

	accounts, err := store.ListLedgerAccounts(context.Background())
	if err != nil {
		t.Fatalf("list ledger accounts: %v", err)
	}
	if accounts[0].Balance != "0.00" {
		t.Fatalf("expected default balance, got %q", accounts[0].Balance)
	}
}

func TestPutGetPreferencesRoundTrip(t *testing.T) {
	store := openTempStore(t)

	seenAt := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	prefs := storage.Preferences{
		UserID:           "user-1",
		OnboardingSeen:   true,
		OnboardingSeenAt: &seenAt,
		CreatedAt:        time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := store.PutPreferences(context.Background(), prefs); err != nil {
		t.Fatalf("put preferences: %v", err)
	}

	got, err := store.GetPreferences(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if !got.OnboardingSeen || got.OnboardingSeenAt == nil || !got.OnboardingSeenAt.Equal(seenAt) {
		t.Fatalf("unexpected preferences: %+v", got)
	}
	if got.TourCompleted || got.TourCompletedAt != nil {
		t.Fatalf("expected tour flags unset: %+v", got)
	}
}

func TestPutRoleProfileVariants(t *testing.T) {
	store := openTempStore(t)

	profiles := []identity.Profile{
		identity.RestaurantProfile{Name: "Casa da Ana", Status: "approved", CommissionBps: 1500},
		identity.CourierProfile{VehicleType: "motorcycle", Status: "active", AccountState: "approved"},
		identity.ClientProfile{Status: "active"},
	}
	for i, profile := range profiles {
		userID := []string{"rest-1", "cour-1", "client-1"}[i]
		if err := store.PutRoleProfile(context.Background(), userID, profile); err != nil {
			t.Fatalf("put role profile %T: %v", profile, err)
		}
	}

	var commission int
	row := store.DB().QueryRow(`SELECT commission_bps FROM restaurant_profiles WHERE user_id = ?`, "rest-1")
	if err := row.Scan(&commission); err != nil {
		t.Fatalf("select restaurant profile: %v", err)
	}
	if commission != 1500 {
		t.Fatalf("unexpected commission %d", commission)
	}

	var vehicle string
	row = store.DB().QueryRow(`SELECT vehicle_type FROM courier_profiles WHERE user_id = ?`, "cour-1")
	if err := row.Scan(&vehicle); err != nil {
		t.Fatalf("select courier profile: %v", err)
	}
	if vehicle != "motorcycle" {
		t.Fatalf("unexpected vehicle %q", vehicle)
	}
}

func TestListRestaurantsJoinsOwner(t *testing.T) {
	store := openTempStore(t)

	record := storage.UserRecord{
		ID:          "user-1",
		DisplayName: "Chef Ana",
		Email:       "chef@example.com",
		Role:        identity.RoleRestaurant,
	}
	if err := store.PutUserRecord(context.Background(), record); err != nil {
		t.Fatalf("put user record: %v", err)
	}
	profile := identity.RestaurantProfile{Name: "Casa da Ana", Status: "approved", CommissionBps: 1500}
	if err := store.PutRoleProfile(context.Background(), "user-1", profile); err != nil {
		t.Fatalf("put role profile: %v", err)
	}

	listings, err := store.ListRestaurants(context.Background())
	if err != nil {
		t.Fatalf("list restaurants: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	got := listings[0]
	if got.OwnerName != "Chef Ana" || got.Name != "Casa da Ana" || got.CommissionBps != 1500 {
		t.Fatalf("unexpected listing: %+v", got)
	}
}

func TestListCouriersJoinsOwner(t *testing.T) {
	store := openTempStore(t)

	record := storage.UserRecord{
		ID:          "user-1",
		DisplayName: "Courier",
		Email:       "courier@example.com",
		Role:        identity.RoleDeliveryAgent,
	}
	if err := store.PutUserRecord(context.Background(), record); err != nil {
		t.Fatalf("put user record: %v", err)
	}
	profile := identity.CourierProfile{VehicleType: "bicycle", Status: "active", AccountState: "approved"}
	if err := store.PutRoleProfile(context.Background(), "user-1", profile); err != nil {
		t.Fatalf("put role profile: %v", err)
	}

	listings, err := store.ListCouriers(context.Background())
	if err != nil {
		t.Fatalf("list couriers: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].Name != "Courier" || listings[0].VehicleType != "bicycle" {
		t.Fatalf("unexpected listing: %+v", listings[0])
	}
}

func TestAppendDiagnosticEvent(t *testing.T) {
	store := openTempStore(t)

	err := store.AppendDiagnosticEvent(context.Background(), storage.DiagnosticEvent{
		Source:   "provisioning",
		Severity: "ERROR",
		Message:  "step failed",
		Metadata: map[string]string{"step": "ledger account"},
	})
	if err != nil {
		t.Fatalf("append diagnostic: %v", err)
	}

	var count int
	row := store.DB().QueryRow(`SELECT COUNT(*) FROM diagnostic_events WHERE source = 'provisioning'`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count diagnostics: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 event, got %d", count)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marketplace.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

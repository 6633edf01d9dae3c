package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mealgrid/mealgrid/internal/services/marketplace/identity"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
)

// CreateCredential hashes the password and persists the credential.
// Email uniqueness is enforced by the schema.
func (s *Store) CreateCredential(ctx context.Context, input storage.CredentialInput) (string, error) {
	if strings.TrimSpace(input.ID) == "" {
		return "", fmt.Errorf("credential id is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return "", fmt.Errorf("credential email is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO credentials (id, email, password_hash, email_confirmed, role, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		input.ID,
		input.Email,
		string(hash),
		boolToInt(input.EmailConfirmed),
		string(input.Role),
		toMillis(createdAt),
	)
	if err != nil {
		if isConstraintError(err) {
			return "", storage.ErrEmailTaken
		}
		return "", fmt.Errorf("insert credential: %w", err)
	}
	return input.ID, nil
}

// GetCredentialByEmail loads the credential for a login attempt.
func (s *Store) GetCredentialByEmail(ctx context.Context, email string) (storage.Credential, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, email, password_hash, email_confirmed, role, created_at
FROM credentials
WHERE email = ?
`, strings.ToLower(strings.TrimSpace(email)))

	var credential storage.Credential
	var confirmed int
	var role string
	var createdAt int64
	if err := row.Scan(&credential.ID, &credential.Email, &credential.PasswordHash, &confirmed, &role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Credential{}, storage.ErrNotFound
		}
		return storage.Credential{}, fmt.Errorf("select credential: %w", err)
	}
	credential.EmailConfirmed = confirmed != 0
	credential.Role = identity.Role(role)
	credential.CreatedAt = fromMillis(createdAt)
	return credential, nil
}

// PutUserRecord upserts a marketplace user record.
func (s *Store) PutUserRecord(ctx context.Context, record storage.UserRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("user record id is required")
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO user_records (id, display_name, phone, email, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	display_name = excluded.display_name,
	phone = excluded.phone,
	email = excluded.email,
	role = excluded.role,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.DisplayName,
		record.Phone,
		record.Email,
		string(record.Role),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert user record: %w", err)
	}
	return nil
}

// GetUserRecord loads one user record by id.
func (s *Store) GetUserRecord(ctx context.Context, userID string) (storage.UserRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, display_name, phone, email, role, created_at, updated_at
FROM user_records
WHERE id = ?
`, userID)
	record, err := scanUserRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.UserRecord{}, storage.ErrNotFound
		}
		return storage.UserRecord{}, fmt.Errorf("select user record: %w", err)
	}
	return record, nil
}

// ListUserRecords returns all user records newest first.
func (s *Store) ListUserRecords(ctx context.Context) ([]storage.UserRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, display_name, phone, email, role, created_at, updated_at
FROM user_records
ORDER BY created_at DESC, id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list user records: %w", err)
	}
	defer rows.Close()

	var records []storage.UserRecord
	for rows.Next() {
		record, err := scanUserRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user records: %w", err)
	}
	return records, nil
}

func scanUserRecord(scan func(dest ...any) error) (storage.UserRecord, error) {
	var record storage.UserRecord
	var role string
	var createdAt int64
	var updatedAt int64
	if err := scan(&record.ID, &record.DisplayName, &record.Phone, &record.Email, &role, &createdAt, &updatedAt); err != nil {
		return storage.UserRecord{}, err
	}
	record.Role = identity.Role(role)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// CreateLedgerAccount persists one running-balance account.
func (s *Store) CreateLedgerAccount(ctx context.Context, account storage.LedgerAccount) error {
	if strings.TrimSpace(account.ID) == "" {
		return fmt.Errorf("account id is required")
	}
	if strings.TrimSpace(account.AccountType) == "" {
		return fmt.Errorf("account type is required")
	}
	if strings.TrimSpace(account.Balance) == "" {
		account.Balance = "0.00"
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO ledger_accounts (id, user_id, account_type, balance, created_at)
VALUES (?, ?, ?, ?, ?)
`,
		account.ID,
		account.UserID,
		account.AccountType,
		account.Balance,
		toMillis(account.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert ledger account: %w", err)
	}
	return nil
}

// ListLedgerAccounts returns every account for balance aggregation.
func (s *Store) ListLedgerAccounts(ctx context.Context) ([]storage.LedgerAccount, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, user_id, account_type, balance, created_at
FROM ledger_accounts
`)
	if err != nil {
		return nil, fmt.Errorf("list ledger accounts: %w", err)
	}
	defer rows.Close()

	var accounts []storage.LedgerAccount
	for rows.Next() {
		var account storage.LedgerAccount
		var createdAt int64
		if err := rows.Scan(&account.ID, &account.UserID, &account.AccountType, &account.Balance, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ledger account: %w", err)
		}
		account.CreatedAt = fromMillis(createdAt)
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger accounts: %w", err)
	}
	return accounts, nil
}

// PutPreferences upserts per-user onboarding preferences.
func (s *Store) PutPreferences(ctx context.Context, prefs storage.Preferences) error {
	if strings.TrimSpace(prefs.UserID) == "" {
		return fmt.Errorf("preferences user id is required")
	}
	if prefs.CreatedAt.IsZero() {
		prefs.CreatedAt = time.Now().UTC()
	}

	var seenAt sql.NullInt64
	if prefs.OnboardingSeenAt != nil {
		seenAt = sql.NullInt64{Int64: toMillis(*prefs.OnboardingSeenAt), Valid: true}
	}
	var tourAt sql.NullInt64
	if prefs.TourCompletedAt != nil {
		tourAt = sql.NullInt64{Int64: toMillis(*prefs.TourCompletedAt), Valid: true}
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO user_preferences (user_id, onboarding_seen, onboarding_seen_at, tour_completed, tour_completed_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	onboarding_seen = excluded.onboarding_seen,
	onboarding_seen_at = excluded.onboarding_seen_at,
	tour_completed = excluded.tour_completed,
	tour_completed_at = excluded.tour_completed_at
`,
		prefs.UserID,
		boolToInt(prefs.OnboardingSeen),
		seenAt,
		boolToInt(prefs.TourCompleted),
		tourAt,
		toMillis(prefs.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

// GetPreferences loads onboarding preferences for one user.
func (s *Store) GetPreferences(ctx context.Context, userID string) (storage.Preferences, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT user_id, onboarding_seen, onboarding_seen_at, tour_completed, tour_completed_at, created_at
FROM user_preferences
WHERE user_id = ?
`, userID)

	var prefs storage.Preferences
	var seen int
	var seenAt sql.NullInt64
	var tour int
	var tourAt sql.NullInt64
	var createdAt int64
	if err := row.Scan(&prefs.UserID, &seen, &seenAt, &tour, &tourAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Preferences{}, storage.ErrNotFound
		}
		return storage.Preferences{}, fmt.Errorf("select preferences: %w", err)
	}
	prefs.OnboardingSeen = seen != 0
	prefs.TourCompleted = tour != 0
	if seenAt.Valid {
		value := fromMillis(seenAt.Int64)
		prefs.OnboardingSeenAt = &value
	}
	if tourAt.Valid {
		value := fromMillis(tourAt.Int64)
		prefs.TourCompletedAt = &value
	}
	prefs.CreatedAt = fromMillis(createdAt)
	return prefs, nil
}

// PutRoleProfile persists the role-specific profile variant for a user.
func (s *Store) PutRoleProfile(ctx context.Context, userID string, profile identity.Profile) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("profile user id is required")
	}
	now := toMillis(time.Now().UTC())

	switch p := profile.(type) {
	case identity.RestaurantProfile:
		_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO restaurant_profiles (user_id, name, status, commission_bps, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	name = excluded.name,
	status = excluded.status,
	commission_bps = excluded.commission_bps
`, userID, p.Name, p.Status, p.CommissionBps, now)
		if err != nil {
			return fmt.Errorf("upsert restaurant profile: %w", err)
		}
		return nil
	case identity.CourierProfile:
		_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO courier_profiles (user_id, vehicle_type, status, account_state, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	vehicle_type = excluded.vehicle_type,
	status = excluded.status,
	account_state = excluded.account_state
`, userID, p.VehicleType, p.Status, p.AccountState, now)
		if err != nil {
			return fmt.Errorf("upsert courier profile: %w", err)
		}
		return nil
	case identity.ClientProfile:
		_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO client_profiles (user_id, status, created_at)
VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	status = excluded.status
`, userID, p.Status, now)
		if err != nil {
			return fmt.Errorf("upsert client profile: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported profile type %T", profile)
	}
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

package storage

import (
	"context"
	"time"

	"github.com/mealgrid/mealgrid/internal/platform/errors"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/identity"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ErrEmailTaken indicates a credential already exists for an email.
var ErrEmailTaken = errors.New(errors.CodeAlreadyExists, "email is already registered")

// CredentialInput describes a new authentication credential.
// The password is opaque to callers; the store is responsible for hashing.
type CredentialInput struct {
	ID             string
	Email          string
	Password       string
	EmailConfirmed bool
	Role           identity.Role
	CreatedAt      time.Time
}

// Credential is a stored authentication record.
type Credential struct {
	ID             string
	Email          string
	PasswordHash   string
	EmailConfirmed bool
	Role           identity.Role
	CreatedAt      time.Time
}

// CredentialStore is the authentication-provider surface used by provisioning
// and login. Email uniqueness is enforced here, not by callers.
type CredentialStore interface {
	CreateCredential(ctx context.Context, input CredentialInput) (string, error)
	GetCredentialByEmail(ctx context.Context, email string) (Credential, error)
}

// UserRecord mirrors a credential one-to-one and carries display attributes.
type UserRecord struct {
	ID          string
	DisplayName string
	Phone       string
	Email       string
	Role        identity.Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserStore persists marketplace user records.
type UserStore interface {
	PutUserRecord(ctx context.Context, record UserRecord) error
	GetUserRecord(ctx context.Context, userID string) (UserRecord, error)
	ListUserRecords(ctx context.Context) ([]UserRecord, error)
}

// LedgerAccount is a per-entity running balance record.
// Platform-category accounts carry no owning user.
type LedgerAccount struct {
	ID          string
	UserID      string
	AccountType string
	// Balance is the stored decimal string; aggregation coerces it.
	Balance   string
	CreatedAt time.Time
}

// AccountStore persists ledger accounts and exposes the balance read path.
type AccountStore interface {
	CreateLedgerAccount(ctx context.Context, account LedgerAccount) error
	ListLedgerAccounts(ctx context.Context) ([]LedgerAccount, error)
}

// Preferences holds per-user onboarding state, created with all flags unset.
type Preferences struct {
	UserID           string
	OnboardingSeen   bool
	OnboardingSeenAt *time.Time
	TourCompleted    bool
	TourCompletedAt  *time.Time
	CreatedAt        time.Time
}

// PreferencesStore persists user onboarding preferences.
type PreferencesStore interface {
	PutPreferences(ctx context.Context, prefs Preferences) error
	GetPreferences(ctx context.Context, userID string) (Preferences, error)
}

// ProfileStore persists the role-specific profile variant for a user.
type ProfileStore interface {
	PutRoleProfile(ctx context.Context, userID string, profile identity.Profile) error
}

// RestaurantListing is one restaurant row joined with its owner record.
type RestaurantListing struct {
	UserID        string
	OwnerName     string
	Name          string
	Status        string
	CommissionBps int
}

// CourierListing is one courier row joined with its owner record.
type CourierListing struct {
	UserID       string
	Name         string
	VehicleType  string
	Status       string
	AccountState string
}

// DirectoryStore exposes the listing reads backing cached dashboards.
type DirectoryStore interface {
	ListUserRecords(ctx context.Context) ([]UserRecord, error)
	ListRestaurants(ctx context.Context) ([]RestaurantListing, error)
	ListCouriers(ctx context.Context) ([]CourierListing, error)
}

// Transaction is one append-only ledger movement, joined for display with the
// owning account and user when those records resolve.
type Transaction struct {
	ID          string
	AccountID   string
	Amount      string
	Type        string
	Description string
	OrderRef    *string
	CreatedAt   time.Time

	// Joined display fields; nil when the account lookup fails and the
	// join is outer.
	AccountType    *string
	OwnerName      *string
	RestaurantName *string
}

// TransactionQuery filters and paginates the transaction log.
// Offset/Limit are resolved by the aggregator before reaching the store.
type TransactionQuery struct {
	Type        string
	AccountType string
	Start       *time.Time
	End         *time.Time
	Offset      int
	Limit       int
}

// TransactionPage is one page of transactions plus the pre-pagination count.
type TransactionPage struct {
	Transactions []Transaction
	TotalCount   int64
}

// TransactionStore reads and appends ledger transactions. Appends exist for
// seeding and order settlement; the aggregation core only reads.
type TransactionStore interface {
	AppendTransaction(ctx context.Context, tx Transaction) error
	ListTransactions(ctx context.Context, query TransactionQuery) (TransactionPage, error)
}

// DiagnosticEvent is one durable operational diagnostic.
type DiagnosticEvent struct {
	Source    string
	Severity  string
	Message   string
	Metadata  map[string]string
	Timestamp time.Time
}

// DiagnosticStore persists operational diagnostics.
type DiagnosticStore interface {
	AppendDiagnosticEvent(ctx context.Context, event DiagnosticEvent) error
}

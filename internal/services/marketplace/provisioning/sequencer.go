// Package provisioning orchestrates multi-record account creation.
package provisioning

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/mealgrid/mealgrid/internal/platform/errors"
	errori18n "github.com/mealgrid/mealgrid/internal/platform/errors/i18n"
	"github.com/mealgrid/mealgrid/internal/platform/id"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/directory"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/identity"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
	"github.com/mealgrid/mealgrid/internal/telemetry"
)

// Step identifies one write in the provisioning sequence.
type Step int

const (
	// StepNone indicates no step has failed.
	StepNone Step = iota
	// StepCredential creates the authentication credential.
	StepCredential
	// StepUserRecord creates the mirrored user record.
	StepUserRecord
	// StepLedgerAccount creates the zero-balance ledger account.
	StepLedgerAccount
	// StepPreferences creates the onboarding preferences row.
	StepPreferences
	// StepRoleProfile creates the role-specific profile variant.
	StepRoleProfile
)

// String names the step for diagnostics and user-facing messages.
func (s Step) String() string {
	switch s {
	case StepCredential:
		return "credential"
	case StepUserRecord:
		return "user record"
	case StepLedgerAccount:
		return "ledger account"
	case StepPreferences:
		return "preferences"
	case StepRoleProfile:
		return "role profile"
	default:
		return "none"
	}
}

// Result reports one provisioning run to the presentation layer.
//
// Failures are carried as structured state rather than raised errors so thin
// callers can render Message verbatim; Err keeps the domain error for
// diagnostics and programmatic checks.
type Result struct {
	Created    bool
	IdentityID string
	// Message is localized for the locale supplied in the input.
	Message    string
	FailedStep Step
	Err        error
}

// Stores bundles the five write surfaces one provisioning run touches.
type Stores struct {
	Credentials storage.CredentialStore
	Users       storage.UserStore
	Accounts    storage.AccountStore
	Preferences storage.PreferencesStore
	Profiles    storage.ProfileStore
}

// Notifier receives listing invalidation signals after successful runs.
type Notifier interface {
	Invalidate(topics ...directory.Topic)
}

// Sequencer creates a fully-formed platform identity across five dependent
// stores as one logical, strictly ordered, non-atomic operation.
//
// Each write starts only after the previous one is acknowledged. There is no
// retry and no compensation: a mid-sequence failure leaves earlier records in
// place. True multi-record atomicity needs a transaction boundary in the
// backing store, which this deployment does not have.
type Sequencer struct {
	stores      Stores
	notifier    Notifier
	diagnostics *telemetry.Emitter
	clock       func() time.Time
	idGenerator func() (string, error)
	tracer      trace.Tracer
}

// NewSequencer builds a sequencer over the given stores.
// The notifier and diagnostics emitter may be nil.
func NewSequencer(stores Stores, notifier Notifier, diagnostics *telemetry.Emitter) *Sequencer {
	return &Sequencer{
		stores:      stores,
		notifier:    notifier,
		diagnostics: diagnostics,
		clock:       time.Now,
		idGenerator: id.NewID,
		tracer:      otel.Tracer("mealgrid/marketplace/provisioning"),
	}
}

// WithClock overrides the time source, for deterministic tests.
func (s *Sequencer) WithClock(clock func() time.Time) *Sequencer {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// WithIDGenerator overrides id generation, for deterministic tests.
func (s *Sequencer) WithIDGenerator(generator func() (string, error)) *Sequencer {
	if generator != nil {
		s.idGenerator = generator
	}
	return s
}

// Provision runs the account creation sequence for one new identity.
//
// Preconditions are validated before any write; a violation returns a
// failure result with zero side effects. After validation the five writes
// run in fixed order, stopping at the first failure.
func (s *Sequencer) Provision(ctx context.Context, input identity.ProvisionInput) Result {
	catalog := errori18n.GetCatalog(input.Locale)

	normalized, err := identity.NormalizeProvisionInput(input)
	if err != nil {
		return s.failure(ctx, catalog, StepNone, err)
	}

	ctx, span := s.tracer.Start(ctx, "provisioning.run",
		trace.WithAttributes(attribute.String("identity.role", string(normalized.Role))))
	defer span.End()

	now := s.clock().UTC()

	identityID, err := s.idGenerator()
	if err != nil {
		return s.failure(ctx, catalog, StepCredential,
			apperrors.Wrap(apperrors.CodeProvisionStepFailed, "generate identity id", err))
	}

	steps := []struct {
		step Step
		run  func(context.Context) error
	}{
		{StepCredential, func(ctx context.Context) error {
			_, err := s.stores.Credentials.CreateCredential(ctx, storage.CredentialInput{
				ID:             identityID,
				Email:          normalized.Email,
				Password:       normalized.Password,
				EmailConfirmed: true,
				Role:           normalized.Role,
				CreatedAt:      now,
			})
			return err
		}},
		{StepUserRecord, func(ctx context.Context) error {
			return s.stores.Users.PutUserRecord(ctx, storage.UserRecord{
				ID:          identityID,
				DisplayName: normalized.DisplayName,
				Phone:       normalized.Phone,
				Email:       normalized.Email,
				Role:        normalized.Role,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}},
		{StepLedgerAccount, func(ctx context.Context) error {
			accountID, err := s.idGenerator()
			if err != nil {
				return err
			}
			return s.stores.Accounts.CreateLedgerAccount(ctx, storage.LedgerAccount{
				ID:          accountID,
				UserID:      identityID,
				AccountType: string(normalized.Role),
				Balance:     "0.00",
				CreatedAt:   now,
			})
		}},
		{StepPreferences, func(ctx context.Context) error {
			return s.stores.Preferences.PutPreferences(ctx, storage.Preferences{
				UserID:    identityID,
				CreatedAt: now,
			})
		}},
		{StepRoleProfile, func(ctx context.Context) error {
			profile, ok := identity.ProfileFor(normalized)
			if !ok {
				// Admin identities carry no profile row.
				return nil
			}
			return s.stores.Profiles.PutRoleProfile(ctx, identityID, profile)
		}},
	}

	for _, item := range steps {
		stepCtx, stepSpan := s.tracer.Start(ctx, "provisioning.step."+item.step.String())
		err := item.run(stepCtx)
		stepSpan.End()
		if err != nil {
			span.RecordError(err)
			return s.failure(ctx, catalog, item.step,
				apperrors.WrapWithMetadata(apperrors.CodeProvisionStepFailed, "provisioning step failed",
					map[string]string{"Step": item.step.String(), "Reason": err.Error()}, err))
		}
	}

	if s.notifier != nil {
		s.notifier.Invalidate(directory.TopicUsers, directory.TopicRestaurants, directory.TopicCouriers)
	}

	return Result{
		Created:    true,
		IdentityID: identityID,
		Message:    catalog.Format(errori18n.CodeProvisionCreated, nil),
	}
}

// failure records a diagnostic and converts the error into a caller-facing result.
func (s *Sequencer) failure(ctx context.Context, catalog *errori18n.Catalog, step Step, err error) Result {
	metadata := map[string]string{"step": step.String()}
	if domainErr, ok := err.(*apperrors.Error); ok {
		for key, value := range domainErr.Metadata {
			metadata[key] = value
		}
	}
	_ = s.diagnostics.Emit(ctx, telemetry.SeverityError, "provisioning", err.Error(), metadata)

	code := apperrors.CodeOf(err)
	var messageMeta map[string]string
	if domainErr, ok := err.(*apperrors.Error); ok {
		messageMeta = domainErr.Metadata
	}
	return Result{
		FailedStep: step,
		Message:    catalog.Format(string(code), messageMeta),
		Err:        err,
	}
}

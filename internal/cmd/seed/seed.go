// Package seed populates a marketplace database with demo data.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mealgrid/mealgrid/internal/platform/id"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/identity"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/provisioning"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage/sqlite"
	"github.com/mealgrid/mealgrid/internal/telemetry"
)

// Config holds seed command configuration.
type Config struct {
	DBPath   string
	Password string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		DBPath:   "data/marketplace.db",
		Password: "demo-password",
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the marketplace SQLite database")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "Password assigned to demo identities")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type demoIdentity struct {
	input    identity.ProvisionInput
	payments []string
}

// Run provisions demo identities and a balanced transaction history.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open marketplace store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close marketplace store: %v", err)
		}
	}()

	sequencer := provisioning.NewSequencer(provisioning.Stores{
		Credentials: store,
		Users:       store,
		Accounts:    store,
		Preferences: store,
		Profiles:    store,
	}, nil, telemetry.NewEmitter(store))

	identities := []demoIdentity{
		{
			input: identity.ProvisionInput{
				Email:          "ana@demo.mealgrid.dev",
				Password:       cfg.Password,
				DisplayName:    "Chef Ana",
				Role:           identity.RoleRestaurant,
				RestaurantName: "Casa da Ana",
			},
			payments: []string{"42.00", "18.50"},
		},
		{
			input: identity.ProvisionInput{
				Email:       "marco@demo.mealgrid.dev",
				Password:    cfg.Password,
				DisplayName: "Marco Silva",
				Role:        identity.RoleDeliveryAgent,
				VehicleType: "bicycle",
			},
			payments: []string{"7.25"},
		},
		{
			input: identity.ProvisionInput{
				Email:       "lia@demo.mealgrid.dev",
				Password:    cfg.Password,
				DisplayName: "Lia Costa",
				Role:        identity.RoleClient,
			},
			payments: []string{"-67.75"},
		},
	}

	for _, demo := range identities {
		result := sequencer.Provision(ctx, demo.input)
		if !result.Created {
			// Re-running against a seeded database is fine.
			if errors.Is(result.Err, storage.ErrEmailTaken) {
				log.Printf("identity %s already exists, skipping", demo.input.Email)
				continue
			}
			return fmt.Errorf("provision %s: %s", demo.input.Email, result.Message)
		}
		log.Printf("provisioned %s as %s", demo.input.Email, demo.input.Role)

		if err := seedTransactions(ctx, store, result.IdentityID, demo.payments); err != nil {
			return err
		}
	}

	return nil
}

// seedTransactions appends demo movements against the identity's account.
func seedTransactions(ctx context.Context, store *sqlite.Store, userID string, amounts []string) error {
	accounts, err := store.ListLedgerAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list ledger accounts: %w", err)
	}

	var accountID string
	for _, account := range accounts {
		if account.UserID == userID {
			accountID = account.ID
			break
		}
	}
	if accountID == "" {
		return fmt.Errorf("no ledger account for user %s", userID)
	}

	now := time.Now().UTC()
	for i, amount := range amounts {
		txID, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate transaction id: %w", err)
		}
		err = store.AppendTransaction(ctx, storage.Transaction{
			ID:          txID,
			AccountID:   accountID,
			Amount:      amount,
			Type:        "payment",
			Description: "demo order settlement",
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
	}
	return nil
}

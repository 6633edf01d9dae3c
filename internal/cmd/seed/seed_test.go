package seed

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage/sqlite"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/marketplace.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
}

func TestRunSeedsIdentitiesAndTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketplace.db")

	if err := Run(context.Background(), Config{DBPath: path, Password: "secret"}); err != nil {
		t.Fatalf("run seed: %v", err)
	}

	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	users, err := store.ListUserRecords(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 demo users, got %d", len(users))
	}

	accounts, err := store.ListLedgerAccounts(context.Background())
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 ledger accounts, got %d", len(accounts))
	}

	page, err := store.ListTransactions(context.Background(), storage.TransactionQuery{Limit: 20})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if page.TotalCount != 4 {
		t.Fatalf("expected 4 demo transactions, got %d", page.TotalCount)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketplace.db")

	if err := Run(context.Background(), Config{DBPath: path, Password: "secret"}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := Run(context.Background(), Config{DBPath: path, Password: "secret"}); err != nil {
		t.Fatalf("second run: %v", err)
	}

	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	users, err := store.ListUserRecords(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected rerun to skip existing identities, got %d users", len(users))
	}
}

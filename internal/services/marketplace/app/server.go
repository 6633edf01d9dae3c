// Package app wires the marketplace services into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	platformconfig "github.com/mealgrid/mealgrid/internal/platform/config"
	platformjwt "github.com/mealgrid/mealgrid/internal/platform/jwt"
	platformotel "github.com/mealgrid/mealgrid/internal/platform/otel"
	"github.com/mealgrid/mealgrid/internal/platform/timeouts"
	marketplacehttp "github.com/mealgrid/mealgrid/internal/services/marketplace/api/http"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/directory"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/identity"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/ledger"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/provisioning"
	marketplacesqlite "github.com/mealgrid/mealgrid/internal/services/marketplace/storage/sqlite"
	"github.com/mealgrid/mealgrid/internal/telemetry"
)

// Config holds marketplace server configuration sourced from the environment.
type Config struct {
	HTTPAddr      string        `env:"MEALGRID_HTTP_ADDR" envDefault:":8080"`
	DBPath        string        `env:"MEALGRID_DB_PATH" envDefault:"data/marketplace.db"`
	JWTSecret     string        `env:"MEALGRID_JWT_SECRET"`
	AccessTTL     time.Duration `env:"MEALGRID_ACCESS_TTL" envDefault:"1h"`
	DefaultLocale string        `env:"MEALGRID_DEFAULT_LOCALE" envDefault:"en-US"`

	AdminEmail    string `env:"MEALGRID_ADMIN_EMAIL"`
	AdminPassword string `env:"MEALGRID_ADMIN_PASSWORD"`
	AdminName     string `env:"MEALGRID_ADMIN_NAME" envDefault:"Platform Admin"`
}

// LoadConfig reads server configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := platformconfig.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Server hosts the marketplace HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *marketplacesqlite.Store
}

// New creates a configured marketplace server listening on the given address.
func New(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("MEALGRID_JWT_SECRET is required")
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	emitter := telemetry.NewEmitter(store)
	dir := directory.NewService(store, directory.Config{})
	sequencer := provisioning.NewSequencer(provisioning.Stores{
		Credentials: store,
		Users:       store,
		Accounts:    store,
		Preferences: store,
		Profiles:    store,
	}, dir, emitter)
	aggregator := ledger.NewAggregator(store, store, emitter)
	signer := platformjwt.NewSigner([]byte(cfg.JWTSecret), cfg.AccessTTL)

	if err := bootstrapAdmin(sequencer, store, cfg); err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	handler := marketplacehttp.NewHandler(sequencer, aggregator, dir, store, signer)
	httpServer := &http.Server{
		Handler:           handler.Router(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		listener:   listener,
		httpServer: httpServer,
		store:      store,
	}, nil
}

// Addr returns the listener address for the marketplace server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a marketplace server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.closeStore()

	shutdownOtel, err := platformotel.Setup(serverCtx, "mealgrid-marketplace")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		_ = shutdownOtel(shutdownCtx)
	}()

	log.Printf("marketplace server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func openStore(path string) (*marketplacesqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "marketplace.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := marketplacesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open marketplace sqlite store: %w", err)
	}
	return store, nil
}

// bootstrapAdmin provisions the configured admin identity on first boot.
// An existing credential for the email makes this a no-op.
func bootstrapAdmin(sequencer *provisioning.Sequencer, store *marketplacesqlite.Store, cfg Config) error {
	email := strings.TrimSpace(cfg.AdminEmail)
	password := cfg.AdminPassword
	if email == "" || password == "" {
		return nil
	}

	_, err := store.GetCredentialByEmail(context.Background(), email)
	if err == nil {
		return nil
	}

	result := sequencer.Provision(context.Background(), identity.ProvisionInput{
		Email:       email,
		Password:    password,
		DisplayName: cfg.AdminName,
		Role:        identity.RoleAdmin,
		Locale:      cfg.DefaultLocale,
	})
	if !result.Created {
		return fmt.Errorf("bootstrap admin: %s", result.Message)
	}
	log.Printf("bootstrapped admin identity %s", result.IdentityID)
	return nil
}

func (s *Server) closeStore() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close marketplace store: %v", err)
		}
	}
}

// Package server parses configuration for the marketplace server command.
package server

import (
	"context"
	"flag"

	"github.com/mealgrid/mealgrid/internal/services/marketplace/app"
)

// ParseConfig loads server configuration from the environment, then lets
// flags override the listen address and database path.
func ParseConfig(fs *flag.FlagSet, args []string) (app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The marketplace HTTP server address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the marketplace SQLite database")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

// Run starts the marketplace server.
func Run(ctx context.Context, cfg app.Config) error {
	return app.Run(ctx, cfg)
}

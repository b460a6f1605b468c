// Package main implements the entry point for the thermoledger server,
// which validates proposed quantum transitions and thermodynamic state
// changes against physical law, coordinates multi-validator consensus, and
// commits finalized decisions to a hash-chained energy ledger.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/thermoledger/thermoledger/internal/config"
	"github.com/thermoledger/thermoledger/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, wires the application, and serves until a
// shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_configured", cfg.Database.URL != "")

	ctx := context.Background()

	app, err := setupApp(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	app.auditor.Start()

	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}

// setupApp establishes the database connection (when configured), runs
// migrations, and constructs the application graph.
func setupApp(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	if cfg.Database.URL == "" {
		return newApplication(ctx, cfg, appLogger, nil)
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return newApplication(ctx, cfg, appLogger, db)
}

// Package main implements the entry point for the revision API server,
// which schedules students' flashcard reviews, runs revision sessions, and
// aggregates progress.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/revisehq/revision-api/internal/config"
	"github.com/revisehq/revision-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String(
		"migrate",
		"",
		"run a migration command (up, down, status) and exit",
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}

	if *migrateCmd != "" {
		if err := migrateOnly(cfg, appLogger, *migrateCmd); err != nil {
			appLogger.Error("migration failed", "command", *migrateCmd, "error", err)
			os.Exit(1)
		}
		appLogger.Info("migration completed", "command", *migrateCmd)
		return
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// migrateOnly runs a single migration command against the configured
// database and returns.
func migrateOnly(cfg *config.Config, appLogger *slog.Logger, command string) error {
	db, err := openDatabase(context.Background(), cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("error closing database connection", "error", closeErr)
		}
	}()

	return runMigrations(db, command)
}

// run wires the application together, applies pending migrations, and
// serves until SIGINT or SIGTERM.
func run(cfg *config.Config, appLogger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	closeDB := func() {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("error closing database connection", "error", closeErr)
		}
	}

	if err := runMigrations(db, "up"); err != nil {
		closeDB()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		// newApplication does not own the connection until it returns.
		closeDB()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"generation_enabled", app.generator != nil)

	return app.Run(ctx)
}

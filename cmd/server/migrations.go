package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// migrationCommands are the goose commands accepted by -migrate.
var migrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
}

// slogGooseLogger adapts slog to goose.Logger.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level. goose returns the error to the caller, so the
// process is not terminated here.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// validateMigrationCommand reports whether command is a supported goose command.
func validateMigrationCommand(command string) error {
	if !migrationCommands[command] {
		return fmt.Errorf("unsupported migration command %q (want up, down, status or version)", command)
	}
	return nil
}

// configureGoose points goose at the embedded migrations.
func configureGoose(logger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(postgres.MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// runMigrations executes a goose command against the configured database.
func runMigrations(cfg *config.Config, logger *slog.Logger, command string) error {
	if err := validateMigrationCommand(command); err != nil {
		return err
	}

	log := logger.With(slog.String("component", "migrations"), slog.String("command", command))

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("Failed to close database connection", "error", cerr)
		}
	}()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := configureGoose(log); err != nil {
		return err
	}

	log.Info("Running migrations")
	if err := goose.Run(command, db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}
	log.Info("Migrations finished")
	return nil
}

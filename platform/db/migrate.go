package db

import (
	"context"
	"database/sql"
	"fmt"

	"loanflow_backend/platform/config"
	"loanflow_backend/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver for goose
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending SQL migrations from the given directory.
// Goose tracks applied versions in the goose_db_version table, so running
// this on every startup is safe.
func RunMigrations(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger, dir string) error {
	sqlDB, err := sql.Open("pgx", cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer sqlDB.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	goose.SetLogger(goose.NopLogger())

	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	log.Info("migrations applied", "version", version)
	return nil
}

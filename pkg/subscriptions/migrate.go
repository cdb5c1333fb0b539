package subscriptions

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// RunMigrations runs a goose command ("up", "down", "status", "version",
// "redo", "up-to", "down-to") against db using the embedded migrations
func RunMigrations(ctx context.Context, db *sql.DB, driver, command string, args ...string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect(driver)); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, migrationsDir, args...); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}

// Migrate applies all pending migrations
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	return RunMigrations(ctx, db, driver, "up")
}

func dialect(driver string) string {
	if driver == "sqlite3" {
		return "sqlite3"
	}
	return "postgres"
}

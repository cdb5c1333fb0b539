package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver for local runs and tests
)

// OpenDB opens and pings the configured SQL database
func OpenDB(cfg Config) (*sql.DB, error) {
	switch cfg.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.DatabaseDriver)
	}

	db, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.DatabaseDriver == "sqlite3" {
		// SQLite serialises writers; a single connection avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.DatabaseMaxConns)
		db.SetMaxIdleConns(cfg.DatabaseMinConns)
		db.SetConnMaxLifetime(cfg.DatabaseMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DatabaseTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

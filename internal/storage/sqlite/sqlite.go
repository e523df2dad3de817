// Package sqlite provides a file-backed run store for local, single-user setups.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"wager-lab/internal/observability"
	"wager-lab/internal/storage/migrations"
)

// DB wraps sql.DB opened on the sqlite3 driver.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path in WAL mode and applies migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer; WAL lets readers proceed concurrently.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db}, nil
}

// isDuplicateKeyError checks if error is a PRIMARY KEY or UNIQUE violation.
func isDuplicateKeyError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func observe(operation string, start time.Time, err error) {
	observability.RecordDBQuery("sqlite", operation, time.Since(start).Seconds(), err)
}

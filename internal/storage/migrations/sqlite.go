package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// RunSQLiteMigrations applies all embedded SQLite files inside one transaction.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	files, err := loadFiles(SQLiteFS, "sqlite")
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, f := range files {
		stmts, err := f.statements()
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", f.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

package migrations

import (
	"context"
	"fmt"

	"wager-lab/internal/storage/postgres"
)

// RunPostgresMigrations applies all embedded PostgreSQL files in lexical order.
// Migrations are idempotent (CREATE ... IF NOT EXISTS), so this is safe on every start.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := loadFiles(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, f := range files {
		if _, err := pool.Exec(ctx, f.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", f.Name, err)
		}
	}
	return nil
}

package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migration is one forward-only schema step
type Migration struct {
	Version int
	Name    string
	SQL     string
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrate applies every migration whose version is not yet recorded. Each step
// runs in its own transaction together with its bookkeeping row.
func (db *DB) Migrate(ctx context.Context, migrations []Migration) (int, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var applied []int
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	count := 0
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		err := db.Transaction(ctx, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name)
			return err
		})
		if err != nil {
			return count, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		db.logger.Info().Int("version", m.Version).Str("name", m.Name).Msg("applied migration")
		count++
	}
	return count, nil
}

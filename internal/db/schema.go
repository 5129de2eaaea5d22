package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables on first boot so a fresh database works
// without a migration step.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS foods (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL REFERENCES users(username),
			name TEXT NOT NULL,
			qty DOUBLE PRECISION NOT NULL,
			alert_expiry TIMESTAMPTZ NOT NULL,
			display_expiry TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS foods_owner_idx ON foods(owner)`,
		`CREATE INDEX IF NOT EXISTS foods_alert_expiry_idx ON foods(alert_expiry)`,
		`CREATE TABLE IF NOT EXISTS notification_deliveries (
			tag TEXT NOT NULL,
			owner TEXT NOT NULL,
			digest TEXT NOT NULL,
			status TEXT NOT NULL,
			last_error TEXT,
			sent_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (tag, owner)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

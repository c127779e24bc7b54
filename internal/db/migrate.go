package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// migrations are applied in order and recorded in schema_migrations. The
// DDL is limited to what SQLite and PostgreSQL both accept. Append only.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		name_key      TEXT NOT NULL UNIQUE,
		status        TEXT NOT NULL DEFAULT 'Created',
		completion    INTEGER NOT NULL DEFAULT 0 CHECK (completion BETWEEN 0 AND 100),
		delayed_tasks INTEGER NOT NULL DEFAULT 0 CHECK (delayed_tasks >= 0),
		total_tasks   INTEGER NOT NULL DEFAULT 0 CHECK (total_tasks >= 0),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS allocations (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		team       TEXT NOT NULL,
		task_count INTEGER NOT NULL CHECK (task_count >= 0),
		sort_order INTEGER NOT NULL,
		UNIQUE (project_id, team)
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		id             TEXT PRIMARY KEY,
		allocation_id  TEXT NOT NULL REFERENCES allocations(id) ON DELETE CASCADE,
		name           TEXT NOT NULL,
		assigned_tasks INTEGER NOT NULL DEFAULT 0,
		sort_order     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_allocations_project ON allocations(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_members_allocation ON team_members(allocation_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS session_refs (
		session_id   TEXT PRIMARY KEY,
		project_name TEXT NOT NULL,
		expires_at   TEXT NOT NULL
	)`,
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
)`

// Migrate applies every migration not yet recorded. Each one runs in its
// own transaction together with its bookkeeping row.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var applied []int
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	uow := NewUnitOfWork(db)
	for i, stmt := range migrations {
		version := i + 1
		if done[version] {
			continue
		}
		err := uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				tx.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`),
				version, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d: %w", version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration.
func SchemaVersion(ctx context.Context, db *sqlx.DB) (int, error) {
	var v int
	err := db.GetContext(ctx, &v, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	return v, err
}

// LatestVersion is the version Migrate brings a database to.
func LatestVersion() int {
	return len(migrations)
}

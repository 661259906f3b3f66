package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a schema migration step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus reports the current and available migration versions.
type MigrationStatus struct {
	CurrentVersion   int             `json:"current_version" yaml:"current_version"`
	AvailableVersion int             `json:"available_version" yaml:"available_version"`
	Pending          []MigrationInfo `json:"pending" yaml:"pending"`
}

// MigrationInfo describes a single migration.
type MigrationInfo struct {
	Version     int    `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
}

// migrations is the ordered list of all schema migrations.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: pastes and tokens tables",
		SQL: `
CREATE TABLE IF NOT EXISTS pastes (
  id TEXT PRIMARY KEY NOT NULL,
  size INTEGER,
  filename TEXT,
  timestamp INTEGER
);

CREATE TABLE IF NOT EXISTS tokens (
  value TEXT,
  created_at INTEGER
);
`,
	},
	{
		Version:     2,
		Description: "unique token values",
		SQL: `
DELETE FROM tokens
WHERE rowid NOT IN (SELECT MIN(rowid) FROM tokens GROUP BY value);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tokens_value ON tokens(value);
`,
	},
	{
		Version:     3,
		Description: "add digest column to pastes",
		SQL: `
ALTER TABLE pastes ADD COLUMN digest TEXT;
`,
	},
}

const migrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TEXT NOT NULL
);
`

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, migrationsTableSQL)
	return err
}

// currentVersion returns the highest applied migration version, or 0 if none.
func currentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// detectPreMigrationDB reports whether the pastes table exists without any
// recorded migration, i.e. a database created by an earlier build that only
// ran CREATE TABLE IF NOT EXISTS at startup.
func detectPreMigrationDB(ctx context.Context, db *sql.DB) (bool, error) {
	var pastesExist int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='pastes'").Scan(&pastesExist)
	if err != nil {
		return false, err
	}
	if pastesExist == 0 {
		return false, nil
	}

	var migrationsExist int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'").Scan(&migrationsExist)
	if err != nil {
		return false, err
	}
	if migrationsExist == 0 {
		return true, nil
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func sortedMigrations() []Migration {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return sorted
}

// runMigrations applies all pending migrations in order.
func runMigrations(ctx context.Context, db *sql.DB) error {
	// Detect pre-migration databases BEFORE creating the migrations table.
	preMigration, err := detectPreMigrationDB(ctx, db)
	if err != nil {
		return fmt.Errorf("detect pre-migration db: %w", err)
	}

	if err := ensureMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	if preMigration {
		if _, err := db.ExecContext(ctx, "INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))", 1); err != nil {
			return fmt.Errorf("stamp pre-migration db: %w", err)
		}
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range sortedMigrations() {
		if m.Version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))", m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// MigrationPlan returns the current migration status without applying anything.
func MigrationPlan(ctx context.Context, db *sql.DB) (*MigrationStatus, error) {
	preMigration, err := detectPreMigrationDB(ctx, db)
	if err != nil {
		return nil, err
	}

	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, err
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return nil, err
	}

	effective := current
	if preMigration && effective == 0 {
		effective = 1
	}

	sorted := sortedMigrations()
	available := 0
	if len(sorted) > 0 {
		available = sorted[len(sorted)-1].Version
	}

	pending := []MigrationInfo{}
	for _, m := range sorted {
		if m.Version > effective {
			pending = append(pending, MigrationInfo{Version: m.Version, Description: m.Description})
		}
	}

	return &MigrationStatus{
		CurrentVersion:   effective,
		AvailableVersion: available,
		Pending:          pending,
	}, nil
}

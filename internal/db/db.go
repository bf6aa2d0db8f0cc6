package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"seam/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Query functions accept it so operations can compose inside transactions.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Init initializes the SQLite database at baseDir/seam.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.seam.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas in the connection string apply to all pooled connections.
	dbPath := filepath.Join(baseDir, "seam.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(database); err != nil {
		database.Close()
		return nil, err
	}

	if err := migrate(database); err != nil {
		database.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return database, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(database *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(database *sql.DB) error {
	version, err := GetUserVersion(database)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS documents (
		  id           TEXT PRIMARY KEY,
		  owner_id     TEXT NOT NULL,
		  title        TEXT NOT NULL,
		  text         TEXT NOT NULL,
		  source_type  TEXT NOT NULL DEFAULT '',
		  created_at   INTEGER NOT NULL,
		  deleted_at   INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_documents_owner
		ON documents(owner_id, created_at DESC)
		WHERE deleted_at IS NULL;

		CREATE TABLE IF NOT EXISTS document_versions (
		  id             TEXT PRIMARY KEY,
		  document_id    TEXT NOT NULL,
		  version_number INTEGER NOT NULL,
		  title          TEXT NOT NULL,
		  text           TEXT NOT NULL,
		  created_by     TEXT NOT NULL,
		  created_at     INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_versions_doc_number
		ON document_versions(document_id, version_number);

		CREATE TABLE IF NOT EXISTS segments (
		  id           TEXT PRIMARY KEY,
		  document_id  TEXT NOT NULL,
		  mode         TEXT NOT NULL,
		  order_index  INTEGER NOT NULL,
		  is_manual    INTEGER NOT NULL DEFAULT 0,
		  title        TEXT NOT NULL DEFAULT '',
		  content      TEXT NOT NULL,
		  start_char   INTEGER NOT NULL DEFAULT 0,
		  end_char     INTEGER NOT NULL DEFAULT 0,
		  created_at   INTEGER NOT NULL,
		  deleted_at   INTEGER
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_segments_doc_mode_order
		ON segments(document_id, mode, order_index)
		WHERE deleted_at IS NULL;

		CREATE INDEX IF NOT EXISTS idx_segments_doc
		ON segments(document_id, mode, is_manual)
		WHERE deleted_at IS NULL;

		CREATE TABLE IF NOT EXISTS segment_links (
		  id              TEXT PRIMARY KEY,
		  from_segment_id TEXT NOT NULL,
		  to_segment_id   TEXT NOT NULL,
		  link_type       TEXT NOT NULL,
		  notes           TEXT,
		  created_by      TEXT NOT NULL,
		  created_at      INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_links_from_to_type
		ON segment_links(from_segment_id, to_segment_id, link_type);

		CREATE INDEX IF NOT EXISTS idx_links_to
		ON segment_links(to_segment_id);

		CREATE TABLE IF NOT EXISTS folders (
		  id           TEXT PRIMARY KEY,
		  owner_id     TEXT NOT NULL,
		  document_id  TEXT NOT NULL,
		  name         TEXT NOT NULL,
		  created_at   INTEGER NOT NULL,
		  deleted_at   INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_folders_doc
		ON folders(document_id)
		WHERE deleted_at IS NULL;

		CREATE TABLE IF NOT EXISTS folder_items (
		  id          TEXT PRIMARY KEY,
		  folder_id   TEXT NOT NULL,
		  segment_id  TEXT NOT NULL,
		  created_at  INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_folder_items_folder_segment
		ON folder_items(folder_id, segment_id);
		`
		if _, err := database.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(database, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(database *sql.DB) error {
	var journalMode string
	if err := database.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(database *sql.DB) (int, error) {
	var version int
	if err := database.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(database *sql.DB, version int) error {
	_, err := database.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

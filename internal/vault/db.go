package vault

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// currentSchemaVersion is the latest schema version, tracked via
// PRAGMA user_version. Bump when adding migrations.
const currentSchemaVersion = 1

// Store owns every persisted record: sessions with their items, the
// settings record and the single-slot last-capture result.
type Store struct {
	db *sql.DB
}

// Open initializes the SQLite database at baseDir/tabvault.db, creating
// the directory and running migrations as needed.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create base dir: %w", err)
	}

	dbPath := filepath.Join(baseDir, "tabvault.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("vault: open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("vault: read user_version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS sessions (
		  id            TEXT PRIMARY KEY,
		  title         TEXT NOT NULL,
		  created_at    INTEGER NOT NULL,
		  skipped_count INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS session_items (
		  session_id   TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		  position     INTEGER NOT NULL,
		  title        TEXT NOT NULL,
		  url          TEXT NOT NULL,
		  fav_icon_ref TEXT NOT NULL DEFAULT '',
		  PRIMARY KEY (session_id, position)
		);

		CREATE TABLE IF NOT EXISTS records (
		  key   TEXT PRIMARY KEY,
		  value TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("vault: apply schema v1: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("vault: set user_version: %w", err)
		}
	}
	return nil
}

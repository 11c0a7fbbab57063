// Embedded backend: SQLite via modernc.org/sqlite.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed, works
// everywhere Go works.
//
// CONNECTION DISCIPLINE:
// The *sql.DB pool is the process-wide shared handle. This package does no
// locking of its own; concurrent writes are serialized by SQLite itself
// (WAL journal mode lets reads proceed during a write). Callers get no
// cross-request transactional isolation beyond what the engine provides.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// sqliteStore implements Store against a local SQLite file.
type sqliteStore struct {
	conn *sql.DB
}

// compile-time check that *sqliteStore implements Store
var _ Store = (*sqliteStore)(nil)

// newSQLiteStore opens the database file (":memory:" for tests), configures
// pragmas, and creates the schema idempotently.
func newSQLiteStore(dbPath string) (*sqliteStore, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open only builds the pool; Ping forces a real connection so a bad
	// path or permissions problem surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — important for
	// a web server sharing one pool across requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The goals and user_courses
	// tables rely on ON DELETE CASCADE, so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	s := &sqliteStore{conn: conn}

	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return s, nil
}

func (s *sqliteStore) Mode() Mode { return ModeEmbedded }

func (s *sqliteStore) Close() error {
	return s.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every startup; there is deliberately no migration tooling here.
//
// Structured fields (preferences, goals, progress, lessons, tags, sdg_ids)
// are stored as JSON text with non-null empty-container defaults, so a
// freshly inserted row always decodes cleanly.
func (s *sqliteStore) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			preferences   TEXT NOT NULL DEFAULT '{}',
			goals         TEXT NOT NULL DEFAULT '[]',
			progress      TEXT NOT NULL DEFAULT '[]',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS courses (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			duration    TEXT NOT NULL DEFAULT '',
			level       TEXT NOT NULL DEFAULT '',
			lessons     TEXT NOT NULL DEFAULT '[]',
			image       TEXT NOT NULL DEFAULT '',
			instructor  TEXT NOT NULL DEFAULT '',
			tags        TEXT NOT NULL DEFAULT '[]',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating courses table: %w", err)
	}

	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_courses (
			user_id      TEXT NOT NULL,
			course_id    TEXT NOT NULL,
			progress     INTEGER NOT NULL DEFAULT 0,
			completed    BOOLEAN NOT NULL DEFAULT FALSE,
			started_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME,
			PRIMARY KEY (user_id, course_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return fmt.Errorf("creating user_courses table: %w", err)
	}

	_, err = s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS goals (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			virtue_id   TEXT NOT NULL DEFAULT '',
			sdg_ids     TEXT NOT NULL DEFAULT '[]',
			progress    INTEGER NOT NULL DEFAULT 0,
			completed   BOOLEAN NOT NULL DEFAULT FALSE,
			target      INTEGER NOT NULL DEFAULT 1,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating goals table: %w", err)
	}

	return nil
}

// encodeJSON and decodeJSON are the paired boundary between structured Go
// values and their on-disk JSON text form. EVERY read and write of a
// structured column goes through this pair — a forgotten decode is the
// classic defect with blob-encoded columns, so no call site is allowed to
// inline its own json.Marshal/Unmarshal.

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding JSON column: %w", err)
	}
	return string(b), nil
}

func decodeJSON(src string, dst any) error {
	if src == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(src), dst); err != nil {
		return fmt.Errorf("sqlite: decoding JSON column: %w", err)
	}
	return nil
}

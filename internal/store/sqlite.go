// internal/store/sqlite.go
//
// SQLite-backed SessionStore. Each room is one row holding the full session
// document as JSON; a write replaces the whole document, mirroring the
// last-writer-wins contract of the interface. The change feed is
// in-process: a single server owns the database file and fans writes out
// to its own subscribers (the websocket layer), which is the deployment
// shape this server targets.
//
// Responsibilities:
//   - Open the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Bootstrap the sessions table.
//   - Put/Get/Delete the JSON document, publishing each write to the feed.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fishbowlhq/go-server/internal/game"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	code       TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStore is the durable SessionStore. It satisfies SessionStore.
type SQLiteStore struct {
	db   *sql.DB
	feed *feed
}

// OpenSQLite opens (and creates if missing) the database file at dsn and
// returns a durable SessionStore on top of it.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	// Ensure directory exists for ./data/rooms.db, etc.
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(sessionsSchema); err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &SQLiteStore{db: db, feed: newFeed()}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Put(ctx context.Context, doc *game.Session) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", doc.Code, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (code, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		doc.Code, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("put session %s: %w", doc.Code, err)
	}
	s.feed.publish(doc.Code, doc)
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, code string) (*game.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE code = ?`, code).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", code, err)
	}
	var doc game.Session
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", code, err)
	}
	return &doc, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", code, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.feed.publish(code, nil)
	return nil
}

func (s *SQLiteStore) Subscribe(code string, onChange func(*game.Session)) (cancel func()) {
	return s.feed.subscribe(code, onChange)
}

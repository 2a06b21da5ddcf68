// Package history keeps an audit trail of heard utterances and executed
// commands in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// Kind classifies a history entry.
type Kind string

const (
	// KindHeard is any speech the transcriber produced.
	KindHeard Kind = "heard"
	// KindCommand is an executed command, successful or not.
	KindCommand Kind = "command"
	// KindUnrecognized is a command no rule understood.
	KindUnrecognized Kind = "unrecognized"
)

// Entry is one history row.
type Entry struct {
	ID        string        `json:"id"`
	Time      time.Time     `json:"time"`
	Kind      Kind          `json:"kind"`
	Text      string        `json:"text"`
	FullText  string        `json:"full_text,omitempty"`
	Driver    string        `json:"driver,omitempty"`
	Intent    string        `json:"intent,omitempty"`
	Target    string        `json:"target,omitempty"`
	OK        bool          `json:"ok"`
	Error     string        `json:"error,omitempty"`
	Failure   string        `json:"failure,omitempty"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
	CommandID string        `json:"command_id,omitempty"`
}

// Store persists entries.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and creates if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		ts DATETIME NOT NULL,
		kind TEXT NOT NULL,
		text TEXT NOT NULL,
		full_text TEXT NOT NULL DEFAULT '',
		driver TEXT NOT NULL DEFAULT '',
		intent TEXT NOT NULL DEFAULT '',
		target TEXT NOT NULL DEFAULT '',
		ok INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		failure TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		command_id TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_history_kind ON history(kind, id DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path is the database file.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts e, assigning its ID and time when unset.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if e.ID == "" {
		e.ID = ulid.MustNew(ulid.Timestamp(e.Time), ulid.DefaultEntropy()).String()
	}
	if e.FullText == "" {
		e.FullText = e.Text
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, ts, kind, text, full_text, driver, intent, target, ok, error, failure, duration_ms, command_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Time.UTC(), string(e.Kind), e.Text, e.FullText, e.Driver, e.Intent, e.Target,
		e.OK, e.Error, e.Failure, e.Duration.Milliseconds(), e.CommandID)
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// List returns the newest entries first. An empty kind lists every kind.
func (s *Store) List(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, ts, kind, text, full_text, driver, intent, target, ok, error, failure, duration_ms, command_id
		FROM history`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var k string
		var ms int64
		if err := rows.Scan(&e.ID, &e.Time, &k, &e.Text, &e.FullText, &e.Driver, &e.Intent, &e.Target,
			&e.OK, &e.Error, &e.Failure, &ms, &e.CommandID); err != nil {
			return nil, err
		}
		e.Kind = Kind(k)
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListUnrecognized returns the newest commands no rule understood.
func (s *Store) ListUnrecognized(ctx context.Context, limit int) ([]Entry, error) {
	return s.List(ctx, KindUnrecognized, limit)
}

// Package watchlist persists the tickers a user is tracking in SQLite.
package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"
)

var (
	// ErrAlreadyWatched is returned when adding a ticker that is already listed.
	ErrAlreadyWatched = errors.New("ticker already on watchlist")
	// ErrNotWatched is returned when removing a ticker that is not listed.
	ErrNotWatched = errors.New("ticker not on watchlist")
)

const schema = `
CREATE TABLE IF NOT EXISTS watchlist (
	id       TEXT PRIMARY KEY,
	ticker   TEXT NOT NULL UNIQUE,
	note     TEXT NOT NULL DEFAULT '',
	added_at INTEGER NOT NULL
)`

// Entry is one watched ticker
type Entry struct {
	ID      string    `json:"id"`
	Ticker  string    `json:"ticker"`
	Note    string    `json:"note,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// Store is a SQLite backed watchlist
type Store struct {
	conn *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the watchlist database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{conn: conn, path: path, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Add starts watching ticker
func (s *Store) Add(ctx context.Context, ticker, note string) (*Entry, error) {
	ticker = normalize(ticker)
	if ticker == "" {
		return nil, errors.New("ticker is required")
	}

	entry := &Entry{
		ID:      uuid.New().String(),
		Ticker:  ticker,
		Note:    strings.TrimSpace(note),
		AddedAt: s.now().UTC(),
	}

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO watchlist (id, ticker, note, added_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(ticker) DO NOTHING`,
		entry.ID, entry.Ticker, entry.Note, entry.AddedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", ticker, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrAlreadyWatched)
	}
	return entry, nil
}

// List returns every entry, oldest first
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, ticker, note, added_at FROM watchlist ORDER BY added_at, ticker`)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var addedAt int64
		if err := rows.Scan(&e.ID, &e.Ticker, &e.Note, &addedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist row: %w", err)
		}
		e.AddedAt = time.Unix(0, addedAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Tickers returns just the watched symbols, oldest first
func (s *Store) Tickers(ctx context.Context) ([]string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Ticker
	}
	return out, nil
}

// Remove stops watching ticker
func (s *Store) Remove(ctx context.Context, ticker string) error {
	ticker = normalize(ticker)
	res, err := s.conn.ExecContext(ctx, `DELETE FROM watchlist WHERE ticker = ?`, ticker)
	if err != nil {
		return fmt.Errorf("remove %s: %w", ticker, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove %s: %w", ticker, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", ticker, ErrNotWatched)
	}
	return nil
}

// internal/writer/sqlite/store.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps the report identity for one channel in SQLite.
type Store struct {
	db        *sql.DB
	channelID string

	mu        sync.Mutex
	messageID string
	createdAt time.Time
}

// Open opens (or creates) the database at path and loads the identity
// for channelID. seed is adopted when the table has no row for the
// channel yet, so an identity from the config file carries over.
func Open(ctx context.Context, path, channelID, seed string) (*Store, error) {
	if channelID == "" {
		return nil, errors.New("sqlite store: channel id required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite store: ensure dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, channelID: channelID}
	if err := s.load(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if s.messageID == "" && seed != "" {
		if err := s.SaveMessageID(ctx, seed); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS report_identity (
    channel_id TEXT PRIMARY KEY,
    message_id TEXT NOT NULL,
    created_at INTEGER NOT NULL
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite store: schema: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) error {
	var id string
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT message_id, created_at FROM report_identity WHERE channel_id = ?`,
		s.channelID,
	).Scan(&id, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sqlite store: load: %w", err)
	}
	s.messageID = id
	s.createdAt = time.Unix(created, 0)
	return nil
}

// MessageID returns the current report identity ("" when absent).
func (s *Store) MessageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID
}

// CreatedAt is when the current identity was saved (zero when absent).
func (s *Store) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}

// SaveMessageID upserts the identity. The in-memory value is updated
// first and kept even if the write fails. The upsert ignores the
// caller's cancellation so an identity created at a deadline is kept.
func (s *Store) SaveMessageID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.messageID = id
	s.createdAt = now

	_, err := s.db.ExecContext(context.WithoutCancel(ctx), `
INSERT INTO report_identity (channel_id, message_id, created_at)
VALUES (?, ?, ?)
ON CONFLICT(channel_id) DO UPDATE SET
    message_id = excluded.message_id,
    created_at = excluded.created_at`,
		s.channelID, id, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite store: save: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

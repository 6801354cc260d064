package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// InvocationEntry is one recorded invocation.
type InvocationEntry struct {
	ID         string    `json:"id"`
	Shape      string    `json:"shape"`
	Method     string    `json:"method"`
	URI        string    `json:"uri"`
	StatusCode int       `json:"status_code"`
	LatencyMS  float64   `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// InvocationStore persists an audit trail of invocations handled by the
// local emulator.
type InvocationStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	id          TEXT PRIMARY KEY,
	shape       TEXT NOT NULL,
	method      TEXT NOT NULL,
	uri         TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	latency_ms  REAL NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations(created_at);
`

// Open opens (creating if needed) the store at the given path. The schema is
// applied idempotently.
func Open(path string, logger *logrus.Logger) (*InvocationStore, error) {
	if logger == nil {
		logger = logrus.New()
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open invocation store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply invocation store schema: %w", err)
	}

	return &InvocationStore{db: db, logger: logger}, nil
}

// Record inserts one invocation entry. Failures are returned, not fatal; the
// emulator logs and keeps serving.
func (s *InvocationStore) Record(ctx context.Context, entry *InvocationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (id, shape, method, uri, status_code, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Shape, entry.Method, entry.URI, entry.StatusCode, entry.LatencyMS, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record invocation %s: %w", entry.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *InvocationStore) Recent(ctx context.Context, limit int) ([]*InvocationEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, shape, method, uri, status_code, latency_ms, created_at
		FROM invocations
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()

	var entries []*InvocationEntry
	for rows.Next() {
		entry := &InvocationEntry{}
		if err := rows.Scan(&entry.ID, &entry.Shape, &entry.Method, &entry.URI,
			&entry.StatusCode, &entry.LatencyMS, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *InvocationStore) Close() error {
	return s.db.Close()
}

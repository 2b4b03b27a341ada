package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by Get when no entry exists for the requested key.
var ErrNotFound = errors.New("key not found")

// KV is the get/put/delete surface over the string-keyed store. Values are
// opaque byte blobs; callers decide the encoding (JSON throughout this app).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store extends KV with lifecycle and maintenance operations.
type Store interface {
	KV

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RunMaintenance performs database maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface backed by sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get retrieves the value stored under key, or ErrNotFound.
func (s *sqlxStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("cannot get empty key")
	}

	var value []byte
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_entries WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read entry", "key", key, "error", err)
		return nil, fmt.Errorf("failed to read entry %q: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (s *sqlxStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("cannot put empty key")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to write entry", "key", key, "error", err)
		return fmt.Errorf("failed to write entry %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry under key. Deleting a missing key is not an error.
func (s *sqlxStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("cannot delete empty key")
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete entry", "key", key, "error", err)
		return fmt.Errorf("failed to delete entry %q: %w", key, err)
	}
	return nil
}

// RunMaintenance performs database maintenance tasks (ANALYZE and VACUUM).
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running database maintenance (ANALYZE, VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("failed to run ANALYZE: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to run VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed.")
	return nil
}

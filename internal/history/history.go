// Package history persists the conversation transcript for the chat path,
// one JSON blob per resolved history key.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"scopebot/internal/database"
)

// Entry is one turn of a conversation.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Store reads and writes conversation transcripts in the key-value store.
type Store struct {
	kv     database.KV
	logger *slog.Logger
}

// NewStore creates a Store over the given key-value backend.
func NewStore(kv database.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{kv: kv, logger: logger.With("component", "history_store")}
}

// Load returns the transcript stored under key. A missing or unparseable
// blob yields an empty transcript; the chat path starts fresh rather than
// failing the request.
func (s *Store) Load(ctx context.Context, key string) []Entry {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.logger.WarnContext(ctx, "Failed to fetch history, starting empty", "key", key, "error", err)
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.WarnContext(ctx, "Failed to parse history, starting empty", "key", key, "error", err)
		return nil
	}
	return entries
}

// Save writes the full transcript under key.
func (s *Store) Save(ctx context.Context, key string, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to serialize history: %w", err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}
	return nil
}

// Clear removes the transcript under key. Clearing an absent transcript
// succeeds.
func (s *Store) Clear(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Trim caps a transcript to its most recent max entries.
func Trim(entries []Entry, max int) []Entry {
	if max <= 0 || len(entries) <= max {
		return entries
	}
	return entries[len(entries)-max:]
}

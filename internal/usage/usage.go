// Package usage maintains per-bot token counters, aggregated in total and
// per chat, under the usage:{botID} key.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"scopebot/internal/database"
)

// Counters is the persisted usage blob.
type Counters struct {
	Tokens TokenCounters `json:"tokens"`
}

// TokenCounters aggregates consumed tokens.
type TokenCounters struct {
	Total int64            `json:"total"`
	Chats map[string]int64 `json:"chats"`
}

// Tracker reads and updates usage counters in the key-value store.
type Tracker struct {
	kv     database.KV
	logger *slog.Logger
}

// NewTracker creates a Tracker over the given key-value backend.
func NewTracker(kv database.KV, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{kv: kv, logger: logger.With("component", "usage_tracker")}
}

// Load returns the counters stored under key, or zero counters when nothing
// is stored yet.
func (t *Tracker) Load(ctx context.Context, key string) (*Counters, error) {
	raw, err := t.kv.Get(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return &Counters{Tokens: TokenCounters{Chats: map[string]int64{}}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usage counters: %w", err)
	}

	var counters Counters
	if err := json.Unmarshal(raw, &counters); err != nil {
		return nil, fmt.Errorf("failed to parse usage counters: %w", err)
	}
	if counters.Tokens.Chats == nil {
		counters.Tokens.Chats = map[string]int64{}
	}
	return &counters, nil
}

// Record adds tokens to the total and to the chat's own counter. The update
// is read-modify-write; concurrent writers are last-write-wins, acceptable
// for single-operator namespaces.
func (t *Tracker) Record(ctx context.Context, key string, chatID int64, tokens int) error {
	if tokens <= 0 {
		return nil
	}

	counters, err := t.Load(ctx, key)
	if err != nil {
		t.logger.WarnContext(ctx, "Failed to load usage counters, starting fresh", "key", key, "error", err)
		counters = &Counters{Tokens: TokenCounters{Chats: map[string]int64{}}}
	}

	counters.Tokens.Total += int64(tokens)
	counters.Tokens.Chats[strconv.FormatInt(chatID, 10)] += int64(tokens)

	raw, err := json.Marshal(counters)
	if err != nil {
		return fmt.Errorf("failed to serialize usage counters: %w", err)
	}
	if err := t.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to persist usage counters: %w", err)
	}
	return nil
}

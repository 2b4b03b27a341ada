package userconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"scopebot/internal/database"
)

// Store loads and saves per-conversation configuration blobs. Load never
// fails a request: any storage or parse problem falls back to the compiled
// defaults.
type Store struct {
	kv       database.KV
	defaults *Config
	logger   *slog.Logger
}

// NewStore creates a Store over the given key-value backend. defaults is the
// immutable baseline every loaded config starts from.
func NewStore(kv database.KV, defaults *Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if defaults.Roles == nil {
		defaults.Roles = make(map[string]*RolePreset)
	}
	if defaults.ExtraParams == nil {
		defaults.ExtraParams = make(map[string]any)
	}
	return &Store{
		kv:       kv,
		defaults: defaults,
		logger:   logger.With("component", "userconfig_store"),
	}
}

// Defaults returns a fresh copy of the baseline configuration.
func (s *Store) Defaults() *Config {
	return s.defaults.Clone()
}

// Load fetches the blob stored under key and overlays it onto a copy of the
// defaults. Stored fields whose type no longer matches the schema are
// dropped. Fetch or parse failures are logged and the defaults stand.
func (s *Store) Load(ctx context.Context, key string) *Config {
	cfg := s.defaults.Clone()

	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.logger.WarnContext(ctx, "Failed to fetch stored config, using defaults", "key", key, "error", err)
		}
		return cfg
	}

	skipped, err := cfg.overlay(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to parse stored config, using defaults", "key", key, "error", err)
		return s.defaults.Clone()
	}
	if len(skipped) > 0 {
		s.logger.DebugContext(ctx, "Skipped stored config fields with mismatched types", "key", key, "fields", skipped)
	}
	return cfg
}

// Save serializes the full configuration, role definitions included, and
// writes it under key. There are no partial writes; subsequent requests for
// the same key observe the whole document.
func (s *Store) Save(ctx context.Context, key string, cfg *Config) error {
	raw, err := cfg.encode()
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to persist config: %w", err)
	}
	return nil
}

// EnsureRole returns the named preset, creating it first if needed. A new
// preset is seeded from the global default init message with empty extra
// params, before any key=value is merged in.
func (s *Store) EnsureRole(cfg *Config, name string) *RolePreset {
	if cfg.Roles == nil {
		cfg.Roles = make(map[string]*RolePreset)
	}
	if preset, ok := cfg.Roles[name]; ok {
		return preset
	}
	preset := &RolePreset{
		InitMessage: s.defaults.InitMessage,
		ExtraParams: map[string]any{},
	}
	cfg.Roles[name] = preset
	return preset
}

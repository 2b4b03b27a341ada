package history_test

import (
	"context"
	"testing"

	"scopebot/internal/database"
	"scopebot/internal/history"
)

type fakeKV struct {
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	return v, nil
}

func (f *fakeKV) Put(_ context.Context, key string, value []byte) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestStore_SaveLoadClear(t *testing.T) {
	t.Parallel()

	store := history.NewStore(newFakeKV(), nil)
	ctx := context.Background()
	key := "history:1:2"

	if entries := store.Load(ctx, key); entries != nil {
		t.Errorf("Load() on empty store = %v, want nil", entries)
	}

	saved := []history.Entry{
		{Role: history.RoleUser, Content: "hello"},
		{Role: history.RoleAssistant, Content: "hi there"},
	}
	if err := store.Save(ctx, key, saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := store.Load(ctx, key)
	if len(loaded) != 2 || loaded[0].Content != "hello" || loaded[1].Role != history.RoleAssistant {
		t.Errorf("Load() = %v, want saved transcript", loaded)
	}

	if err := store.Clear(ctx, key); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if entries := store.Load(ctx, key); entries != nil {
		t.Errorf("Load() after Clear() = %v, want nil", entries)
	}

	// Clearing an absent transcript succeeds.
	if err := store.Clear(ctx, key); err != nil {
		t.Fatalf("Clear() on missing key error = %v", err)
	}
}

func TestStore_LoadUnparseableStartsEmpty(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	kv.data["history:1"] = []byte("{not an array")
	store := history.NewStore(kv, nil)

	if entries := store.Load(context.Background(), "history:1"); entries != nil {
		t.Errorf("Load() = %v, want nil for unparseable blob", entries)
	}
}

func TestTrim(t *testing.T) {
	t.Parallel()

	entries := []history.Entry{
		{Role: history.RoleUser, Content: "1"},
		{Role: history.RoleAssistant, Content: "2"},
		{Role: history.RoleUser, Content: "3"},
		{Role: history.RoleAssistant, Content: "4"},
	}

	tests := []struct {
		name      string
		max       int
		wantLen   int
		wantFirst string
	}{
		{"under limit unchanged", 10, 4, "1"},
		{"at limit unchanged", 4, 4, "1"},
		{"over limit keeps most recent", 2, 2, "3"},
		{"zero max disables trimming", 0, 4, "1"},
		{"negative max disables trimming", -1, 4, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := history.Trim(entries, tt.max)
			if len(got) != tt.wantLen {
				t.Fatalf("Trim() len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].Content != tt.wantFirst {
				t.Errorf("Trim() first = %q, want %q", got[0].Content, tt.wantFirst)
			}
		})
	}
}

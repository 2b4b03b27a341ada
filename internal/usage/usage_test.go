package usage_test

import (
	"context"
	"testing"

	"scopebot/internal/database"
	"scopebot/internal/usage"
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

func TestTracker_LoadEmpty(t *testing.T) {
	t.Parallel()

	tracker := usage.NewTracker(newFakeKV(), nil)

	counters, err := tracker.Load(context.Background(), "usage:777")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if counters.Tokens.Total != 0 {
		t.Errorf("Total = %d, want 0", counters.Tokens.Total)
	}
	if counters.Tokens.Chats == nil {
		t.Error("Chats map is nil, want empty map")
	}
}

func TestTracker_RecordAccumulates(t *testing.T) {
	t.Parallel()

	tracker := usage.NewTracker(newFakeKV(), nil)
	ctx := context.Background()
	key := "usage:777"

	if err := tracker.Record(ctx, key, 100, 30); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := tracker.Record(ctx, key, 100, 20); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := tracker.Record(ctx, key, -500, 50); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	counters, err := tracker.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if counters.Tokens.Total != 100 {
		t.Errorf("Total = %d, want 100", counters.Tokens.Total)
	}
	if counters.Tokens.Chats["100"] != 50 {
		t.Errorf("chat 100 = %d, want 50", counters.Tokens.Chats["100"])
	}
	if counters.Tokens.Chats["-500"] != 50 {
		t.Errorf("chat -500 = %d, want 50", counters.Tokens.Chats["-500"])
	}
}

func TestTracker_RecordIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	tracker := usage.NewTracker(kv, nil)
	ctx := context.Background()

	if err := tracker.Record(ctx, "usage:777", 100, 0); err != nil {
		t.Fatalf("Record(0) error = %v", err)
	}
	if err := tracker.Record(ctx, "usage:777", 100, -5); err != nil {
		t.Fatalf("Record(-5) error = %v", err)
	}
	if len(kv.data) != 0 {
		t.Error("non-positive token counts were persisted")
	}
}

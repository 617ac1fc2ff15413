// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithTimeout_ZeroReturnsBase(t *testing.T) {
	base := NewMemoryStore()
	if WithTimeout(base, 0) != Store(base) {
		t.Fatalf("expected base store back for zero timeout")
	}
}

func TestWithTimeout_DeadlineReachesAdapter(t *testing.T) {
	var sawDeadline bool
	mock := NewMockStore(NewMemoryStore(), MockStoreOverwrites{
		GetValue: func(ctx context.Context, bucket, key string) (Value, error) {
			_, sawDeadline = ctx.Deadline()
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	s := WithTimeout(mock, 20*time.Millisecond)

	_, err := s.GetValue(context.Background(), "b", "k")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if !sawDeadline {
		t.Fatalf("adapter did not receive a deadline")
	}

	// Calls without an overwrite still reach the base store.
	if _, err := s.PutValue(context.Background(), "b", map[string]any{}, "k"); err != nil {
		t.Fatalf("PutValue through timeout decorator failed: %v", err)
	}
	keys, err := s.ListKeys(context.Background(), "b")
	if err != nil || len(keys) != 1 {
		t.Fatalf("expected one key, got %v (err=%v)", keys, err)
	}
}

func TestMockStore_PanicsWithoutBase(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unimplemented method")
		}
	}()
	_ = NewMockStore(nil, MockStoreOverwrites{}).Ping(context.Background())
}

func TestMockStore_OverwriteThenBase(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	if _, err := base.PutValue(ctx, "b", map[string]any{"x": "1"}, "k"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m := NewMockStore(base, MockStoreOverwrites{
		ListKeys: func(context.Context, string) ([]string, error) { return []string{"fake"}, nil },
	})
	keys, err := m.ListKeys(ctx, "b")
	if err != nil || len(keys) != 1 || keys[0] != "fake" {
		t.Fatalf("overwrite not used: %v, %v", keys, err)
	}
	if _, err := m.GetValue(ctx, "b", "k"); err != nil {
		t.Fatalf("expected fallback to base: %v", err)
	}
}

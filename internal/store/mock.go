// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import "context"

// MockStore is a Store for tests. Each method calls its overwrite when set,
// otherwise BaseStore, and panics when neither is available.
type MockStore struct {
	BaseStore  Store
	Overwrites MockStoreOverwrites
}

// MockStoreOverwrites replaces individual MockStore methods.
type MockStoreOverwrites struct {
	Ping        func(ctx context.Context) error
	ListKeys    func(ctx context.Context, bucket string) ([]string, error)
	GetValue    func(ctx context.Context, bucket, key string) (Value, error)
	PutValue    func(ctx context.Context, bucket string, value map[string]any, key string) (string, error)
	DeleteValue func(ctx context.Context, bucket, key string) (bool, error)
	Close       func() error
}

var _ Store = (*MockStore)(nil)

// NewMockStore returns a MockStore over base with the given overwrites.
// base may be nil when every method the test calls is overwritten.
//
//	st := NewMockStore(NewMemoryStore(), MockStoreOverwrites{ /* overwrite Store methods here... */ })
func NewMockStore(base Store, overwrites MockStoreOverwrites) *MockStore {
	return &MockStore{
		BaseStore:  base,
		Overwrites: overwrites,
	}
}

func (m *MockStore) Ping(ctx context.Context) error {
	if m.Overwrites.Ping != nil {
		return m.Overwrites.Ping(ctx)
	} else if m.BaseStore != nil {
		return m.BaseStore.Ping(ctx)
	}
	panic("MockStore.Ping not implemented")
}
func (m *MockStore) ListKeys(ctx context.Context, bucket string) ([]string, error) {
	if m.Overwrites.ListKeys != nil {
		return m.Overwrites.ListKeys(ctx, bucket)
	} else if m.BaseStore != nil {
		return m.BaseStore.ListKeys(ctx, bucket)
	}
	panic("MockStore.ListKeys not implemented")
}
func (m *MockStore) GetValue(ctx context.Context, bucket, key string) (Value, error) {
	if m.Overwrites.GetValue != nil {
		return m.Overwrites.GetValue(ctx, bucket, key)
	} else if m.BaseStore != nil {
		return m.BaseStore.GetValue(ctx, bucket, key)
	}
	panic("MockStore.GetValue not implemented")
}
func (m *MockStore) PutValue(ctx context.Context, bucket string, value map[string]any, key string) (string, error) {
	if m.Overwrites.PutValue != nil {
		return m.Overwrites.PutValue(ctx, bucket, value, key)
	} else if m.BaseStore != nil {
		return m.BaseStore.PutValue(ctx, bucket, value, key)
	}
	panic("MockStore.PutValue not implemented")
}
func (m *MockStore) DeleteValue(ctx context.Context, bucket, key string) (bool, error) {
	if m.Overwrites.DeleteValue != nil {
		return m.Overwrites.DeleteValue(ctx, bucket, key)
	} else if m.BaseStore != nil {
		return m.BaseStore.DeleteValue(ctx, bucket, key)
	}
	panic("MockStore.DeleteValue not implemented")
}
func (m *MockStore) Close() error {
	if m.Overwrites.Close != nil {
		return m.Overwrites.Close()
	} else if m.BaseStore != nil {
		return m.BaseStore.Close()
	}
	panic("MockStore.Close not implemented")
}

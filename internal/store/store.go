// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import "context"

// Value is what an adapter hands back from GetValue. It is either an already
// structured map[string]any or a JSON document (string or []byte) that still
// has to be parsed. Use DecodeValue to get a map in both cases.
type Value any

// Store is the minimal capability interface over a remote key-value store.
type Store interface {
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// ListKeys returns every key stored under bucket. An unknown bucket is
	// empty, not an error.
	ListKeys(ctx context.Context, bucket string) ([]string, error)

	// GetValue returns the value stored under bucket/key or ErrNotFound.
	GetValue(ctx context.Context, bucket, key string) (Value, error)

	// PutValue stores value under bucket/key and returns the key. An empty
	// key makes the store assign a fresh serial.
	PutValue(ctx context.Context, bucket string, value map[string]any, key string) (string, error)

	// DeleteValue removes bucket/key. It reports false when there was no
	// such record.
	DeleteValue(ctx context.Context, bucket, key string) (bool, error)

	// Close releases resources held by the adapter.
	Close() error
}

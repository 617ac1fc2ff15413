// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"time"
)

// timeoutStore bounds every call of the wrapped Store with a deadline.
type timeoutStore struct {
	base Store
	d    time.Duration
}

// WithTimeout wraps s so that each call is cancelled after d. A non-positive
// duration returns s unchanged.
func WithTimeout(s Store, d time.Duration) Store {
	if d <= 0 {
		return s
	}
	return &timeoutStore{base: s, d: d}
}

func (t *timeoutStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.base.Ping(ctx)
}

func (t *timeoutStore) ListKeys(ctx context.Context, bucket string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.base.ListKeys(ctx, bucket)
}

func (t *timeoutStore) GetValue(ctx context.Context, bucket, key string) (Value, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.base.GetValue(ctx, bucket, key)
}

func (t *timeoutStore) PutValue(ctx context.Context, bucket string, value map[string]any, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.base.PutValue(ctx, bucket, value, key)
}

func (t *timeoutStore) DeleteValue(ctx context.Context, bucket, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.base.DeleteValue(ctx, bucket, key)
}

func (t *timeoutStore) Close() error {
	return t.base.Close()
}

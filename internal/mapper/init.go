// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package mapper

import (
	"context"
	"errors"
	"fmt"

	"github.com/toeirei/protomap/internal/logging"
	"github.com/toeirei/protomap/internal/schema"
	"golang.org/x/sync/errgroup"
)

// InitSchema writes s into the store's prototypes bucket. It refuses with
// ErrSchemaExists when the bucket already holds anything; use
// ForceInitSchema to write over an existing schema.
func (m *Mapper) InitSchema(ctx context.Context, s schema.Schema) error {
	keys, err := m.store().ListKeys(ctx, schema.PrototypeBucket)
	if err != nil {
		return adapterErr("list", schema.PrototypeBucket, "", err)
	}
	if len(keys) > 0 {
		return fmt.Errorf("%w: %d prototypes present", ErrSchemaExists, len(keys))
	}
	return m.writeSchema(ctx, s)
}

// ForceInitSchema writes every prototype of s and the sentinel without
// looking at what the store already holds. Existing prototypes of the same
// name are replaced; others are left alone, so the stored schema may end up
// as an unreconciled mix of both.
func (m *Mapper) ForceInitSchema(ctx context.Context, s schema.Schema) error {
	logging.Warnf("mapper: force-writing %d prototypes without existence check", len(s))
	return m.writeSchema(ctx, s)
}

func (m *Mapper) writeSchema(ctx context.Context, s schema.Schema) error {
	for name := range s {
		if name == "" || name == schema.SentinelKey {
			return fmt.Errorf("init schema: invalid type name %q", name)
		}
	}
	// Reset on every path; a partial write must be visible to the next load.
	defer m.cache.Reset()

	st := m.store()
	g, gctx := errgroup.WithContext(ctx)
	for name, p := range s {
		g.Go(func() error {
			if _, err := st.PutValue(gctx, schema.PrototypeBucket, p.Encode(), name); err != nil {
				return adapterErr("put", schema.PrototypeBucket, name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// The sentinel goes in last so it only marks a completely written schema.
	if _, err := st.PutValue(ctx, schema.PrototypeBucket, map[string]any{"defined": true}, schema.SentinelKey); err != nil {
		return adapterErr("put", schema.PrototypeBucket, schema.SentinelKey, err)
	}
	logging.Infof("mapper: wrote %d prototypes", len(s))
	return nil
}

// IsValidation reports whether err was raised by local request validation
// rather than by the store.
func IsValidation(err error) bool {
	return errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrAlreadyPersisted) ||
		errors.Is(err, ErrMissingIdentity) ||
		errors.Is(err, schema.ErrInvalidObject)
}

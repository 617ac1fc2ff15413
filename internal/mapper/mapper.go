// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package mapper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/toeirei/protomap/internal/logging"
	"github.com/toeirei/protomap/internal/schema"
	"github.com/toeirei/protomap/internal/store"
	"golang.org/x/sync/errgroup"
)

// Mapper translates typed objects into store buckets, keys and values.
type Mapper struct {
	mu       sync.RWMutex
	st       store.Store
	cache    *schema.Cache
	validate bool
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithCache makes the mapper use c instead of a private cache.
func WithCache(c *schema.Cache) Option {
	return func(m *Mapper) { m.cache = c }
}

// WithValidation toggles field validation on add and update. On by default.
func WithValidation(enabled bool) Option {
	return func(m *Mapper) { m.validate = enabled }
}

// New returns a Mapper over st. The store stays owned by the caller.
func New(st store.Store, opts ...Option) *Mapper {
	m := &Mapper{st: st, validate: true}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		m.cache = schema.NewCache()
	}
	return m
}

func (m *Mapper) store() store.Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st
}

// SetStore replaces the store adapter. The cached schema is kept.
func (m *Mapper) SetStore(st store.Store) {
	m.mu.Lock()
	m.st = st
	m.mu.Unlock()
}

// SetSchema overrides the cached schema.
func (m *Mapper) SetSchema(s schema.Schema) {
	m.cache.Set(s)
}

// ResetSchema drops the cached schema so the next operation reloads it.
func (m *Mapper) ResetSchema() {
	m.cache.Reset()
}

// Ping checks that the store is reachable.
func (m *Mapper) Ping(ctx context.Context) error {
	if err := m.store().Ping(ctx); err != nil {
		return adapterErr("ping", "", "", err)
	}
	return nil
}

// GetSchema returns the schema, loading and memoizing it on first use.
func (m *Mapper) GetSchema(ctx context.Context) (schema.Schema, error) {
	s, err := m.cache.Get(ctx, m.store())
	if err != nil {
		var de *schema.SchemaDecodeError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, adapterErr("load schema", schema.PrototypeBucket, "", err)
	}
	return s, nil
}

func (m *Mapper) prototype(ctx context.Context, typ string) (schema.Prototype, error) {
	s, err := m.GetSchema(ctx)
	if err != nil {
		return schema.Prototype{}, err
	}
	p, ok := s.Lookup(typ)
	if !ok {
		return schema.Prototype{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return p, nil
}

// ObjectTypes returns the public type names of the schema, sorted.
func (m *Mapper) ObjectTypes(ctx context.Context) ([]string, error) {
	s, err := m.GetSchema(ctx)
	if err != nil {
		return nil, err
	}
	return s.Types(), nil
}

// NewObject returns a zero-valued, anonymous object of type typ.
func (m *Mapper) NewObject(ctx context.Context, typ string) (Object, error) {
	p, err := m.prototype(ctx, typ)
	if err != nil {
		return Object{}, err
	}
	return Object{Fields: p.Stub()}, nil
}

// AddObject persists an anonymous object and returns its new serial.
// Numeric fields are stored as float64; see schema.FieldKind.Normalize.
func (m *Mapper) AddObject(ctx context.Context, typ string, obj Object) (string, error) {
	if !obj.Anonymous() {
		return "", fmt.Errorf("%s %q: %w", typ, obj.Serial, ErrAlreadyPersisted)
	}
	p, err := m.prototype(ctx, typ)
	if err != nil {
		return "", err
	}
	fields := publicFields(obj.Fields)
	if m.validate {
		if err := p.Validate(typ, fields); err != nil {
			return "", err
		}
	}
	fields = p.Normalize(fields)
	serial, err := m.store().PutValue(ctx, typ, fields, "")
	if err != nil {
		return "", adapterErr("put", typ, "", err)
	}
	logging.Debugf("mapper: added %s %s", typ, serial)
	return serial, nil
}

// UpdateObject replaces the stored value of a persisted object with
// obj.Fields. Fields missing from obj are dropped from the record.
func (m *Mapper) UpdateObject(ctx context.Context, typ string, obj Object) error {
	if obj.Anonymous() {
		return fmt.Errorf("update %s: %w", typ, ErrMissingIdentity)
	}
	p, err := m.prototype(ctx, typ)
	if err != nil {
		return err
	}
	fields := publicFields(obj.Fields)
	if m.validate {
		if err := p.Validate(typ, fields); err != nil {
			return err
		}
	}
	fields = p.Normalize(fields)
	st := m.store()
	if _, err := st.GetValue(ctx, typ, obj.Serial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%s %q: %w", typ, obj.Serial, ErrNotFound)
		}
		return adapterErr("get", typ, obj.Serial, err)
	}
	if _, err := st.PutValue(ctx, typ, fields, obj.Serial); err != nil {
		return adapterErr("put", typ, obj.Serial, err)
	}
	logging.Debugf("mapper: replaced %s %s", typ, obj.Serial)
	return nil
}

// DeleteObject deletes obj by its serial, or by id when obj has none.
func (m *Mapper) DeleteObject(ctx context.Context, typ string, obj Object, id string) error {
	serial := obj.Serial
	if serial == "" {
		serial = id
	}
	if serial == "" {
		return fmt.Errorf("delete %s: %w", typ, ErrMissingIdentity)
	}
	if _, err := m.prototype(ctx, typ); err != nil {
		return err
	}
	ok, err := m.store().DeleteValue(ctx, typ, serial)
	if err != nil {
		return adapterErr("delete", typ, serial, err)
	}
	if !ok {
		return fmt.Errorf("%s %q: %w", typ, serial, ErrNotFound)
	}
	logging.Debugf("mapper: deleted %s %s", typ, serial)
	return nil
}

// GetObject fetches a single persisted object.
func (m *Mapper) GetObject(ctx context.Context, typ, serial string) (Object, error) {
	if serial == "" {
		return Object{}, fmt.Errorf("get %s: %w", typ, ErrMissingIdentity)
	}
	p, err := m.prototype(ctx, typ)
	if err != nil {
		return Object{}, err
	}
	return m.fetch(ctx, m.store(), p, typ, serial)
}

func (m *Mapper) fetch(ctx context.Context, st store.Store, p schema.Prototype, typ, serial string) (Object, error) {
	v, err := st.GetValue(ctx, typ, serial)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Object{}, fmt.Errorf("%s %q: %w", typ, serial, ErrNotFound)
		}
		return Object{}, adapterErr("get", typ, serial, err)
	}
	fields, err := store.DecodeValue(v)
	if err != nil {
		return Object{}, adapterErr("decode", typ, serial, err)
	}
	return Object{Serial: serial, Fields: p.Normalize(publicFields(fields))}, nil
}

// GetObjects fetches every object of type typ. Records are fetched in
// parallel; if any fetch fails the whole call fails and the remaining
// fetches are cancelled. The result is sorted by serial.
func (m *Mapper) GetObjects(ctx context.Context, typ string) ([]Object, error) {
	p, err := m.prototype(ctx, typ)
	if err != nil {
		return nil, err
	}
	st := m.store()
	keys, err := st.ListKeys(ctx, typ)
	if err != nil {
		return nil, adapterErr("list", typ, "", err)
	}

	objs := make([]Object, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			o, err := m.fetch(gctx, st, p, typ, key)
			if err != nil {
				return err
			}
			objs[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].Serial < objs[j].Serial })
	return objs, nil
}

// Dump fetches every object of every public type.
func (m *Mapper) Dump(ctx context.Context) (map[string][]Object, error) {
	types, err := m.ObjectTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Object, len(types))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, typ := range types {
		g.Go(func() error {
			objs, err := m.GetObjects(gctx, typ)
			if err != nil {
				return err
			}
			mu.Lock()
			out[typ] = objs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

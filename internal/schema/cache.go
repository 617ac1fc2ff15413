// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package schema

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/toeirei/protomap/internal/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Source is the part of a store the cache needs to populate itself.
type Source interface {
	ListKeys(ctx context.Context, bucket string) ([]string, error)
	GetValue(ctx context.Context, bucket, key string) (store.Value, error)
}

// Cache memoizes the schema loaded from a Source. The zero value is ready to
// use. Concurrent populations are coalesced, and the defined flag is set only
// once the full mapping has been assembled.
type Cache struct {
	mu      sync.RWMutex
	defined bool
	schema  Schema
	// gen is bumped by Set and Reset so an in-flight load cannot overwrite them.
	gen   uint64
	group singleflight.Group
}

// NewCache returns an empty, undefined cache.
func NewCache() *Cache {
	return &Cache{}
}

// Defined reports whether the cache holds a populated schema.
func (c *Cache) Defined() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defined
}

// loadTimeout bounds a shared population once it no longer belongs to a
// single caller.
const loadTimeout = 30 * time.Second

// Get returns the memoized schema, loading it from src on first use.
// Concurrent callers share one load. The load is detached from any single
// caller's cancellation; each caller stops waiting when its own ctx is done.
func (c *Cache) Get(ctx context.Context, src Source) (Schema, error) {
	if s, ok := c.cached(); ok {
		return s, nil
	}
	ch := c.group.DoChan("schema", func() (any, error) {
		c.mu.RLock()
		if c.defined {
			s := c.schema
			c.mu.RUnlock()
			return s, nil
		}
		gen := c.gen
		c.mu.RUnlock()

		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		s, err := Load(lctx, src)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen == gen && !c.defined {
			c.schema = s
			c.defined = true
		}
		if c.defined {
			return c.schema, nil
		}
		return s, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Schema).Clone(), nil
	}
}

func (c *Cache) cached() (Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.defined {
		return nil, false
	}
	return c.schema.Clone(), true
}

// Set overrides the cached schema and marks it defined.
func (c *Cache) Set(s Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schema = s.Clone()
	if c.schema == nil {
		c.schema = Schema{}
	}
	c.defined = true
	c.gen++
}

// Reset drops the cached schema; the next Get reloads it.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schema = nil
	c.defined = false
	c.gen++
}

// Load reads every prototype from src. Prototypes are fetched in parallel;
// the first failure cancels the remaining fetches.
func Load(ctx context.Context, src Source) (Schema, error) {
	keys, err := src.ListKeys(ctx, PrototypeBucket)
	if err != nil {
		return nil, fmt.Errorf("list prototypes: %w", err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != SentinelKey {
			names = append(names, k)
		}
	}

	protos := make([]Prototype, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			v, err := src.GetValue(gctx, PrototypeBucket, name)
			if err != nil {
				return fmt.Errorf("get prototype %q: %w", name, err)
			}
			p, err := DecodePrototype(name, v)
			if err != nil {
				return err
			}
			protos[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := make(Schema, len(names))
	for i, name := range names {
		s[name] = protos[i]
	}
	return s, nil
}

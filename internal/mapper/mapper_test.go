// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package mapper_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/protomap/internal/mapper"
	"github.com/toeirei/protomap/internal/schema"
	"github.com/toeirei/protomap/internal/store"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testSchema() schema.Schema {
	return schema.Schema{
		"person": {
			Fields: map[string]schema.FieldDescriptor{
				"name": {Kind: schema.KindString},
				"age":  {Kind: schema.KindNumeric},
			},
			HasMany: []string{"order"},
		},
		"order": {
			Fields: map[string]schema.FieldDescriptor{
				"total": {Kind: schema.KindNumeric},
			},
		},
		"_audit": {
			Fields: map[string]schema.FieldDescriptor{"msg": {Kind: schema.KindString}},
		},
	}
}

// recorder wraps a memory store and counts calls per method.
type recorder struct {
	*store.MockStore
	lists, gets, puts, deletes atomic.Int64
}

func newRecorder(t *testing.T, seeded bool) *recorder {
	t.Helper()
	base := store.NewMemoryStore()
	if seeded {
		require.NoError(t, mapper.New(base).InitSchema(context.Background(), testSchema()))
	}
	r := &recorder{}
	r.MockStore = store.NewMockStore(base, store.MockStoreOverwrites{
		ListKeys: func(ctx context.Context, bucket string) ([]string, error) {
			r.lists.Add(1)
			return base.ListKeys(ctx, bucket)
		},
		GetValue: func(ctx context.Context, bucket, key string) (store.Value, error) {
			r.gets.Add(1)
			return base.GetValue(ctx, bucket, key)
		},
		PutValue: func(ctx context.Context, bucket string, value map[string]any, key string) (string, error) {
			r.puts.Add(1)
			return base.PutValue(ctx, bucket, value, key)
		},
		DeleteValue: func(ctx context.Context, bucket, key string) (bool, error) {
			r.deletes.Add(1)
			return base.DeleteValue(ctx, bucket, key)
		},
	})
	return r
}

func (r *recorder) calls() int64 {
	return r.lists.Load() + r.gets.Load() + r.puts.Load() + r.deletes.Load()
}

func TestGetSchema_MemoizesStoreReads(t *testing.T) {
	rec := newRecorder(t, true)
	m := mapper.New(rec)
	ctx := context.Background()

	first, err := m.GetSchema(ctx)
	require.NoError(t, err)
	reads := rec.calls()
	second, err := m.GetSchema(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, reads, rec.calls(), "second GetSchema must not touch the store")
	assert.Equal(t, int64(1), rec.lists.Load())
}

func TestRoundTrip_NewAddGet(t *testing.T) {
	adapters := map[string]func(t *testing.T) store.Store{
		"memory": func(t *testing.T) store.Store { return newRecorder(t, true) },
		"sqlite": func(t *testing.T) store.Store {
			bs, err := store.NewStoreFromDSN("sqlite", ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { _ = bs.Close() })
			require.NoError(t, mapper.New(bs).InitSchema(context.Background(), testSchema()))
			return bs
		},
	}
	for name, open := range adapters {
		t.Run(name, func(t *testing.T) {
			m := mapper.New(open(t))
			ctx := context.Background()

			stub, err := m.NewObject(ctx, "person")
			require.NoError(t, err)
			assert.True(t, stub.Anonymous())
			assert.Equal(t, map[string]any{"name": "", "age": float64(0)}, stub.Fields)

			stub.Fields["name"] = "ada"
			stub.Fields["age"] = 36
			serial, err := m.AddObject(ctx, "person", stub)
			require.NoError(t, err)
			require.NotEmpty(t, serial)

			got, err := m.GetObject(ctx, "person", serial)
			require.NoError(t, err)
			assert.Equal(t, serial, got.Serial)
			assert.Equal(t, map[string]any{"name": "ada", "age": float64(36)}, got.Fields)

			objs, err := m.GetObjects(ctx, "person")
			require.NoError(t, err)
			require.Len(t, objs, 1)
			assert.Equal(t, got, objs[0])

			got.Fields["age"] = int64(37)
			require.NoError(t, m.UpdateObject(ctx, "person", got))
			again, err := m.GetObject(ctx, "person", serial)
			require.NoError(t, err)
			assert.Equal(t, float64(37), again.Fields["age"])
		})
	}
}

func TestAddObject_RejectsPersistedWithoutWrite(t *testing.T) {
	rec := newRecorder(t, true)
	m := mapper.New(rec)

	_, err := m.AddObject(context.Background(), "person", mapper.Object{Serial: "abc", Fields: map[string]any{}})
	require.ErrorIs(t, err, mapper.ErrAlreadyPersisted)
	assert.Zero(t, rec.puts.Load())
	assert.Zero(t, rec.calls(), "rejection happens before any store call")
}

func TestAddObject_UnknownTypeRegardlessOfPopulation(t *testing.T) {
	ctx := context.Background()

	cold := mapper.New(newRecorder(t, true))
	_, err := cold.AddObject(ctx, "ghost", mapper.Object{})
	require.ErrorIs(t, err, mapper.ErrUnknownType)

	warm := mapper.New(newRecorder(t, true))
	_, err = warm.GetSchema(ctx)
	require.NoError(t, err)
	_, err = warm.AddObject(ctx, "ghost", mapper.Object{})
	require.ErrorIs(t, err, mapper.ErrUnknownType)

	empty := mapper.New(newRecorder(t, false))
	_, err = empty.AddObject(ctx, "ghost", mapper.Object{})
	require.ErrorIs(t, err, mapper.ErrUnknownType)
}

func TestAddObject_ValidatesFields(t *testing.T) {
	rec := newRecorder(t, true)
	m := mapper.New(rec)
	ctx := context.Background()

	_, err := m.AddObject(ctx, "person", mapper.Object{Fields: map[string]any{"age": "old"}})
	require.ErrorIs(t, err, schema.ErrInvalidObject)
	assert.True(t, mapper.IsValidation(err))
	assert.Zero(t, rec.puts.Load())

	loose := mapper.New(rec, mapper.WithValidation(false))
	_, err = loose.AddObject(ctx, "person", mapper.Object{Fields: map[string]any{"age": "old"}})
	require.NoError(t, err)
}

func TestAddObject_StripsInternalKeys(t *testing.T) {
	m := mapper.New(newRecorder(t, true))
	ctx := context.Background()

	serial, err := m.AddObject(ctx, "person", mapper.Object{Fields: map[string]any{"name": "x", "__indexation__": 4}})
	require.NoError(t, err)
	got, err := m.GetObject(ctx, "person", serial)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "x"}, got.Fields)
}

func TestDeleteObject(t *testing.T) {
	ctx := context.Background()

	t.Run("without identity makes no store call", func(t *testing.T) {
		rec := newRecorder(t, true)
		err := mapper.New(rec).DeleteObject(ctx, "person", mapper.Object{}, "")
		require.ErrorIs(t, err, mapper.ErrMissingIdentity)
		assert.Zero(t, rec.calls())
	})

	t.Run("by serial then by id", func(t *testing.T) {
		m := mapper.New(newRecorder(t, true))
		a, err := m.AddObject(ctx, "order", mapper.Object{Fields: map[string]any{"total": 1}})
		require.NoError(t, err)
		b, err := m.AddObject(ctx, "order", mapper.Object{Fields: map[string]any{"total": 2}})
		require.NoError(t, err)

		require.NoError(t, m.DeleteObject(ctx, "order", mapper.Object{Serial: a}, "ignored"))
		require.NoError(t, m.DeleteObject(ctx, "order", mapper.Object{}, b))

		objs, err := m.GetObjects(ctx, "order")
		require.NoError(t, err)
		assert.Empty(t, objs)
	})

	t.Run("missing record", func(t *testing.T) {
		m := mapper.New(newRecorder(t, true))
		err := m.DeleteObject(ctx, "order", mapper.Object{}, "nope")
		require.ErrorIs(t, err, mapper.ErrNotFound)
	})
}

func TestUpdateObject_FullReplace(t *testing.T) {
	m := mapper.New(newRecorder(t, true))
	ctx := context.Background()

	serial, err := m.AddObject(ctx, "person", mapper.Object{Fields: map[string]any{"name": "ada", "age": 36}})
	require.NoError(t, err)

	require.NoError(t, m.UpdateObject(ctx, "person", mapper.Object{Serial: serial, Fields: map[string]any{"age": 37}}))
	got, err := m.GetObject(ctx, "person", serial)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"age": float64(37)}, got.Fields)

	err = m.UpdateObject(ctx, "person", mapper.Object{Fields: map[string]any{}})
	require.ErrorIs(t, err, mapper.ErrMissingIdentity)

	err = m.UpdateObject(ctx, "person", mapper.Object{Serial: "missing", Fields: map[string]any{}})
	require.ErrorIs(t, err, mapper.ErrNotFound)
}

func TestObjectTypes_FiltersInternal(t *testing.T) {
	m := mapper.New(newRecorder(t, true))
	types, err := m.ObjectTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"order", "person"}, types)

	m.SetSchema(schema.Schema{"a": {}, "_b": {}, schema.SentinelKey: {}})
	types, err = m.ObjectTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, types)
}

func TestGetObjects_ParallelFetch(t *testing.T) {
	rec := newRecorder(t, true)
	m := mapper.New(rec)
	ctx := context.Background()

	const n = 25
	want := map[string]bool{}
	for i := 0; i < n; i++ {
		serial, err := m.AddObject(ctx, "order", mapper.Object{Fields: map[string]any{"total": i}})
		require.NoError(t, err)
		want[serial] = true
	}

	objs, err := m.GetObjects(ctx, "order")
	require.NoError(t, err)
	require.Len(t, objs, n)
	for _, o := range objs {
		assert.True(t, want[o.Serial], "unexpected serial %s", o.Serial)
	}
}

func TestGetObjects_AnyFailureFailsAll(t *testing.T) {
	base := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, mapper.New(base).InitSchema(ctx, testSchema()))
	for i := 0; i < 5; i++ {
		_, err := base.PutValue(ctx, "order", map[string]any{"total": i}, fmt.Sprintf("o%d", i))
		require.NoError(t, err)
	}
	boom := errors.New("remote fault")
	st := store.NewMockStore(base, store.MockStoreOverwrites{
		GetValue: func(ctx context.Context, bucket, key string) (store.Value, error) {
			if bucket == "order" && key == "o3" {
				return nil, boom
			}
			return base.GetValue(ctx, bucket, key)
		},
	})

	objs, err := mapper.New(st).GetObjects(ctx, "order")
	assert.Nil(t, objs)
	require.ErrorIs(t, err, boom)
	var ae *mapper.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "order", ae.Bucket)
	assert.Equal(t, "o3", ae.Key)
}

func TestAdapterError_TimeoutVisible(t *testing.T) {
	base := store.NewMemoryStore()
	slow := store.NewMockStore(base, store.MockStoreOverwrites{
		ListKeys: func(ctx context.Context, bucket string) ([]string, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	m := mapper.New(store.WithTimeout(slow, 10*time.Millisecond))

	_, err := m.ObjectTypes(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	var ae *mapper.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.False(t, mapper.IsValidation(err))
}

func TestInitSchema_RefusesExisting(t *testing.T) {
	base := store.NewMemoryStore()
	m := mapper.New(base)
	ctx := context.Background()

	require.NoError(t, m.InitSchema(ctx, testSchema()))
	err := m.InitSchema(ctx, schema.Schema{"other": {}})
	require.ErrorIs(t, err, mapper.ErrSchemaExists)

	require.NoError(t, m.ForceInitSchema(ctx, schema.Schema{"other": {}}))
	types, err := m.ObjectTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"order", "other", "person"}, types, "forced init overlays, it does not reconcile")

	keys, err := base.ListKeys(ctx, schema.PrototypeBucket)
	require.NoError(t, err)
	assert.Contains(t, keys, schema.SentinelKey)
}

func TestInitSchema_PartialFailureResetsCache(t *testing.T) {
	base := store.NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("disk full")
	personDone := make(chan struct{})
	st := store.NewMockStore(base, store.MockStoreOverwrites{
		PutValue: func(ctx context.Context, bucket string, value map[string]any, key string) (string, error) {
			switch key {
			case "order":
				<-personDone
				return "", boom
			case "person":
				defer close(personDone)
				return base.PutValue(context.Background(), bucket, value, key)
			}
			return base.PutValue(ctx, bucket, value, key)
		},
	})
	m := mapper.New(st)

	types, err := m.ObjectTypes(ctx)
	require.NoError(t, err)
	require.Empty(t, types)

	err = m.InitSchema(ctx, testSchema())
	require.ErrorIs(t, err, boom)

	types, err = m.ObjectTypes(ctx)
	require.NoError(t, err)
	assert.Contains(t, types, "person", "partially written prototypes must not stay hidden behind the old cache")
	_, err = base.GetValue(ctx, schema.PrototypeBucket, schema.SentinelKey)
	assert.ErrorIs(t, err, store.ErrNotFound, "sentinel is only written after every prototype")
}

func TestInitSchema_RejectsSentinelName(t *testing.T) {
	m := mapper.New(store.NewMemoryStore())
	err := m.InitSchema(context.Background(), schema.Schema{schema.SentinelKey: {}})
	require.Error(t, err)
}

func TestSetStore_AndResetSchema(t *testing.T) {
	ctx := context.Background()
	m := mapper.New(store.NewMemoryStore())
	types, err := m.ObjectTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, types)

	m.SetStore(newRecorder(t, true))
	types, err = m.ObjectTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, types, "cached schema survives a store swap")

	m.ResetSchema()
	types, err = m.ObjectTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"order", "person"}, types)
}

func TestPing(t *testing.T) {
	st := store.NewMemoryStore()
	m := mapper.New(st)
	require.NoError(t, m.Ping(context.Background()))
	_ = st.Close()
	var ae *mapper.AdapterError
	require.ErrorAs(t, m.Ping(context.Background()), &ae)
}

func TestDump(t *testing.T) {
	m := mapper.New(newRecorder(t, true))
	ctx := context.Background()
	_, err := m.AddObject(ctx, "person", mapper.Object{Fields: map[string]any{"name": "a"}})
	require.NoError(t, err)

	all, err := m.Dump(ctx)
	require.NoError(t, err)
	assert.Len(t, all["person"], 1)
	assert.Empty(t, all["order"])
	_, internal := all["_audit"]
	assert.False(t, internal)
}

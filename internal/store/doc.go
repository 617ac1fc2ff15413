// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package store contains the key-value store adapters used by the object
// mapper.
//
// Every adapter implements the small `Store` capability interface: ping,
// list keys of a bucket, get/put/delete a single value. The mapper never
// talks to a database directly; it only sees buckets, keys and values.
//
// Adapters
//   - `NewMemoryStore` keeps everything in process memory. Values are deep
//     copied on the way in and out and returned as structured maps.
//   - `NewStoreFromDSN` opens a `*bun.DB` for sqlite, postgres or mysql and
//     keeps all buckets in a single `kv_entries` table. Values are stored as
//     JSON text and returned as strings, so callers must run them through
//     `DecodeValue`.
//   - `WithTimeout` bounds every call of another adapter with a deadline.
//   - `MockStore` lets tests overwrite single methods and fall back to a
//     base adapter for the rest.
//
// Testing notes
//   - Prefer `NewStoreFromDSN("sqlite", ":memory:")` when real SQL semantics
//     are needed. In-memory sqlite is forced to a single connection.
//   - Use `NewMockStore(NewMemoryStore(), MockStoreOverwrites{...})` to count
//     calls or inject faults.
package store

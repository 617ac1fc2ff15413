// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package mapper is the typed CRUD facade in front of a key-value store.
//
// A Mapper owns a schema.Cache and an injected store.Store. Every typed
// operation first makes sure the schema is loaded, validates the request
// locally (serial presence, type name, field kinds) and only then talks to
// the store: one bucket per object type, keyed by serial.
//
// Validation failures are returned before any store call and are never
// retried. Store failures come back as *AdapterError; this layer does not
// retry them either.
package mapper

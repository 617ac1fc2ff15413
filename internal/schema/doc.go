// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

// Package schema holds the type schema used by the object mapper: prototype
// definitions, their field descriptors, the memoizing Cache that loads them
// from the store's "prototypes" bucket, and the stub builder that turns a
// prototype into a zero-valued object.
//
// Field descriptors are decoded once, at load time, into the closed FieldKind
// variant. Anything that is not "string" or "numeric" is rejected with a
// SchemaDecodeError instead of being silently defaulted.
package schema

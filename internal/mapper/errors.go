// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package mapper

import (
	"errors"
	"fmt"

	"github.com/toeirei/protomap/internal/store"
)

var (
	// ErrUnknownType is returned when a type name is absent from the schema.
	ErrUnknownType = errors.New("unknown object type")
	// ErrAlreadyPersisted is returned by AddObject for an object that has a serial.
	ErrAlreadyPersisted = errors.New("object already persisted")
	// ErrMissingIdentity is returned when neither a serial nor an id is available.
	ErrMissingIdentity = errors.New("object has no serial")
	// ErrNotFound is returned when the store holds no record for a serial.
	ErrNotFound = store.ErrNotFound
	// ErrSchemaExists is returned by InitSchema when the store already holds prototypes.
	ErrSchemaExists = errors.New("schema already initialized")
)

// AdapterError wraps a failure of the store adapter itself.
type AdapterError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *AdapterError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("store %s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Bucket, e.Err)
	default:
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
}

func (e *AdapterError) Unwrap() error { return e.Err }

func adapterErr(op, bucket, key string, err error) error {
	return &AdapterError{Op: op, Bucket: bucket, Key: key, Err: err}
}

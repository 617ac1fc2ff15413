// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned for a field descriptor whose "isa" is not a known kind.
	ErrUnknownKind = errors.New("unknown field kind")
	// ErrMalformed is returned when a prototype or descriptor has the wrong shape.
	ErrMalformed = errors.New("malformed prototype")
	// ErrInvalidObject is returned when object fields do not match their prototype.
	ErrInvalidObject = errors.New("invalid object")
)

// SchemaDecodeError reports a prototype that could not be decoded.
type SchemaDecodeError struct {
	Type  string
	Field string
	Err   error
}

func (e *SchemaDecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: decode prototype %q: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema: decode prototype %q field %q: %v", e.Type, e.Field, e.Err)
}

func (e *SchemaDecodeError) Unwrap() error { return e.Err }

// ValidationError reports a single object field that does not fit its prototype.
type ValidationError struct {
	Type   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s object: field %q %s", e.Type, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidObject }

// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package schema

import (
	"encoding/json"
	"fmt"
)

// FieldKind is the primitive kind of a prototype field.
type FieldKind int

const (
	KindString FieldKind = iota + 1
	KindNumeric
)

// ParseFieldKind maps the "isa" attribute of a field descriptor to a FieldKind.
func ParseFieldKind(s string) (FieldKind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "numeric":
		return KindNumeric, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumeric:
		return "numeric"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Zero returns the stub value for a field of this kind.
func (k FieldKind) Zero() any {
	if k == KindString {
		return ""
	}
	return float64(0)
}

// Normalize returns v in the canonical Go representation of the kind.
// Numeric values are float64, the type every JSON-backed store decodes
// numbers into. Values the kind does not accept are returned unchanged.
func (k FieldKind) Normalize(v any) any {
	if k != KindNumeric {
		return v
	}
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return v
}

// Accepts reports whether v is a valid value for a field of this kind.
func (k FieldKind) Accepts(v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumeric:
		switch v.(type) {
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64, json.Number:
			return true
		}
	}
	return false
}

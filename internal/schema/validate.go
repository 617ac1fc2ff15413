// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package schema

import "fmt"

// Validate checks object fields against p. Missing fields and nil values are
// allowed; unknown fields and kind mismatches are not. Relationship markers
// may carry a type name or a list of them.
func (p Prototype) Validate(typeName string, fields map[string]any) error {
	for name, v := range fields {
		if IsRelation(name) {
			if _, err := decodeRelation(v); err != nil {
				return &ValidationError{Type: typeName, Field: name, Reason: "is not a relation reference"}
			}
			continue
		}
		fd, ok := p.Fields[name]
		if !ok {
			return &ValidationError{Type: typeName, Field: name, Reason: "is not defined by the prototype"}
		}
		if v == nil {
			continue
		}
		if !fd.Kind.Accepts(v) {
			return &ValidationError{Type: typeName, Field: name, Reason: fmt.Sprintf("must be %s, got %T", fd.Kind, v)}
		}
	}
	return nil
}

// Normalize returns a copy of fields with every value converted to the
// canonical representation of its field kind. Fields p does not define are
// copied as they are.
func (p Prototype) Normalize(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for name, v := range fields {
		if fd, ok := p.Fields[name]; ok && v != nil {
			v = fd.Kind.Normalize(v)
		}
		out[name] = v
	}
	return out
}

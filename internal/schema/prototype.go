// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package schema

import (
	"fmt"
	"sort"

	"github.com/toeirei/protomap/internal/store"
)

// Reserved relationship markers inside a prototype definition.
const (
	HasOne  = "has-one"
	HasMany = "has-many"
)

// IsRelation reports whether name is one of the reserved relationship markers.
func IsRelation(name string) bool {
	return name == HasOne || name == HasMany
}

// FieldDescriptor describes one field of a prototype.
type FieldDescriptor struct {
	Kind FieldKind
	// Attrs holds every descriptor attribute other than "isa", verbatim.
	Attrs map[string]any
}

// Prototype is the field layout of one object type.
type Prototype struct {
	Fields  map[string]FieldDescriptor
	HasOne  []string
	HasMany []string
}

// DecodePrototype decodes a stored prototype definition. v may be a
// structured map or a JSON document; see store.DecodeValue.
func DecodePrototype(typeName string, v any) (Prototype, error) {
	raw, err := store.DecodeValue(v)
	if err != nil {
		return Prototype{}, &SchemaDecodeError{Type: typeName, Err: err}
	}
	p := Prototype{Fields: make(map[string]FieldDescriptor, len(raw))}
	for name, rv := range raw {
		switch name {
		case HasOne:
			if p.HasOne, err = decodeRelation(rv); err != nil {
				return Prototype{}, &SchemaDecodeError{Type: typeName, Field: name, Err: err}
			}
		case HasMany:
			if p.HasMany, err = decodeRelation(rv); err != nil {
				return Prototype{}, &SchemaDecodeError{Type: typeName, Field: name, Err: err}
			}
		default:
			fd, err := decodeDescriptor(rv)
			if err != nil {
				return Prototype{}, &SchemaDecodeError{Type: typeName, Field: name, Err: err}
			}
			p.Fields[name] = fd
		}
	}
	return p, nil
}

func decodeDescriptor(v any) (FieldDescriptor, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return FieldDescriptor{}, fmt.Errorf("%w: descriptor must be an object, got %T", ErrMalformed, v)
	}
	isa, ok := m["isa"].(string)
	if !ok {
		return FieldDescriptor{}, fmt.Errorf("%w: descriptor has no \"isa\" string", ErrMalformed)
	}
	kind, err := ParseFieldKind(isa)
	if err != nil {
		return FieldDescriptor{}, err
	}
	fd := FieldDescriptor{Kind: kind}
	for k, av := range m {
		if k == "isa" {
			continue
		}
		if fd.Attrs == nil {
			fd.Attrs = make(map[string]any)
		}
		fd.Attrs[k] = av
	}
	return fd, nil
}

func decodeRelation(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []string:
		return append([]string(nil), t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: relation entries must be type names, got %T", ErrMalformed, e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: relation must be a type name or list, got %T", ErrMalformed, v)
	}
}

// Encode returns the storable form of p, the inverse of DecodePrototype.
func (p Prototype) Encode() map[string]any {
	out := make(map[string]any, len(p.Fields)+2)
	for name, fd := range p.Fields {
		d := make(map[string]any, len(fd.Attrs)+1)
		for k, v := range fd.Attrs {
			d[k] = v
		}
		d["isa"] = fd.Kind.String()
		out[name] = d
	}
	if len(p.HasOne) > 0 {
		out[HasOne] = stringsToAny(p.HasOne)
	}
	if len(p.HasMany) > 0 {
		out[HasMany] = stringsToAny(p.HasMany)
	}
	return out
}

// FieldNames returns the sorted names of the non-relation fields.
func (p Prototype) FieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Prototype) clone() Prototype {
	c := Prototype{
		Fields:  make(map[string]FieldDescriptor, len(p.Fields)),
		HasOne:  append([]string(nil), p.HasOne...),
		HasMany: append([]string(nil), p.HasMany...),
	}
	for name, fd := range p.Fields {
		var attrs map[string]any
		if fd.Attrs != nil {
			attrs = make(map[string]any, len(fd.Attrs))
			for k, v := range fd.Attrs {
				attrs[k] = v
			}
		}
		c.Fields[name] = FieldDescriptor{Kind: fd.Kind, Attrs: attrs}
	}
	return c
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

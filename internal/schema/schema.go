// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package schema

import (
	"sort"
	"strings"
)

const (
	// PrototypeBucket is the store bucket holding one prototype per type name.
	PrototypeBucket = "prototypes"
	// SentinelKey marks a populated prototypes bucket. It is never a type.
	SentinelKey = "__defined__"
)

// Schema maps type names to their prototypes.
type Schema map[string]Prototype

// IsInternal reports whether a schema key is hidden from the public type list:
// the sentinel and any name starting with an underscore.
func IsInternal(name string) bool {
	return name == SentinelKey || strings.HasPrefix(name, "_")
}

// Types returns the public type names, sorted.
func (s Schema) Types() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		if IsInternal(name) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the prototype for typeName.
func (s Schema) Lookup(typeName string) (Prototype, bool) {
	if typeName == SentinelKey {
		return Prototype{}, false
	}
	p, ok := s[typeName]
	return p, ok
}

// Clone returns a deep copy of s.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for name, p := range s {
		out[name] = p.clone()
	}
	return out
}

// DecodeSchema decodes a whole schema document (type name -> prototype).
// The sentinel entry, if present, is skipped.
func DecodeSchema(raw map[string]any) (Schema, error) {
	out := make(Schema, len(raw))
	for name, v := range raw {
		if name == SentinelKey {
			continue
		}
		p, err := DecodePrototype(name, v)
		if err != nil {
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}

// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package schema

// Stub returns a zero-valued object skeleton for p: "" for string fields,
// 0 for numeric ones. Relationship markers are skipped.
func (p Prototype) Stub() map[string]any {
	out := make(map[string]any, len(p.Fields))
	for name, fd := range p.Fields {
		if IsRelation(name) {
			continue
		}
		out[name] = fd.Kind.Zero()
	}
	return out
}

// BuildStub decodes a stored prototype definition (structured or JSON text)
// and returns its stub.
func BuildStub(v any) (map[string]any, error) {
	p, err := DecodePrototype("", v)
	if err != nil {
		return nil, err
	}
	return p.Stub(), nil
}

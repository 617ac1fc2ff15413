// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"encoding/json"
	"fmt"
)

// DecodeValue turns a Value into a map. Strings and byte slices are parsed as
// JSON objects; maps are deep copied.
func DecodeValue(v Value) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t), nil
	case string:
		return decodeJSON([]byte(t))
	case json.RawMessage:
		return decodeJSON(t)
	case []byte:
		return decodeJSON(t)
	case nil:
		return nil, fmt.Errorf("decode value: %w", ErrNotFound)
	default:
		return nil, fmt.Errorf("decode value: unsupported value type %T", v)
	}
}

func decodeJSON(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneAny(v)
	}
	return out
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneAny(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

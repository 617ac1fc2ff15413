// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package mapper

import "strings"

// Object is a typed record. An empty Serial means the object is anonymous and
// has never been persisted.
type Object struct {
	Serial string         `json:"serial,omitempty"`
	Fields map[string]any `json:"fields"`
}

// Anonymous reports whether o has never been persisted.
func (o Object) Anonymous() bool {
	return o.Serial == ""
}

// publicFields copies fields without the underscore-prefixed internal keys.
func publicFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	return out
}

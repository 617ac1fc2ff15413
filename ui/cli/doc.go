// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for protomap using Cobra.
// It wires configuration, the store adapter and the object mapper, and
// provides commands that delegate to the mapper. CLI code should remain thin
// and leave business logic to internal/mapper.
package cli

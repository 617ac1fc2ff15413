// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for protomap.
//
// Usage:
//
//	go run . [command] [flags]
//	./protomap [command] [flags]
//
// See --help for the available commands.
package main

import (
	"os"

	"github.com/toeirei/protomap/internal/logging"
	"github.com/toeirei/protomap/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("protomap: %v", err)
		os.Exit(1)
	}
}

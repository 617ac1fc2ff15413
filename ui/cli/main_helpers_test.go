// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/protomap/internal/config"
	"github.com/toeirei/protomap/internal/logging"
	"github.com/toeirei/protomap/internal/store"
)

const testPrototypes = `
person:
  name: {isa: string}
  age: {isa: numeric}
  has-many: [order]
order:
  total: {isa: numeric}
_audit:
  note: {isa: string}
`

// setupTestEnv isolates config discovery and routes every command to one
// shared in-memory store that survives between invocations.
func setupTestEnv(t *testing.T) *store.MemoryStore {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	mem := store.NewMemoryStore()
	shared := store.NewMockStore(mem, store.MockStoreOverwrites{
		Close: func() error { return nil },
	})
	orig := storeFactory
	storeFactory = func(c config.StoreConfig) (store.Store, error) { return shared, nil }
	t.Cleanup(func() {
		storeFactory = orig
		closeServices()
		_ = mem.Close()
	})
	return mem
}

// executeCommand runs the root command with args and returns stdout and
// stderr output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	logging.SetOutput(&stderr)
	defer logging.SetOutput(os.Stderr)

	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writePrototypeFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prototypes.yaml")
	if err := os.WriteFile(path, []byte(testPrototypes), 0o600); err != nil {
		t.Fatalf("failed to write prototype file: %v", err)
	}
	return path
}

func initTestSchema(t *testing.T) {
	t.Helper()
	if _, _, err := executeCommand(t, "", "schema", "init", "--file", writePrototypeFile(t)); err != nil {
		t.Fatalf("schema init failed: %v", err)
	}
}

// addObject runs the add command and returns the printed serial.
func addObject(t *testing.T, typ, data string) string {
	t.Helper()
	out, _, err := executeCommand(t, "", "add", typ, "--data", data)
	if err != nil {
		t.Fatalf("add %s failed: %v", typ, err)
	}
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 {
		t.Fatalf("add printed nothing")
	}
	return fields[len(fields)-1]
}

func readCompressedExport(filename string) (*exportData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zr, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var data exportData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

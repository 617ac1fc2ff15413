// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/toeirei/protomap/internal/i18n"
	"github.com/toeirei/protomap/internal/mapper"
)

// exportData is the document written by the export command.
type exportData struct {
	ExportedAt time.Time                  `json:"exported_at"`
	Schema     map[string]any             `json:"schema"`
	Objects    map[string][]mapper.Object `json:"objects"`
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a compressed (zstd) JSON dump of every object",
		Long: `Dumps the schema and every object of every public type into a single,
Zstandard-compressed JSON file. '.zst' is appended to the file name if it is
not already present. Without --out, protomap-export-YYYY-MM-DD.json.zst is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := appMapper.GetSchema(ctx)
			if err != nil {
				return err
			}
			objs, err := appMapper.Dump(ctx)
			if err != nil {
				return err
			}
			data := exportData{
				ExportedAt: time.Now().UTC(),
				Schema:     encodeSchema(s),
				Objects:    objs,
			}

			name := out
			if name == "" {
				name = fmt.Sprintf("protomap-export-%s.json", time.Now().Format("2006-01-02"))
			}
			if !strings.HasSuffix(name, ".zst") {
				name += ".zst"
			}
			if err := writeCompressedExport(name, &data); err != nil {
				return err
			}

			total := 0
			for _, o := range objs {
				total += len(o)
			}
			printLine(cmd, i18n.T("cli.exported", total, len(objs), name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	return cmd
}

func writeCompressedExport(filename string, data *exportData) error {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not create export file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode export: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("could not flush zstd stream: %w", err)
	}
	return file.Sync()
}

// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/toeirei/protomap/internal/i18n"
	"github.com/toeirei/protomap/internal/mapper"
	"github.com/toeirei/protomap/internal/schema"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the store is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appMapper.Ping(cmd.Context()); err != nil {
				return err
			}
			printLine(cmd, i18n.T("cli.ping_ok"))
			return nil
		},
	}
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the public object types of the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := appMapper.ObjectTypes(cmd.Context())
			if err != nil {
				return err
			}
			if len(types) == 0 {
				printLine(cmd, i18n.T("cli.no_types"))
				return nil
			}
			for _, t := range types {
				printLine(cmd, t)
			}
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect or initialize the prototypes stored in the store",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored schema as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := appMapper.GetSchema(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, encodeSchema(s))
		},
	}

	var file string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write prototypes from a YAML or JSON file",
		Long: `Reads prototype definitions from --file and writes them to the store.
Initialization refuses to run when prototypes already exist unless --force
is given, in which case the file's prototypes are written over the stored ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schema.LoadFile(file)
			if err != nil {
				return err
			}
			if force {
				err = appMapper.ForceInitSchema(cmd.Context(), s)
			} else {
				err = appMapper.InitSchema(cmd.Context(), s)
			}
			if errors.Is(err, mapper.ErrSchemaExists) {
				return errors.New(i18n.T("cli.schema_exists"))
			}
			if err != nil {
				return err
			}
			printLine(cmd, i18n.T("cli.schema_written", len(s)))
			return nil
		},
	}
	initCmd.Flags().StringVarP(&file, "file", "f", "", "Prototype definitions (.yaml, .yml or .json)")
	initCmd.Flags().BoolVar(&force, "force", false, "Write over existing prototypes")
	_ = initCmd.MarkFlagRequired("file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

// encodeSchema returns the storable form of every public prototype.
func encodeSchema(s schema.Schema) map[string]any {
	types := s.Types()
	out := make(map[string]any, len(types))
	for _, name := range types {
		out[name] = s[name].Encode()
	}
	return out
}

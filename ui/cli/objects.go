// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"
	"github.com/toeirei/protomap/internal/i18n"
	"github.com/toeirei/protomap/internal/mapper"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <type>",
		Short: "Print a zero-valued object of the given type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := appMapper.NewObject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd, obj)
		},
	}
}

func addDataFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("data", "d", "", `Object fields as a JSON object ("-" or empty reads stdin)`)
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Persist a new object and print its serial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := readData(cmd)
			if err != nil {
				return err
			}
			serial, err := appMapper.AddObject(cmd.Context(), args[0], mapper.Object{Fields: fields})
			if err != nil {
				return err
			}
			printLine(cmd, i18n.T("cli.added", args[0], serial))
			return nil
		},
	}
	addDataFlag(cmd)
	return cmd
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <type> <serial>",
		Short: "Replace the fields of a persisted object",
		Long: `Replaces the stored fields of the object with the given serial. Fields
not present in --data are removed from the record.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := readData(cmd)
			if err != nil {
				return err
			}
			obj := mapper.Object{Serial: args[1], Fields: fields}
			if err := appMapper.UpdateObject(cmd.Context(), args[0], obj); err != nil {
				return err
			}
			printLine(cmd, i18n.T("cli.updated", args[0], args[1]))
			return nil
		},
	}
	addDataFlag(cmd)
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <serial>",
		Short: "Print one persisted object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := appMapper.GetObject(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd, obj)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <type>",
		Short: "Print every persisted object of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objs, err := appMapper.GetObjects(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(objs) == 0 {
				printLine(cmd, i18n.T("cli.no_objects", args[0]))
				return nil
			}
			return writeJSON(cmd, objs)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <serial>",
		Short: "Delete a persisted object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appMapper.DeleteObject(cmd.Context(), args[0], mapper.Object{}, args[1]); err != nil {
				return err
			}
			printLine(cmd, i18n.T("cli.deleted", args[0], args[1]))
			return nil
		},
	}
}

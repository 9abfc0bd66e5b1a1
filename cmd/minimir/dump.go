package main

import (
	"github.com/spf13/cobra"

	"minimir/internal/mir"
	"minimir/internal/progfile"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file.mmir>",
		Short: "Print a program in readable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := startCommand(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			p, err := progfile.ReadFile(args[0])
			if err != nil {
				return err
			}
			return mir.DumpProgram(cmd.OutOrStdout(), p, cfg.Target)
		},
	}
}

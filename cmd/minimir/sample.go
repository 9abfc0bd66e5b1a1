package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minimir/internal/build"
	"minimir/internal/progfile"
)

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample [flags] <name>",
		Short: "Write a built-in sample program to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSample,
	}
	cmd.Flags().StringP("output", "o", "", "output file (default: <name>"+progfile.Extension+")")
	cmd.Flags().Bool("list", false, "list the available samples")
	return cmd
}

func runSample(cmd *cobra.Command, args []string) error {
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return fmt.Errorf("failed to get list flag: %w", err)
	}
	pal, err := newPalette(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if list {
		for _, s := range build.Samples() {
			verdict := pal.ok.Sprint("well-formed")
			if !s.WellFormed {
				verdict = pal.bad.Sprint("ill-formed")
			}
			fmt.Fprintf(out, "%-18s %s  %s\n", s.Name, verdict, pal.dim.Sprint(s.Description))
		}
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("sample name required (see --list)")
	}

	s, ok := build.LookupSample(args[0])
	if !ok {
		return fmt.Errorf("unknown sample %q (see --list)", args[0])
	}
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if path == "" {
		path = s.Name + progfile.Extension
	}
	if err := progfile.WriteFile(path, s.Build()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet {
		fmt.Fprintf(out, "wrote %s to %s\n", s.Name, path)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"minimir/internal/version"
)

// errRejected is returned when at least one checked program is ill-formed or unreadable.
// The per-file output has already been printed, so main only sets the exit status.
var errRejected = errors.New("some programs were rejected")

// newRootCmd assembles the command tree. Tests build a fresh tree per run.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "minimir",
		Short:         "MiniRust-style IR checker and inspection tools",
		Long:          `minimir reads program files, checks them for well-formedness and renders them for inspection`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCheckCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newSampleCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("config", "", "path to minimir.toml (default: search upwards from the working directory)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|phase|detail|debug)")
	root.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	root.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring)")
	root.PersistentFlags().Int("trace-ring-size", 4096, "events kept in ring mode")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")

	return root
}

// main executes the root command and maps failures to exit status 1.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

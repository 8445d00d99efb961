package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"estcheck/internal/version"
)

// errEarlyErrors is returned after diagnostics were already printed; main
// only turns it into the exit status.
var errEarlyErrors = errors.New("early errors reported")

// newRootCmd builds the command tree with its persistent flags.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "estcheck",
		Short: "ECMAScript early-error checker for ESTree ASTs",
		Long: `estcheck validates ESTree syntax trees (JSON output of acorn, espree, meriyah and
other ESTree parsers) against the ECMAScript early-error rules`,
		Version: version.Version,
	}

	// Добавляем команды
	root.AddCommand(newCheckCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCleanCmd())

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file (0=unlimited)")

	root.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	root.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	root.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring tracer")
	root.PersistentFlags().Duration("trace-heartbeat", 0, "heartbeat interval (0=disabled)")
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

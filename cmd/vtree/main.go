package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	vterrors "github.com/vango-dev/vtree/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		vterrors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "vtree",
		Short: "Diff, check and serve virtual trees",
		Long: `vtree computes the patches that turn one virtual tree into another.

Trees are written as YAML or JSON documents:

  tag: ul
  attrs:
    class: list
  children:
    - tag: li
      key: a
      attrs:
        onclick: $select
      children: [Alpha]

The same reconciler backs a WebSocket server that streams patch frames
to connected clients.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupColor(cmd.OutOrStdout(), noColor)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		diffCmd(),
		checkCmd(),
		serveCmd(),
		versionCmd(),
	)

	return rootCmd
}

// exactArgs is cobra.ExactArgs reporting a structured usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return vterrors.New("E601").
				WithDetailf("%s expects %d arguments, got %d", cmd.Name(), n, len(args)).
				WithSuggestion("Usage: " + cmd.UseLine())
		}
		return nil
	}
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint(greenFg, "✓"), fmt.Sprintf(format, args...))
}

// failure prints a failed check.
func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint(redFg, "✗"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

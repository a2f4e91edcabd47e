package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	noColor bool
	verbose bool
)

// Flags for the bare "emuwatch" invocation, which behaves like watch.
var rootWatchFlags WatchFlags

var rootCmd = &cobra.Command{
	Use:   "emuwatch",
	Short: "Watch Android emulator memory and alert before the game runs out",
	Long: `emuwatch polls a running Android emulator over adb, charts its free
memory and the virtual memory left to 32-bit game processes, and alerts
with a desktop notification and sound when either runs low.

Running emuwatch without a subcommand starts the dashboard, same as
'emuwatch watch'.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyGlobalFlags()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), rootWatchFlags)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./.emuwatch.yaml, then ~/.config/emuwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	AddWatchFlags(rootCmd, &rootWatchFlags)
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

func applyGlobalFlags() {
	if noColor || os.Getenv("NO_COLOR") != "" {
		ui.DisableColors()
	}
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode reports err on w and returns the process exit status.
// ExitErrors carry their own status and print nothing.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}
	msg := err.Error()
	if isUnknownCommandError(err) {
		msg = fmt.Sprintf("%s\nRun 'emuwatch --help' for usage.", msg)
	}
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
	return 1
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

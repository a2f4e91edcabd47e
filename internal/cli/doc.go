// Package cli implements the emuwatch command-line interface.
//
// Commands are Cobra commands that load config, build a Session and hand
// off to the packages doing the work:
//
//	emuwatch                     - Same as watch
//	emuwatch watch               - Dashboard, or plain status lines
//	emuwatch devices             - List what adb sees
//	emuwatch probe [serial]      - One check, exit 2 when alerting
//	emuwatch alert test          - Send a test alert
//	emuwatch settings audio      - Show or set the alert sound toggle
//	emuwatch config init|set|show|keys
//	emuwatch doctor              - Check config, adb and the emulator, exit 1 on failure
//
// # Sessions
//
// NewSession wires one Config into the adb transport (local, or over SSH
// when transport.ssh_host is set), device discovery, the collector, the
// evaluator and the alert limiter. watch adds the scheduler on top. The
// session must be closed to release the SSH connection.
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) are defined on the root
// command. The monitoring flags (--interval, --extended-scan,
// --debug-alerts, --no-tui) are shared by the root command and watch
// through AddWatchFlags and override the config file.
//
// # Exit Codes
//
// Errors print to stderr and exit 1. Commands that report a result
// through the exit status return an errors.ExitError, which exits with
// its code and prints nothing.
package cli

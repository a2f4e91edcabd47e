package cli

import (
	"os"

	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	watchFlags      WatchFlags
	devicesConnect  bool
	devicesExtended bool
	devicesJSON     bool
	probePick       bool
	probeJSON       bool
	initForce       bool
	initLocal       bool
	initNonInteract bool
	doctorJSON      bool
	versionShort    bool
)

// watchCmd starts monitoring
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor emulator memory and alert when it runs low",
	Long: `Poll the emulator over adb, chart free memory and the virtual memory
left to 32-bit game processes, and alert when either drops below its
threshold.

When stdout is a terminal this opens a dashboard; otherwise, or with
--no-tui, status blocks are printed as they change.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  m           Mute or unmute alerts
  a           Toggle alert sound (remembered across runs)
  t           Send a test alert
  ?           Show help

Examples:
  emuwatch watch
  emuwatch watch --interval 2s
  emuwatch watch --no-tui > memory.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), watchFlags)
	},
}

// devicesCmd lists attached devices
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the devices adb can see",
	Long: `List the devices adb reports and mark the one monitoring would use.

With --connect, the known emulator endpoints are tried first, the same
way monitoring does when no device is attached.

Examples:
  emuwatch devices
  emuwatch devices --connect --extended-scan
  emuwatch devices --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(WatchFlags{ExtendedScan: devicesExtended})
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck // transport close errors are not actionable on exit
		return devicesCommand(cmd.Context(), s, cmd.OutOrStdout(), os.Stderr,
			devicesOptions{Connect: devicesConnect, JSON: devicesJSON})
	},
}

// probeCmd runs one check
var probeCmd = &cobra.Command{
	Use:   "probe [serial]",
	Short: "Check memory once and print the result",
	Long: `Run a single memory check and print it, without alerting.

The device is the serial given, one picked interactively with --pick,
or whichever emulator monitoring would find. Exits with status 2 when
a threshold is crossed.

Examples:
  emuwatch probe
  emuwatch probe 127.0.0.1:16384
  emuwatch probe --pick
  emuwatch probe --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := probeOptions{Pick: probePick, JSON: probeJSON}
		if len(args) == 1 {
			opts.Serial = args[0]
		}
		s, err := openSession(WatchFlags{})
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck // transport close errors are not actionable on exit
		return probeCommand(cmd.Context(), s, cmd.OutOrStdout(), opts)
	},
}

// alertCmd groups alert commands
var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Alert commands",
}

var alertTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification and sound",
	Long: `Send a test alert through the configured notifier, and play the alert
sound if sound is on. The sound cooldown does not apply.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(WatchFlags{})
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck // transport close errors are not actionable on exit
		return alertTestCommand(s, cmd.OutOrStdout())
	},
}

// settingsCmd groups persisted toggles
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or change remembered settings",
}

var settingsAudioCmd = &cobra.Command{
	Use:       "audio [on|off]",
	Short:     "Show or set whether alerts play a sound",
	ValidArgs: []string{"on", "off"},
	Args:      cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(WatchFlags{})
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck // transport close errors are not actionable on exit
		var value string
		if len(args) == 1 {
			value = args[0]
		}
		return settingsAudioCommand(s, cmd.OutOrStdout(), value)
	},
}

// configCmd groups config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, edit and inspect the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file",
	Long: `Create an emuwatch config file, asking for the packages to watch,
where the emulator runs and the alert thresholds.

Writes ~/.config/emuwatch/config.yaml, or ./.emuwatch.yaml with --local.

Examples:
  emuwatch config init
  emuwatch config init --local
  emuwatch config init --non-interactive --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Local:          initLocal,
			Overwrite:      initForce,
			NonInteractive: initNonInteract,
		}, cmd.OutOrStdout())
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one config value",
	Long: `Set a config value by dotted key, keeping the rest of the file and its
comments. List values are comma-separated.

Examples:
  emuwatch config set thresholds.host_free_mib 500
  emuwatch config set packages com.example.game,com.example.other
  emuwatch config set transport.ssh_host gaming-pc`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), args[0], args[1])
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout())
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the keys config set accepts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configKeysCommand(cmd.OutOrStdout())
	},
}

// doctorCmd checks the setup
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, adb and emulator connectivity",
	Long: `Run diagnostics on the emuwatch setup: the config and settings files,
the SSH connection when adb runs remotely, the adb binary, whether an
emulator is reachable, and the ABI of each watched package.

Exits with status 1 when a check fails.

Examples:
  emuwatch doctor
  emuwatch doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(WatchFlags{})
		if err != nil {
			if !errors.IsCode(err, errors.ErrConfig) {
				return err
			}
			// The config check reports what's wrong.
			s = nil
		} else {
			defer s.Close() //nolint:errcheck // transport close errors are not actionable on exit
		}
		return doctorCommand(cmd.Context(), s, cmd.OutOrStdout(), doctorJSON)
	},
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of emuwatch.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		writeVersion(cmd.OutOrStdout(), versionShort)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for emuwatch.

Examples:
  # Bash
  emuwatch completion bash > /etc/bash_completion.d/emuwatch

  # Zsh
  emuwatch completion zsh > "${fpath[1]}/_emuwatch"

  # Fish
  emuwatch completion fish > ~/.config/fish/completions/emuwatch.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrExec,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	AddWatchFlags(watchCmd, &watchFlags)

	devicesCmd.Flags().BoolVar(&devicesConnect, "connect", false, "try to connect to known emulator endpoints first")
	devicesCmd.Flags().BoolVar(&devicesExtended, "extended-scan", false, "also try extra MuMu and LDPlayer instance ports")
	devicesCmd.Flags().BoolVar(&devicesJSON, "json", false, "output in JSON format")

	probeCmd.Flags().BoolVar(&probePick, "pick", false, "choose the device interactively")
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "output in JSON format")

	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	configInitCmd.Flags().BoolVar(&initLocal, "local", false, "write ./.emuwatch.yaml instead of the global config")
	configInitCmd.Flags().BoolVar(&initNonInteract, "non-interactive", false, "use defaults without prompting")

	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")

	alertCmd.AddCommand(alertTestCmd)
	settingsCmd.AddCommand(settingsAudioCmd)
	configCmd.AddCommand(configInitCmd, configSetCmd, configShowCmd, configKeysCmd)

	// Register all commands
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(alertCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

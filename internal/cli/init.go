package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/emuwatch/internal/config"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/ui"
	"github.com/rileyhilliard/emuwatch/pkg/sshutil"
)

// InitOptions holds options for the config init command.
type InitOptions struct {
	Local          bool // Write ./.emuwatch.yaml instead of the global config
	Overwrite      bool // Overwrite existing config without asking
	NonInteractive bool // Skip prompts, use defaults
}

// initAnswers are the values collected by the init form, as typed.
type initAnswers struct {
	Packages        string
	SSHHost         string
	HostFreeMiB     string
	VSSRemainingMiB string
	ExtendedScan    bool
	SoundFile       string
}

func defaultAnswers() initAnswers {
	d := config.DefaultConfig()
	return initAnswers{
		Packages:        strings.Join(d.Packages, ", "),
		HostFreeMiB:     strconv.FormatInt(d.Thresholds.HostFreeMiB, 10),
		VSSRemainingMiB: strconv.FormatInt(d.Thresholds.VSSRemainingMiB, 10),
	}
}

const configHeader = `# emuwatch configuration
# Run 'emuwatch' to start monitoring, 'emuwatch config show' to see
# the effective values.

`

// initTarget returns where config init writes.
func initTarget(opts InitOptions) string {
	if explicit := Config(); explicit != "" {
		return explicit
	}
	if opts.Local || config.GlobalConfigPath() == "" {
		return filepath.Join(".", config.ConfigFileName)
	}
	return config.GlobalConfigPath()
}

// Init writes a new config file from prompts or defaults.
func Init(opts InitOptions, out io.Writer) error {
	path := initTarget(opts)

	fmt.Fprint(out, ui.RenderHeader(ui.HeaderInfo{
		Version: formatVersion(GetVersion()),
		Tagline: "Let's set up memory monitoring",
		Detail:  path,
	}))

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("'%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	answers := defaultAnswers()
	if !opts.NonInteractive {
		if err := askInit(&answers); err != nil {
			return err
		}
	}

	cfg, err := buildInitConfig(answers)
	if err != nil {
		return err
	}
	if err := writeConfigFile(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SuccessStyle.Render(ui.SymbolSuccess), path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  emuwatch devices --connect  - Find the emulator")
	fmt.Fprintln(out, "  emuwatch alert test         - Check notifications work")
	fmt.Fprintln(out, "  emuwatch                    - Start monitoring")
	return nil
}

// askInit runs the interactive form, starting from the values in a.
func askInit(a *initAnswers) error {
	hostOptions := []huh.Option[string]{huh.NewOption("This machine", "")}
	if hosts, err := sshutil.ParseSSHConfig(); err == nil {
		for _, h := range sshutil.FilterHostsWithKeys(hosts) {
			hostOptions = append(hostOptions,
				huh.NewOption(fmt.Sprintf("%s (%s)", h.Alias, h.Description()), h.Alias))
		}
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Packages to watch").
				Description("Comma-separated Android package names").
				Value(&a.Packages).
				Validate(func(s string) error {
					if len(splitList(s)) == 0 {
						return fmt.Errorf("at least one package is required")
					}
					return nil
				}),
		),
	}
	if len(hostOptions) > 1 {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where does the emulator run?").
				Description("emuwatch runs adb there over SSH").
				Options(hostOptions...).
				Value(&a.SSHHost),
		))
	}
	groups = append(groups,
		huh.NewGroup(
			huh.NewInput().
				Title("Alert when emulator free memory drops below (MiB)").
				Value(&a.HostFreeMiB).
				Validate(validateMiB),
			huh.NewInput().
				Title("Alert when a 32-bit game has less virtual memory left than (MiB)").
				Value(&a.VSSRemainingMiB).
				Validate(validateMiB),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Scan extra MuMu and LDPlayer instances?").
				Description("Only needed when running several emulator instances").
				Value(&a.ExtendedScan),
			huh.NewInput().
				Title("Alert sound file (optional)").
				Description("Leave empty to ring the terminal bell").
				Value(&a.SoundFile),
		),
	)

	if err := huh.NewForm(groups...).Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}
	return nil
}

func validateMiB(s string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

// buildInitConfig turns form answers into a validated config.
func buildInitConfig(a initAnswers) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if pkgs := splitList(a.Packages); len(pkgs) > 0 {
		cfg.Packages = pkgs
	}
	cfg.Transport.SSHHost = strings.TrimSpace(a.SSHHost)
	cfg.Devices.ExtendedScan = a.ExtendedScan
	cfg.Alerts.SoundFile = config.ExpandTilde(strings.TrimSpace(a.SoundFile))

	var err error
	if cfg.Thresholds.HostFreeMiB, err = parseMiB("host free memory threshold", a.HostFreeMiB, cfg.Thresholds.HostFreeMiB); err != nil {
		return nil, err
	}
	if cfg.Thresholds.VSSRemainingMiB, err = parseMiB("virtual memory threshold", a.VSSRemainingMiB, cfg.Thresholds.VSSRemainingMiB); err != nil {
		return nil, err
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseMiB(name, s string, def int64) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	if err := validateMiB(s); err != nil {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid %s", s, name),
			"Use a positive number of MiB, e.g. 300.")
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeConfigFile(path string, cfg *config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to create %s", filepath.Dir(path)),
			"Check directory permissions")
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}

// configSetCommand sets one key in the config file in use, or the global
// config when there is none. The file is left untouched when the result
// doesn't validate.
func configSetCommand(out io.Writer, key, value string) error {
	path, err := config.Find(Config())
	if err != nil {
		return err
	}
	if path == "" {
		path = config.GlobalConfigPath()
	}

	original, readErr := os.ReadFile(path)
	existed := readErr == nil

	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Run 'emuwatch config keys' to list the settable keys.")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if existed {
			_ = os.WriteFile(path, original, 0644)
		} else {
			_ = os.Remove(path)
		}
		return err
	}

	fmt.Fprintf(out, "%s %s = %s %s\n", ui.SuccessStyle.Render(ui.SymbolSuccess), key, value,
		ui.MutedStyle.Render("("+path+")"))
	return nil
}

// configShowCommand prints the effective config and where it came from.
func configShowCommand(out io.Writer) error {
	cfg, path, err := config.Resolve(Config())
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to render config", "")
	}

	source := path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(out, "# source: %s\n", source)
	_, err = out.Write(data)
	return err
}

// configKeysCommand lists the keys config set accepts.
func configKeysCommand(out io.Writer) error {
	for _, k := range config.Keys() {
		if config.IsListKey(k) {
			fmt.Fprintf(out, "%s %s\n", k, ui.MutedStyle.Render("(comma-separated)"))
			continue
		}
		fmt.Fprintln(out, k)
	}
	return nil
}

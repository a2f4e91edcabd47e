package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".emuwatch.yaml"
	// GlobalConfigDir is the directory for global config and settings.
	GlobalConfigDir = ".config/emuwatch"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. EMUWATCH_ALERTS_COOLDOWN.
	EnvPrefix = "EMUWATCH"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'emuwatch config init' to create one, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .emuwatch.yaml in the current directory
// 3. ~/.config/emuwatch/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	local := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	if global := GlobalConfigPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalConfigPath returns ~/.config/emuwatch/config.yaml, or "" when the
// home directory is unknown.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// Resolve finds and loads the config. With no file it returns defaults
// with environment overrides applied. The returned path is empty when no
// file was used.
func Resolve(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// LoadOrDefault loads config from the found path, or returns defaults if not found.
func LoadOrDefault() (*Config, error) {
	cfg, _, err := Resolve("")
	return cfg, err
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct. Every key has a
// viper default, so unmarshalling into a zero Config yields defaults for
// anything the file leaves out.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	cfg.ADB.Path = ExpandPath(cfg.ADB.Path)
	cfg.Alerts.SoundFile = ExpandPath(cfg.Alerts.SoundFile)
	cfg.SettingsFile = ExpandPath(cfg.SettingsFile)
	cfg.Log.File = ExpandPath(cfg.Log.File)

	return cfg, nil
}

// setDefaults registers every key so env overrides apply even when the
// file omits it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("adb.path", d.ADB.Path)
	v.SetDefault("adb.timeout", d.ADB.Timeout)
	v.SetDefault("transport.ssh_host", d.Transport.SSHHost)
	v.SetDefault("packages", d.Packages)
	v.SetDefault("thresholds.host_free_mib", d.Thresholds.HostFreeMiB)
	v.SetDefault("thresholds.vss_remaining_mib", d.Thresholds.VSSRemainingMiB)
	v.SetDefault("alerts.cooldown", d.Alerts.Cooldown)
	v.SetDefault("alerts.debug", d.Alerts.Debug)
	v.SetDefault("alerts.title", d.Alerts.Title)
	v.SetDefault("alerts.notify_command", d.Alerts.NotifyCommand)
	v.SetDefault("alerts.sound_command", d.Alerts.SoundCommand)
	v.SetDefault("alerts.sound_file", d.Alerts.SoundFile)
	v.SetDefault("devices.extended_scan", d.Devices.ExtendedScan)
	v.SetDefault("devices.endpoints", d.Devices.Endpoints)
	v.SetDefault("schedule.device_period", d.Schedule.DevicePeriod)
	v.SetDefault("schedule.check_period", d.Schedule.CheckPeriod)
	v.SetDefault("schedule.render_period", d.Schedule.RenderPeriod)
	v.SetDefault("series.capacity", d.Series.Capacity)
	v.SetDefault("settings_file", d.SettingsFile)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

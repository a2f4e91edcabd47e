package config

import (
	"time"

	"github.com/rileyhilliard/emuwatch/internal/logger"
)

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

// DefaultPackages are the game packages watched when none are configured.
var DefaultPackages = []string{
	"com.hypergryph.arknights",
	"com.hypergryph.arknights.bilibili",
}

// Config represents the complete emuwatch configuration file.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	ADB        ADBConfig        `yaml:"adb" mapstructure:"adb"`
	Transport  TransportConfig  `yaml:"transport" mapstructure:"transport"`
	Packages   []string         `yaml:"packages" mapstructure:"packages"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Alerts     AlertsConfig     `yaml:"alerts" mapstructure:"alerts"`
	Devices    DevicesConfig    `yaml:"devices" mapstructure:"devices"`
	Schedule   ScheduleConfig   `yaml:"schedule" mapstructure:"schedule"`
	Series     SeriesConfig     `yaml:"series" mapstructure:"series"`

	// SettingsFile holds persisted toggles. Empty means the default
	// location under ~/.config/emuwatch.
	SettingsFile string        `yaml:"settings_file" mapstructure:"settings_file"`
	Log          logger.Config `yaml:"log" mapstructure:"log"`
}

// ADBConfig locates the adb binary.
type ADBConfig struct {
	// Path to adb. Empty resolves platform-tools/adb next to the
	// executable, then PATH.
	Path    string        `yaml:"path" mapstructure:"path"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TransportConfig selects where adb runs.
type TransportConfig struct {
	// SSHHost runs adb on this host instead of locally. Accepts
	// user@host:port or an ssh config alias.
	SSHHost string `yaml:"ssh_host" mapstructure:"ssh_host"`
}

// ThresholdsConfig holds the alert thresholds in MiB.
type ThresholdsConfig struct {
	HostFreeMiB     int64 `yaml:"host_free_mib" mapstructure:"host_free_mib"`
	VSSRemainingMiB int64 `yaml:"vss_remaining_mib" mapstructure:"vss_remaining_mib"`
}

// AlertsConfig controls notifications and sound.
type AlertsConfig struct {
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown"`

	// Debug reports the host memory reading as an alert every cycle.
	Debug bool   `yaml:"debug" mapstructure:"debug"`
	Title string `yaml:"title" mapstructure:"title"`

	NotifyCommand []string `yaml:"notify_command" mapstructure:"notify_command"`
	SoundCommand  []string `yaml:"sound_command" mapstructure:"sound_command"`

	// SoundFile is played with SoundCommand. Empty rings the terminal bell.
	SoundFile string `yaml:"sound_file" mapstructure:"sound_file"`
}

// DevicesConfig controls emulator discovery.
type DevicesConfig struct {
	// ExtendedScan adds the extra MuMu and LDPlayer instance ports.
	ExtendedScan bool `yaml:"extended_scan" mapstructure:"extended_scan"`

	// Endpoints are tried after the built-in candidates.
	Endpoints []string `yaml:"endpoints" mapstructure:"endpoints"`
}

// ScheduleConfig holds the loop periods.
type ScheduleConfig struct {
	DevicePeriod time.Duration `yaml:"device_period" mapstructure:"device_period"`
	CheckPeriod  time.Duration `yaml:"check_period" mapstructure:"check_period"`
	RenderPeriod time.Duration `yaml:"render_period" mapstructure:"render_period"`
}

// SeriesConfig bounds the chart history.
type SeriesConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		ADB: ADBConfig{
			Timeout: 5 * time.Second,
		},
		Packages: append([]string(nil), DefaultPackages...),
		Thresholds: ThresholdsConfig{
			HostFreeMiB:     300,
			VSSRemainingMiB: 300,
		},
		Alerts: AlertsConfig{
			Cooldown: 15 * time.Second,
			Title:    "emulator memory low",
		},
		Devices: DevicesConfig{
			Endpoints: []string{},
		},
		Schedule: ScheduleConfig{
			DevicePeriod: 3 * time.Second,
			CheckPeriod:  time.Second,
			RenderPeriod: 500 * time.Millisecond,
		},
		Series: SeriesConfig{
			Capacity: 10000,
		},
		Log: logger.Config{
			Level: "info",
		},
	}
}

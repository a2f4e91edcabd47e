package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/errors"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but emuwatch only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade emuwatch or lower the version field.")
	}

	checks := []struct {
		section string
		fn      func() error
	}{
		{"adb", func() error { return validateADB(cfg.ADB) }},
		{"packages", func() error { return validatePackages(cfg.Packages) }},
		{"thresholds", func() error { return validateThresholds(cfg.Thresholds) }},
		{"alerts", func() error { return validateAlerts(cfg.Alerts) }},
		{"devices", func() error { return validateDevices(cfg.Devices) }},
		{"schedule", func() error { return validateSchedule(cfg.Schedule) }},
		{"series", func() error { return validateSeries(cfg.Series) }},
		{"log", func() error { return validateLog(cfg.Log.Level) }},
	}
	for _, c := range checks {
		if err := c.fn(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				fmt.Sprintf("Check the '%s' section of your config.", c.section))
		}
	}
	return nil
}

func validateADB(a ADBConfig) error {
	return positiveDuration("adb.timeout", a.Timeout)
}

func validatePackages(pkgs []string) error {
	if len(pkgs) == 0 {
		return fmt.Errorf("packages is empty - list at least one game package to watch")
	}
	seen := make(map[string]bool, len(pkgs))
	for i, p := range pkgs {
		p = strings.TrimSpace(p)
		if p == "" {
			return fmt.Errorf("packages has an empty entry at position %d", i)
		}
		if strings.ContainsAny(p, " \t'\"|;&") {
			return fmt.Errorf("package '%s' doesn't look like an Android package name", p)
		}
		if seen[p] {
			return fmt.Errorf("package '%s' is listed twice", p)
		}
		seen[p] = true
	}
	return nil
}

func validateThresholds(t ThresholdsConfig) error {
	if t.HostFreeMiB <= 0 {
		return fmt.Errorf("thresholds.host_free_mib needs to be positive (got %d)", t.HostFreeMiB)
	}
	if t.VSSRemainingMiB <= 0 {
		return fmt.Errorf("thresholds.vss_remaining_mib needs to be positive (got %d)", t.VSSRemainingMiB)
	}
	return nil
}

func validateAlerts(a AlertsConfig) error {
	if a.Cooldown < 0 {
		return fmt.Errorf("alerts.cooldown can't be negative")
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("alerts.title is empty")
	}
	if a.SoundFile != "" && len(a.SoundCommand) > 0 && strings.TrimSpace(a.SoundCommand[0]) == "" {
		return fmt.Errorf("alerts.sound_command starts with an empty entry")
	}
	if len(a.NotifyCommand) > 0 && strings.TrimSpace(a.NotifyCommand[0]) == "" {
		return fmt.Errorf("alerts.notify_command starts with an empty entry")
	}
	return nil
}

func validateDevices(d DevicesConfig) error {
	for _, e := range d.Endpoints {
		if strings.TrimSpace(e) == "" {
			return fmt.Errorf("devices.endpoints has an empty entry - remove it or add host:port")
		}
	}
	return nil
}

func validateSchedule(s ScheduleConfig) error {
	if err := positiveDuration("schedule.device_period", s.DevicePeriod); err != nil {
		return err
	}
	if err := positiveDuration("schedule.check_period", s.CheckPeriod); err != nil {
		return err
	}
	return positiveDuration("schedule.render_period", s.RenderPeriod)
}

func validateSeries(s SeriesConfig) error {
	if s.Capacity <= 0 {
		return fmt.Errorf("series.capacity needs to be positive (got %d)", s.Capacity)
	}
	return nil
}

func validateLog(level string) error {
	if !validLogLevels[strings.ToLower(level)] {
		return fmt.Errorf("log.level '%s' isn't valid - use debug, info, warn, or error", level)
	}
	return nil
}

func positiveDuration(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s needs to be a positive duration like '1s' (got %v)", name, d)
	}
	return nil
}

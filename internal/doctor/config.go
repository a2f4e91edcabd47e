package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/rileyhilliard/emuwatch/internal/config"
	"gopkg.in/yaml.v3"
)

// ConfigCheck verifies the config file can be found, loaded and
// validated. Running on built-in defaults is a warning, not a failure.
type ConfigCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigCheck) Name() string     { return "config" }
func (c *ConfigCheck) Category() string { return "CONFIG" }

func (c *ConfigCheck) Run(_ context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return failure(err, "Run 'emuwatch config init' to create a config")
	}
	if path == "" {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "No config file, using built-in defaults",
			Suggestion: "Run 'emuwatch config init' to pick packages and thresholds",
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return failure(err, "Check the YAML syntax in "+path)
	}
	if err := config.Validate(cfg); err != nil {
		return failure(err, "Fix "+path+" or run 'emuwatch config set'")
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

// SettingsCheck verifies the persisted settings file parses. A corrupt
// file silently falls back to defaults at runtime, which is worth
// surfacing here.
type SettingsCheck struct {
	Path string // Empty means the default location
}

func (c *SettingsCheck) Name() string     { return "settings" }
func (c *SettingsCheck) Category() string { return "CONFIG" }

func (c *SettingsCheck) Run(_ context.Context) CheckResult {
	path := c.Path
	if path == "" {
		path = config.DefaultSettingsPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("Settings: defaults (%s is created on first change)", path),
		}
	}
	if err != nil {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Can't read settings %s: %v", path, err),
			Suggestion: "Check file permissions",
		}
	}

	var stored map[string]any
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return CheckResult{
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Settings file %s is corrupt, defaults are used", path),
			Suggestion: "Delete it or run 'emuwatch settings audio on|off' to rewrite it",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Settings: %s", path),
	}
}

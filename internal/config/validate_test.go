package config

import (
	"testing"

	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:    "future version",
			mutate:  func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr: "from the future",
		},
		{
			name:    "zero adb timeout",
			mutate:  func(c *Config) { c.ADB.Timeout = 0 },
			wantErr: "adb.timeout",
		},
		{
			name:    "no packages",
			mutate:  func(c *Config) { c.Packages = nil },
			wantErr: "packages is empty",
		},
		{
			name:    "blank package",
			mutate:  func(c *Config) { c.Packages = []string{"com.a", "  "} },
			wantErr: "empty entry at position 1",
		},
		{
			name:    "package with shell characters",
			mutate:  func(c *Config) { c.Packages = []string{"com.a; rm -rf /"} },
			wantErr: "doesn't look like",
		},
		{
			name:    "duplicate package",
			mutate:  func(c *Config) { c.Packages = []string{"com.a", "com.a"} },
			wantErr: "listed twice",
		},
		{
			name:    "zero host threshold",
			mutate:  func(c *Config) { c.Thresholds.HostFreeMiB = 0 },
			wantErr: "host_free_mib",
		},
		{
			name:    "negative vss threshold",
			mutate:  func(c *Config) { c.Thresholds.VSSRemainingMiB = -1 },
			wantErr: "vss_remaining_mib",
		},
		{
			name:    "negative cooldown",
			mutate:  func(c *Config) { c.Alerts.Cooldown = -1 },
			wantErr: "alerts.cooldown",
		},
		{
			name:   "zero cooldown allowed",
			mutate: func(c *Config) { c.Alerts.Cooldown = 0 },
		},
		{
			name:    "blank title",
			mutate:  func(c *Config) { c.Alerts.Title = " " },
			wantErr: "alerts.title",
		},
		{
			name:    "blank notify command",
			mutate:  func(c *Config) { c.Alerts.NotifyCommand = []string{""} },
			wantErr: "notify_command",
		},
		{
			name:    "blank endpoint",
			mutate:  func(c *Config) { c.Devices.Endpoints = []string{""} },
			wantErr: "devices.endpoints",
		},
		{
			name:    "zero check period",
			mutate:  func(c *Config) { c.Schedule.CheckPeriod = 0 },
			wantErr: "schedule.check_period",
		},
		{
			name:    "negative render period",
			mutate:  func(c *Config) { c.Schedule.RenderPeriod = -1 },
			wantErr: "schedule.render_period",
		},
		{
			name:    "zero device period",
			mutate:  func(c *Config) { c.Schedule.DevicePeriod = 0 },
			wantErr: "schedule.device_period",
		},
		{
			name:    "zero capacity",
			mutate:  func(c *Config) { c.Series.Capacity = 0 },
			wantErr: "series.capacity",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log.level",
		},
		{
			name:   "log level is case insensitive",
			mutate: func(c *Config) { c.Log.Level = "DEBUG" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, Validate(nil))
}

package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/emuwatch/internal/collector"
	"github.com/rileyhilliard/emuwatch/internal/device"
)

// Target is the device found by EmulatorCheck, shared with the package
// checks that run after it.
type Target struct {
	ID device.ID
}

// EmulatorCheck looks for a live device, connecting to the known
// emulator endpoints when none is attached.
type EmulatorCheck struct {
	Registry *device.Registry
	Target   *Target
}

func (c *EmulatorCheck) Name() string     { return "emulator" }
func (c *EmulatorCheck) Category() string { return "EMULATOR" }

func (c *EmulatorCheck) Run(ctx context.Context) CheckResult {
	if live := c.Registry.ListLive(ctx); len(live) > 0 {
		c.found(live[0])
		return CheckResult{Status: StatusPass, Message: "Emulator online: " + live[0]}
	}

	id := c.Registry.Acquire(ctx)
	if id == "" {
		addrs := make([]string, 0, len(c.Registry.Candidates()))
		for _, e := range c.Registry.Candidates() {
			addrs = append(addrs, e.Address)
		}
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("No emulator reachable (tried %d endpoints)", len(addrs)),
			Suggestion: "Start the emulator, enable devices.extended_scan, or add its adb address to devices.endpoints\nTried: " + strings.Join(addrs, ", "),
		}
	}
	c.found(id)
	return CheckResult{Status: StatusPass, Message: "Connected to " + id}
}

func (c *EmulatorCheck) found(id device.ID) {
	if c.Target != nil {
		c.Target.ID = id
	}
}

// PackageCheck reports a watched package's ABI on the device found by
// EmulatorCheck.
type PackageCheck struct {
	Collector *collector.Collector
	Package   string
	Target    *Target
}

func (c *PackageCheck) Name() string     { return "package:" + c.Package }
func (c *PackageCheck) Category() string { return "EMULATOR" }

func (c *PackageCheck) Run(ctx context.Context) CheckResult {
	if c.Target == nil || c.Target.ID == "" {
		return CheckResult{Status: StatusWarn, Message: c.Package + ": skipped, no emulator"}
	}

	abi := c.Collector.ABI(ctx, c.Target.ID, c.Package)
	switch {
	case abi == collector.ABIUnknown:
		return CheckResult{
			Status:     StatusWarn,
			Message:    c.Package + ": not installed or unreadable",
			Suggestion: "Check the package name with: adb shell pm list packages",
		}
	case abi.Is32Bit():
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("%s: %s, 32-bit, virtual memory is watched", c.Package, abi),
		}
	default:
		return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%s: %s", c.Package, abi)}
	}
}

// Options selects which checks NewChecks builds.
type Options struct {
	ConfigPath   string
	SettingsPath string
	SSHHost      string
	ADB          *ADBCheck
	Registry     *device.Registry
	Collector    *collector.Collector
	Packages     []string
}

// NewChecks returns the checks in report order. The SSH check is only
// included when adb runs on another host.
func NewChecks(o Options) []Check {
	checks := []Check{
		&ConfigCheck{ConfigPath: o.ConfigPath},
		&SettingsCheck{Path: o.SettingsPath},
	}
	if o.SSHHost != "" {
		checks = append(checks, &SSHCheck{Host: o.SSHHost})
	}
	if o.ADB != nil {
		checks = append(checks, o.ADB)
	}
	if o.Registry != nil {
		target := &Target{}
		checks = append(checks, &EmulatorCheck{Registry: o.Registry, Target: target})
		if o.Collector != nil {
			for _, p := range o.Packages {
				checks = append(checks, &PackageCheck{Collector: o.Collector, Package: p, Target: target})
			}
		}
	}
	return checks
}

// Package collector polls a device for the memory metrics emuwatch
// evaluates. Each metric is fetched independently; a failure leaves only
// that metric absent.
package collector

import (
	"context"
	"strconv"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/adb"
	"github.com/rileyhilliard/emuwatch/internal/collector/parsers"
	"github.com/rileyhilliard/emuwatch/internal/logger"
)

// ABI is a package's primary CPU ABI.
type ABI string

const (
	ABIX86     ABI = "x86"
	ABIX86_64  ABI = "x86_64"
	ABIArmV7   ABI = "armeabi-v7a"
	ABIArm64   ABI = "arm64-v8a"
	ABIUnknown ABI = "unknown"
)

// Is32Bit reports whether the ABI has a 4 GiB address space, which is
// what makes VSS exhaustion possible.
func (a ABI) Is32Bit() bool {
	return a == ABIX86
}

func toABI(s string) ABI {
	switch ABI(s) {
	case ABIX86, ABIX86_64, ABIArmV7, ABIArm64:
		return ABI(s)
	}
	return ABIUnknown
}

// PackageMetric holds one package's values for a cycle.
type PackageMetric struct {
	Name string
	ABI  ABI
	// VSS is the virtual set size in bytes; nil when unavailable.
	VSS *int64
}

// Sample is one collection cycle for one device.
type Sample struct {
	Device   string
	At       time.Time
	Packages []PackageMetric
	// HostFree is the emulator guest's free memory in bytes; nil when
	// unavailable.
	HostFree *int64
}

// Empty reports whether no metric at all was collected.
func (s Sample) Empty() bool {
	if s.HostFree != nil {
		return false
	}
	for _, p := range s.Packages {
		if p.ABI != ABIUnknown || p.VSS != nil {
			return false
		}
	}
	return true
}

// Collector fetches metrics for a fixed list of packages.
type Collector struct {
	transport adb.Transport
	packages  []string
	log       logger.Logger
	now       func() time.Time
}

// New creates a collector for the given packages, in display order.
func New(t adb.Transport, packages []string, log logger.Logger) *Collector {
	if log == nil {
		log = logger.Noop()
	}
	return &Collector{
		transport: t,
		packages:  append([]string(nil), packages...),
		log:       log,
		now:       time.Now,
	}
}

// Packages returns the tracked package names.
func (c *Collector) Packages() []string {
	return append([]string(nil), c.packages...)
}

// Collect runs one cycle against id.
func (c *Collector) Collect(ctx context.Context, id string) Sample {
	s := Sample{Device: id, At: c.now()}
	for _, pkg := range c.packages {
		s.Packages = append(s.Packages, PackageMetric{
			Name: pkg,
			ABI:  c.ABI(ctx, id, pkg),
			VSS:  c.VSS(ctx, id, pkg),
		})
	}
	s.HostFree = c.HostFree(ctx, id)
	return s
}

// ABI returns the package's primary ABI, or ABIUnknown when the package
// is missing, has no native code, or the query failed.
func (c *Collector) ABI(ctx context.Context, id, pkg string) ABI {
	out, err := adb.Shell(ctx, c.transport, id, "pm", "dump", pkg, "|", "grep", "primaryCpuAbi")
	if err != nil {
		c.log.Debug("abi %s on %s: %v", pkg, id, err)
		return ABIUnknown
	}
	value, err := parsers.ParseABI(out)
	if err != nil {
		c.log.Debug("abi %s on %s: %v", pkg, id, err)
		return ABIUnknown
	}
	return toABI(value)
}

// VSS returns the package process's virtual set size in bytes, or nil
// when the process isn't running or the query failed.
func (c *Collector) VSS(ctx context.Context, id, pkg string) *int64 {
	out, err := adb.Shell(ctx, c.transport, id, "pidof", "-s", pkg)
	if err != nil {
		c.log.Debug("pidof %s on %s: %v", pkg, id, err)
		return nil
	}
	pid, err := parsers.ParsePid(out)
	if err != nil {
		c.log.Debug("pidof %s on %s: %v", pkg, id, err)
		return nil
	}
	out, err = adb.Shell(ctx, c.transport, id, "cat", "/proc/"+strconv.Itoa(pid)+"/statm")
	if err != nil {
		c.log.Debug("statm %d on %s: %v", pid, id, err)
		return nil
	}
	vss, err := parsers.ParseStatmVSS(out)
	if err != nil {
		c.log.Debug("statm %d on %s: %v", pid, id, err)
		return nil
	}
	return &vss
}

// HostFree returns the device's free memory in bytes, or nil.
func (c *Collector) HostFree(ctx context.Context, id string) *int64 {
	out, err := adb.Shell(ctx, c.transport, id, "free")
	if err != nil {
		c.log.Debug("free on %s: %v", id, err)
		return nil
	}
	free, err := parsers.ParseFreeBytes(out)
	if err != nil {
		c.log.Debug("free on %s: %v", id, err)
		return nil
	}
	return &free
}

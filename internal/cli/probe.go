package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rileyhilliard/emuwatch/internal/adb"
	"github.com/rileyhilliard/emuwatch/internal/alert"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/scheduler"
	"github.com/rileyhilliard/emuwatch/internal/ui"
)

// ExitAlerting is the probe exit status when a threshold was crossed.
const ExitAlerting = 2

// ProbeOutput is the --json output of the probe command.
type ProbeOutput struct {
	Device      string          `json:"device"`
	HostFreeMiB *float64        `json:"host_free_mib"`
	Packages    []PackageStatus `json:"packages"`
	Lines       []string        `json:"lines"`
	Alerts      []string        `json:"alerts"`
}

// PackageStatus is one package's reading.
type PackageStatus struct {
	Name   string   `json:"name"`
	ABI    string   `json:"abi"`
	VSSMiB *float64 `json:"vss_mib"`
}

type probeOptions struct {
	Serial string
	Pick   bool
	JSON   bool

	// pick chooses among devices; defaults to ui.PickDevice.
	pick func([]ui.DeviceInfo) (*ui.DeviceInfo, error)
}

// probeCommand runs a single check and prints it. Returns an ExitError
// with ExitAlerting when the check is alert-worthy, so scripts can test
// the result.
func probeCommand(ctx context.Context, s *Session, out io.Writer, opts probeOptions) error {
	id, err := chooseDevice(ctx, s, opts)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}

	sample := s.Collector.Collect(ctx, id)
	ev := s.Evaluator.Evaluate(sample)
	lines := scheduler.SampleStatus(id, sample, ev.Lines)

	if opts.JSON {
		result := ProbeOutput{
			Device:      id,
			HostFreeMiB: toMiB(sample.HostFree),
			Packages:    make([]PackageStatus, 0, len(sample.Packages)),
			Lines:       lines,
			Alerts:      append([]string{}, ev.Conditions...),
		}
		for _, p := range sample.Packages {
			result.Packages = append(result.Packages, PackageStatus{
				Name:   p.Name,
				ABI:    string(p.ABI),
				VSSMiB: toMiB(p.VSS),
			})
		}
		if err := WriteJSONSuccess(out, result); err != nil {
			return err
		}
	} else {
		writeStatus(out, scheduler.Status{Device: id, Lines: lines})
	}

	if ev.AlertWorthy() {
		return errors.NewExitError(ExitAlerting)
	}
	return nil
}

// chooseDevice resolves the device to probe: the one named, one picked
// interactively, or whatever monitoring would acquire. Returns "" when
// the picker was cancelled.
func chooseDevice(ctx context.Context, s *Session, opts probeOptions) (string, error) {
	if opts.Serial != "" {
		if !s.Registry.IsLive(ctx, opts.Serial) {
			_ = adb.Connect(ctx, s.Transport, opts.Serial)
			if !s.Registry.IsLive(ctx, opts.Serial) {
				return "", errors.New(errors.ErrDevice,
					fmt.Sprintf("Device %s isn't attached", opts.Serial),
					"Check the serial with 'emuwatch devices', or start the emulator first.")
			}
		}
		return opts.Serial, nil
	}

	if opts.Pick {
		devices, err := adb.Devices(ctx, s.Transport)
		if err != nil {
			return "", errors.WrapWithCode(err, errors.ErrTransport,
				"Couldn't list devices",
				"Check that adb works: run 'adb devices' yourself, or set adb.path in the config.")
		}
		listed := buildDevicesOutput(devices, s.Registry.Candidates())
		var infos []ui.DeviceInfo
		for _, d := range listed.Devices {
			if d.State == adb.StateOffline {
				continue
			}
			infos = append(infos, ui.DeviceInfo{Serial: d.Serial, State: d.State, Emulator: d.Emulator})
		}
		pick := opts.pick
		if pick == nil {
			pick = ui.PickDevice
		}
		chosen, err := pick(infos)
		if err != nil || chosen == nil {
			return "", err
		}
		return chosen.Serial, nil
	}

	id := s.Registry.Acquire(ctx)
	if id == "" {
		return "", errors.New(errors.ErrDevice,
			"No emulator found",
			"Start the emulator, or add its adb address under devices.endpoints in the config.")
	}
	return id, nil
}

func toMiB(b *int64) *float64 {
	if b == nil {
		return nil
	}
	v := float64(*b) / alert.MiB
	return &v
}

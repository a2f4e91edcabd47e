package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rileyhilliard/emuwatch/internal/adb"
	"github.com/rileyhilliard/emuwatch/internal/device"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/ui"
)

// DevicesOutput is the --json output of the devices command.
type DevicesOutput struct {
	Devices []DeviceStatus `json:"devices"`
	// Current is the device monitoring would use; empty when none is live.
	Current    string            `json:"current"`
	Candidates []device.Endpoint `json:"candidates,omitempty"`
}

// DeviceStatus is one attached device.
type DeviceStatus struct {
	Serial   string `json:"serial"`
	State    string `json:"state"`
	Emulator string `json:"emulator,omitempty"`
	Current  bool   `json:"current"`
}

type devicesOptions struct {
	Connect bool
	JSON    bool
}

// devicesCommand lists what adb sees. With Connect it first tries the
// emulator endpoints the way monitoring does.
func devicesCommand(ctx context.Context, s *Session, out, progress io.Writer, opts devicesOptions) error {
	if opts.Connect {
		if opts.JSON {
			s.Registry.Acquire(ctx)
		} else {
			spin := ui.NewSpinner(progress, "Connecting to emulators")
			spin.Start()
			if id := s.Registry.Acquire(ctx); id != "" {
				spin.SetLabel("Connected to " + id)
				spin.Success()
			} else {
				spin.SetLabel("No emulator reachable")
				spin.Fail()
			}
		}
	}

	devices, err := adb.Devices(ctx, s.Transport)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransport,
			"Couldn't list devices",
			"Check that adb works: run 'adb devices' yourself, or set adb.path in the config.")
	}

	result := buildDevicesOutput(devices, s.Registry.Candidates())

	if opts.JSON {
		return WriteJSONSuccess(out, result)
	}
	return writeDevicesText(out, result)
}

// buildDevicesOutput labels devices with known emulator names and marks
// the first live one, which is what monitoring picks.
func buildDevicesOutput(devices []adb.Device, candidates []device.Endpoint) DevicesOutput {
	names := make(map[string]string, len(candidates))
	for _, c := range candidates {
		names[c.Address] = c.Name
	}

	result := DevicesOutput{Devices: make([]DeviceStatus, 0, len(devices))}
	for _, d := range devices {
		ds := DeviceStatus{Serial: d.Serial, State: d.State, Emulator: names[d.Serial]}
		if result.Current == "" && d.Online() {
			ds.Current = true
			result.Current = d.Serial
		}
		result.Devices = append(result.Devices, ds)
	}
	if len(result.Devices) == 0 {
		result.Candidates = candidates
	}
	return result
}

func writeDevicesText(w io.Writer, result DevicesOutput) error {
	rows := make([]ui.DeviceRow, len(result.Devices))
	for i, d := range result.Devices {
		rows[i] = ui.DeviceRow{Serial: d.Serial, State: d.State, Emulator: d.Emulator, Current: d.Current}
	}
	fmt.Fprintln(w, ui.RenderDeviceTable(rows))

	if len(result.Candidates) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.MutedStyle.Render("Monitoring will try these endpoints:"))
		cells := make([][]string, len(result.Candidates))
		for i, c := range result.Candidates {
			cells[i] = []string{c.Name, c.Address}
		}
		fmt.Fprintln(w, ui.RenderSimpleTable([]ui.TableColumn{
			{Title: "EMULATOR", Width: 16},
			{Title: "ADDRESS", Width: 22},
		}, cells))
	}
	return nil
}

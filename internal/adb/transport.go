// Package adb issues remote-shell commands against Android devices.
//
// The Transport interface is the only thing the rest of emuwatch depends on.
// Local runs the adb binary on this machine; Remote runs the same command
// line on another machine over SSH, for emulators that live on a different
// workstation than the watcher.
package adb

import (
	"bufio"
	"context"
	"strings"
	"time"
)

// DefaultTimeout bounds a single adb invocation so a hung adb server can't
// stall the polling loops.
const DefaultTimeout = 5 * time.Second

// Transport runs one adb invocation. An empty serial targets no specific
// device (used for "devices" and "connect"). Any failure (spawn error,
// non-zero exit, timeout) is returned as an error; callers that poll treat
// it as "value absent".
type Transport interface {
	Run(ctx context.Context, serial string, args ...string) (string, error)
}

// StateOffline is the state adb reports for attached but unusable devices.
const StateOffline = "offline"

// Device is one row of "adb devices" output.
type Device struct {
	Serial string
	State  string
}

// Online reports whether adb considers the device usable.
func (d Device) Online() bool {
	return d.State != StateOffline
}

// Args builds the adb argv for a command, inserting -s <serial> when set.
func Args(serial string, args ...string) []string {
	argv := make([]string, 0, len(args)+2)
	if serial != "" {
		argv = append(argv, "-s", serial)
	}
	return append(argv, args...)
}

// Devices enumerates every device adb knows about, online or not.
func Devices(ctx context.Context, t Transport) ([]Device, error) {
	out, err := t.Run(ctx, "", "devices")
	if err != nil {
		return nil, err
	}
	return ParseDevices(out), nil
}

// Connect asks the adb server to attach to a TCP endpoint. adb exits zero
// even when the connection is refused, so success must be confirmed by a
// following Devices call.
func Connect(ctx context.Context, t Transport, endpoint string) error {
	_, err := t.Run(ctx, "", "connect", endpoint)
	return err
}

// Shell runs a command in the device shell.
func Shell(ctx context.Context, t Transport, serial string, args ...string) (string, error) {
	return t.Run(ctx, serial, append([]string{"shell"}, args...)...)
}

// ParseDevices parses "adb devices" output. The header line and daemon
// start-up chatter ("* daemon started successfully") are skipped.
//
//	List of devices attached
//	127.0.0.1:16384	device
//	emulator-5554	offline
func ParseDevices(output string) []Device {
	var devices []Device
	scanner := bufio.NewScanner(strings.NewReader(output))
	header := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		if header && strings.HasPrefix(line, "List of devices") {
			header = false
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, Device{
			Serial: fields[0],
			State:  fields[1],
		})
	}
	return devices
}

// Package testing provides an in-memory adb Transport for tests.
package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call is one recorded Run invocation.
type Call struct {
	Serial string
	Args   []string
}

// Command returns the arguments joined with spaces.
func (c Call) Command() string {
	return strings.Join(c.Args, " ")
}

// Response is a canned result.
type Response struct {
	Output string
	Err    error
}

// FakeTransport answers Run from canned responses keyed by serial and
// command. A Handler, when set, is consulted first and may decline by
// returning false. Unknown commands fail.
type FakeTransport struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []Call

	Handler func(serial string, args []string) (Response, bool)
}

// NewFakeTransport creates an empty fake.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{responses: make(map[string]Response)}
}

func key(serial, command string) string {
	return serial + "|" + command
}

// Set registers the output for a command line on a serial. Use an empty
// serial for "devices" and "connect".
func (f *FakeTransport) Set(serial, command, output string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key(serial, command)] = Response{Output: output}
}

// SetError makes a command fail.
func (f *FakeTransport) SetError(serial, command string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key(serial, command)] = Response{Err: err}
}

// SetDevices sets the "adb devices" output from serial/state pairs.
func (f *FakeTransport) SetDevices(pairs ...string) {
	var b strings.Builder
	b.WriteString("List of devices attached\n")
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, "%s\t%s\n", pairs[i], pairs[i+1])
	}
	f.Set("", "devices", b.String())
}

// Calls returns the recorded invocations in order.
func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Commands returns the recorded command lines, each prefixed with
// "-s <serial> " when a serial was given.
func (f *FakeTransport) Commands() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		if c.Serial != "" {
			out[i] = "-s " + c.Serial + " " + c.Command()
		} else {
			out[i] = c.Command()
		}
	}
	return out
}

// Reset clears recorded calls.
func (f *FakeTransport) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Run implements adb.Transport.
func (f *FakeTransport) Run(ctx context.Context, serial string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Serial: serial, Args: append([]string(nil), args...)})
	handler := f.Handler
	resp, ok := f.responses[key(serial, strings.Join(args, " "))]
	f.mu.Unlock()

	if handler != nil {
		if r, handled := handler(serial, args); handled {
			return r.Output, r.Err
		}
	}
	if !ok {
		return "", fmt.Errorf("fake adb: no response for %q on %q", strings.Join(args, " "), serial)
	}
	return resp.Output, resp.Err
}

package doctor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/adb"
	"github.com/rileyhilliard/emuwatch/pkg/sshutil"
)

// ADBCheck runs "adb version" through the transport the monitor uses.
type ADBCheck struct {
	Transport adb.Transport
	// Where names the machine adb runs on, for messages.
	Where string
}

func (c *ADBCheck) Name() string     { return "adb" }
func (c *ADBCheck) Category() string { return "ADB" }

func (c *ADBCheck) Run(ctx context.Context) CheckResult {
	out, err := c.Transport.Run(ctx, "", "version")
	if err != nil {
		return failure(err, "Install Android platform-tools or set adb.path in the config")
	}

	version := firstLine(out)
	if version == "" {
		version = "unknown version"
	}
	where := ""
	if c.Where != "" {
		where = " on " + c.Where
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("adb works%s (%s)", where, version),
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// DialFunc opens a connection to host.
type DialFunc func(host string, timeout time.Duration) (io.Closer, error)

// SSHCheck dials the configured SSH host and reports the handshake time.
type SSHCheck struct {
	Host    string
	Timeout time.Duration
	Dial    DialFunc // nil uses sshutil.Dial
}

func (c *SSHCheck) Name() string     { return "ssh" }
func (c *SSHCheck) Category() string { return "SSH" }

func (c *SSHCheck) Run(_ context.Context) CheckResult {
	dial := c.Dial
	if dial == nil {
		dial = func(host string, timeout time.Duration) (io.Closer, error) {
			return sshutil.Dial(host, timeout)
		}
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	start := time.Now()
	conn, err := dial(c.Host, timeout)
	if err != nil {
		return failure(err, fmt.Sprintf("Try: ssh %s", c.Host))
	}
	latency := time.Since(start)
	_ = conn.Close()

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Connected to %s (%s)", c.Host, formatLatency(latency)),
	}
}

func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

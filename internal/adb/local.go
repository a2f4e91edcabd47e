package adb

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/errors"
)

// Local runs the adb binary on this machine.
type Local struct {
	// Path is the adb executable. Empty means ResolvePath().
	Path string
	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewLocal creates a Local transport for the given binary path.
func NewLocal(path string, timeout time.Duration) *Local {
	return &Local{Path: path, Timeout: timeout}
}

func (l *Local) path() string {
	if l.Path == "" {
		return ResolvePath()
	}
	return l.Path
}

func (l *Local) timeout() time.Duration {
	if l.Timeout <= 0 {
		return DefaultTimeout
	}
	return l.Timeout
}

// Run executes adb with the given arguments and returns stdout.
// Non-zero exits and timeouts come back as ErrTransport, a missing
// binary as ErrExec.
func (l *Local) Run(ctx context.Context, serial string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout())
	defer cancel()

	argv := Args(serial, args...)
	cmd := exec.CommandContext(ctx, l.path(), argv...)
	// "adb devices" may fork the adb server, which inherits our pipes.
	// Without WaitDelay, Wait would block until that daemon exits.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		return stdout.String(), nil
	}

	command := strings.Join(argv, " ")
	if ctx.Err() != nil {
		return "", errors.WrapWithCode(ctx.Err(), errors.ErrTransport,
			fmt.Sprintf("adb %s timed out after %s", command, l.timeout()),
			"Check that the adb server is responsive: adb kill-server && adb start-server")
	}

	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}
		return "", errors.WrapWithCode(stderrors.New(detail), errors.ErrTransport,
			fmt.Sprintf("adb %s exited with code %d", command, exitErr.ExitCode()), "")
	}

	return "", errors.WrapWithCode(runErr, errors.ErrExec,
		fmt.Sprintf("Couldn't run %s", l.path()),
		"Install Android platform-tools or set adb.path in the config.")
}

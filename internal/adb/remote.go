package adb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/util"
	"github.com/rileyhilliard/emuwatch/pkg/sshutil"
)

// DialFunc opens an SSH connection. Swapped out in tests.
type DialFunc func(host string, timeout time.Duration) (sshutil.SSHClient, error)

func dialSSH(host string, timeout time.Duration) (sshutil.SSHClient, error) {
	return sshutil.Dial(host, timeout)
}

// Remote runs adb on another machine over SSH. The connection is kept
// between calls and re-dialed when it stops accepting sessions.
type Remote struct {
	Host    string
	Path    string
	Timeout time.Duration

	dial   DialFunc
	mu     sync.Mutex
	client sshutil.SSHClient
}

// NewRemote creates a transport that runs adbPath on host.
func NewRemote(host, adbPath string, timeout time.Duration) *Remote {
	return newRemote(host, adbPath, timeout, dialSSH)
}

func newRemote(host, adbPath string, timeout time.Duration, dial DialFunc) *Remote {
	if adbPath == "" {
		adbPath = "adb"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Remote{Host: host, Path: adbPath, Timeout: timeout, dial: dial}
}

// Command renders the remote shell command line. Every argument is quoted
// so that pipes meant for the device shell pass through the host shell.
// A leading ~/ in the adb path is left for the remote shell to expand.
func (r *Remote) Command(serial string, args ...string) string {
	argv := Args(serial, args...)
	quoted := make([]string, 0, len(argv)+1)
	quoted = append(quoted, util.ShellQuotePreserveTilde(r.Path))
	for _, a := range argv {
		quoted = append(quoted, util.ShellQuote(a))
	}
	return strings.Join(quoted, " ")
}

// get returns the cached connection if it still opens sessions,
// dialing a new one otherwise.
func (r *Remote) get() (sshutil.SSHClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		if s, err := r.client.NewSession(); err == nil {
			_ = s.Close()
			return r.client, nil
		}
		_ = r.client.Close()
		r.client = nil
	}

	client, err := r.dial(r.Host, r.Timeout)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

// drop closes the connection if it is still the cached one.
func (r *Remote) drop(c sshutil.SSHClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == c {
		_ = r.client.Close()
		r.client = nil
	}
}

type execResult struct {
	stdout, stderr []byte
	code           int
	err            error
}

// Run executes adb on the remote host. A timeout closes the connection so
// the stuck session is torn down; the next call re-dials.
func (r *Remote) Run(ctx context.Context, serial string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	client, err := r.get()
	if err != nil {
		return "", err
	}

	cmd := r.Command(serial, args...)
	resultCh := make(chan execResult, 1)
	go func() {
		stdout, stderr, code, err := client.Exec(cmd)
		resultCh <- execResult{stdout, stderr, code, err}
	}()

	select {
	case <-ctx.Done():
		r.drop(client)
		return "", errors.WrapWithCode(ctx.Err(), errors.ErrTransport,
			fmt.Sprintf("adb on %s timed out after %s", r.Host, r.Timeout),
			"Check that the adb server on the remote host is responsive.")
	case res := <-resultCh:
		if res.err != nil {
			r.drop(client)
			return "", res.err
		}
		if res.code != 0 {
			detail := strings.TrimSpace(string(res.stderr))
			if detail == "" {
				detail = "no output"
			}
			return "", errors.New(errors.ErrTransport,
				fmt.Sprintf("adb on %s exited with code %d: %s", r.Host, res.code, detail), "")
		}
		return string(res.stdout), nil
	}
}

// Close releases the SSH connection.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

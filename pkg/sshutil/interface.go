package sshutil

import "io"

// SSHClient is the subset of an SSH connection emuwatch needs to run adb
// on another machine. The real Client and the mock in sshutil/testing
// both satisfy it.
type SSHClient interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	// A non-zero exit code with nil error means the command ran but failed.
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)

	Close() error

	// GetHost returns the original host/alias used to connect.
	GetHost() string

	// GetAddress returns the resolved host:port address.
	GetAddress() string

	// NewSession opens a session. Used as a liveness probe for cached
	// connections; callers close it immediately.
	NewSession() (Session, error)
}

// Session is the minimal view of an ssh.Session.
type Session interface {
	io.Closer
}

// Package testing provides an in-memory SSHClient for tests.
package testing

import (
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/rileyhilliard/emuwatch/pkg/sshutil"
)

// CommandResponse is a canned result for commands matching a pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
	// Delay holds Exec for this long before answering.
	Delay time.Duration
}

// MockClient simulates an SSH connection. Commands are matched first
// exactly and then as regular expressions against the registered patterns.
// Unmatched commands exit 127.
type MockClient struct {
	mu         sync.Mutex
	host       string
	address    string
	closed     bool
	sessionErr error
	responses  map[string]CommandResponse
	executed   []string
}

// NewMockClient creates a mock connected to host.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:      host,
		address:   host + ":22",
		responses: make(map[string]CommandResponse),
	}
}

// SetCommandResponse registers a response for an exact command or regex.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[pattern] = resp
}

// SetSessionError makes NewSession fail, simulating a dead connection.
func (m *MockClient) SetSessionError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionErr = err
}

// Executed returns the commands run so far.
func (m *MockClient) Executed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.executed...)
}

// Closed reports whether Close was called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockClient) lookup(cmd string) (CommandResponse, bool) {
	if resp, ok := m.responses[cmd]; ok {
		return resp, true
	}
	for pattern, resp := range m.responses {
		if matched, _ := regexp.MatchString(pattern, cmd); matched {
			return resp, true
		}
	}
	return CommandResponse{}, false
}

// Exec returns the registered response for cmd.
func (m *MockClient) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, nil, -1, errors.New("connection closed")
	}
	m.executed = append(m.executed, cmd)
	resp, ok := m.lookup(cmd)
	m.mu.Unlock()

	if !ok {
		return nil, []byte("command not found"), 127, nil
	}
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string { return m.host }

// GetAddress returns the host:port address.
func (m *MockClient) GetAddress() string { return m.address }

type mockSession struct{}

func (s *mockSession) Close() error { return nil }

// NewSession succeeds while the mock is open and no session error is set.
func (m *MockClient) NewSession() (sshutil.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("connection closed")
	}
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	return &mockSession{}, nil
}

var _ sshutil.SSHClient = (*MockClient)(nil)

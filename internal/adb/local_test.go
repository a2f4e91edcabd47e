package adb

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeADB writes a shell script standing in for the adb binary.
func fakeADB(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "adb")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestLocal_Run(t *testing.T) {
	path := fakeADB(t, `echo "$@"`)
	l := NewLocal(path, time.Second)

	out, err := l.Run(context.Background(), "127.0.0.1:7555", "shell", "pidof", "-s", "com.example")
	require.NoError(t, err)
	assert.Equal(t, "-s 127.0.0.1:7555 shell pidof -s com.example\n", out)

	out, err = l.Run(context.Background(), "", "devices")
	require.NoError(t, err)
	assert.Equal(t, "devices\n", out)
}

func TestLocal_NonZeroExit(t *testing.T) {
	path := fakeADB(t, `echo "error: device offline" >&2; exit 1`)
	l := NewLocal(path, time.Second)

	_, err := l.Run(context.Background(), "emulator-5554", "shell", "free")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTransport))
	assert.Contains(t, err.Error(), "exited with code 1")
	assert.Contains(t, err.Error(), "device offline")
}

func TestLocal_Timeout(t *testing.T) {
	path := fakeADB(t, `sleep 5`)
	l := NewLocal(path, 100*time.Millisecond)

	start := time.Now()
	_, err := l.Run(context.Background(), "", "devices")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTransport))
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestLocal_MissingBinary(t *testing.T) {
	l := NewLocal(filepath.Join(t.TempDir(), "no-such-adb"), time.Second)

	_, err := l.Run(context.Background(), "", "devices")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
}

func TestLocal_Defaults(t *testing.T) {
	l := &Local{}
	assert.Equal(t, DefaultTimeout, l.timeout())
	assert.NotEmpty(t, l.path())
}

func TestResolveFrom(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, binaryName(), resolveFrom(dir))

	tools := filepath.Join(dir, "platform-tools")
	require.NoError(t, os.MkdirAll(tools, 0755))
	bundled := filepath.Join(tools, binaryName())
	require.NoError(t, os.WriteFile(bundled, []byte(""), 0755))
	assert.Equal(t, bundled, resolveFrom(dir))
}

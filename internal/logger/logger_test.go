package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		expectLog bool
	}{
		{
			name:      "logs when EMUWATCH_DEBUG is set",
			envValue:  "1",
			expectLog: true,
		},
		{
			name:      "logs when EMUWATCH_DEBUG is any value",
			envValue:  "true",
			expectLog: true,
		},
		{
			name:      "does not log when EMUWATCH_DEBUG is empty",
			envValue:  "",
			expectLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			t.Setenv(DebugEnv, tt.envValue)

			l := New(&buf, "[test]")
			l.Debug("test message %s", "arg")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "[test] test message arg")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "[lvl]")

	l.Info("info message %d", 42)
	l.Warn("warning message")
	l.Error("error message")

	out := buf.String()
	assert.Contains(t, out, "[lvl] info message 42")
	assert.Contains(t, out, "[lvl] warning message")
	assert.Contains(t, out, "[lvl] error message")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestEnvLogger_FormatStrings(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "[fmt]")

	l.Info("int: %d, string: %s, float: %.2f", 42, "hello", 3.14159)

	output := buf.String()
	assert.Contains(t, output, "int: 42")
	assert.Contains(t, output, "string: hello")
	assert.Contains(t, output, "float: 3.14")
}

func TestInit_LevelFiltersInfo(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, Init(Config{}))
		Close()
	})
	t.Setenv(DebugEnv, "")

	require.NoError(t, Init(Config{Level: "warn"}))

	var buf bytes.Buffer
	l := New(&buf, "")
	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInit_DebugLevel(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, Init(Config{}))
		Close()
	})
	t.Setenv(DebugEnv, "")

	require.NoError(t, Init(Config{Level: "debug"}))

	var buf bytes.Buffer
	New(&buf, "").Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestInit_File(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, Init(Config{}))
		Close()
	})

	path := filepath.Join(t.TempDir(), "emuwatch.log")
	require.NoError(t, Init(Config{File: path}))

	NewEnvLogger("[file]").Info("to file")
	Default().Info("default to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[file] to file")
	assert.Contains(t, string(data), "default to file")
}

func TestNoopLogger(t *testing.T) {
	l := Noop()
	assert.NotPanics(t, func() {
		l.Debug("debug")
		l.Info("info")
		l.Warn("warn")
		l.Error("error")
	})
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	require.Len(t, l.Messages, 4)

	assert.Equal(t, LogMessage{Level: "debug", Message: "debug msg"}, l.Messages[0])
	assert.Equal(t, LogMessage{Level: "info", Message: "info msg"}, l.Messages[1])
	assert.Equal(t, LogMessage{Level: "warn", Message: "warn msg"}, l.Messages[2])
	assert.Equal(t, LogMessage{Level: "error", Message: "error msg"}, l.Messages[3])
	assert.Equal(t, l.Messages, l.Snapshot())
}

func TestBufferLogger_HasLevel(t *testing.T) {
	l := NewBufferLogger()

	assert.False(t, l.HasLevel("debug"))
	assert.False(t, l.HasLevel("error"))

	l.Debug("test")
	assert.True(t, l.HasLevel("debug"))
	assert.False(t, l.HasLevel("error"))

	l.Error("test")
	assert.True(t, l.HasLevel("error"))
}

func TestBufferLogger_Clear(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("test1")
	l.Info("test2")
	require.Len(t, l.Messages, 2)

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	assert.NotNil(t, Default())

	buf := NewBufferLogger()
	SetDefault(buf)

	assert.Equal(t, buf, Default())
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = NewEnvLogger("")
	var _ Logger = Noop()
	var _ Logger = NewBufferLogger()
}

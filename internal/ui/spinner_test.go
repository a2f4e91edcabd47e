package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewSpinner(t *testing.T) {
	s := NewSpinner(&syncBuffer{}, "Connecting")
	assert.Equal(t, "Connecting", s.Label())
	assert.Equal(t, SpinnerPending, s.State())
}

func TestSpinner_Success(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Connecting")

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(2 * spinnerInterval)
	s.Success()

	assert.Equal(t, SpinnerSuccess, s.State())
	text := out.String()
	assert.Contains(t, text, "Connecting...")
	assert.True(t, strings.HasSuffix(text, "s\n"))

	final := text[strings.LastIndex(text, "\r")+1:]
	assert.True(t, strings.HasPrefix(final, SymbolSuccess+" Connecting "), final)
}

func TestSpinner_FailAndSkip(t *testing.T) {
	tests := []struct {
		name   string
		end    func(*Spinner)
		state  SpinnerState
		symbol string
	}{
		{"fail", (*Spinner).Fail, SpinnerFailed, SymbolFail},
		{"skip", (*Spinner).Skip, SpinnerSkipped, SymbolSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out syncBuffer
			s := NewSpinner(&out, "Probing")
			s.Start()
			tt.end(s)

			assert.Equal(t, tt.state, s.State())
			assert.Contains(t, out.String(), tt.symbol+" Probing")
		})
	}
}

func TestSpinner_FinishWithoutStart(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Nothing")
	s.Fail()
	assert.Equal(t, SymbolFail+" Nothing\n", out.String())
}

func TestSpinner_DoubleStart(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Once")
	s.Start()
	s.Start()
	s.Success()
	assert.Equal(t, SpinnerSuccess, s.State())
}

func TestSpinner_SetLabel(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Connecting to 127.0.0.1:16384")
	s.Start()
	s.SetLabel("Connecting to 127.0.0.1:5555")
	s.Success()
	assert.Contains(t, out.String(), SymbolSuccess+" Connecting to 127.0.0.1:5555")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.05s", formatDuration(50*time.Millisecond))
	assert.Equal(t, "1.2s", formatDuration(1200*time.Millisecond))
}

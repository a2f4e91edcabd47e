package alert

import (
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []Message
}

func (r *recordingNotifier) Notify(title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Message{Title: title, Body: body})
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type countingPlayer struct {
	mu    sync.Mutex
	plays int
}

func (c *countingPlayer) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
}

func (c *countingPlayer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter() (*Limiter, *recordingNotifier, *countingPlayer, *fakeClock) {
	n := &recordingNotifier{}
	p := &countingPlayer{}
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(n, p, 15*time.Second, WithClock(clock.now))
	l.SetAudio(true)
	return l, n, p, clock
}

func TestLimiter_Cooldown(t *testing.T) {
	tests := []struct {
		name      string
		bypass    bool
		gap       time.Duration
		wantPlays int
	}{
		{"second alert inside cooldown is silent", false, 5 * time.Second, 1},
		{"bypass plays both", true, 5 * time.Second, 2},
		{"after cooldown plays again", false, 15 * time.Second, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, n, p, clock := newTestLimiter()
			msg := Message{Title: "t", Body: "b", IgnoreRateLimit: tt.bypass}

			assert.True(t, l.Dispatch(msg))
			clock.advance(tt.gap)
			l.Dispatch(msg)

			assert.Equal(t, tt.wantPlays, p.count())
			assert.Equal(t, 2, n.count(), "notifier is never rate limited")
		})
	}
}

func TestLimiter_CooldownMeasuredFromLastSound(t *testing.T) {
	l, _, p, clock := newTestLimiter()
	msg := Message{Title: "t", Body: "b"}

	l.Dispatch(msg) // plays at t0
	clock.advance(10 * time.Second)
	l.Dispatch(msg) // silent, must not push the window
	clock.advance(5 * time.Second)
	l.Dispatch(msg) // t0+15s plays

	assert.Equal(t, 2, p.count())
}

func TestLimiter_Mute(t *testing.T) {
	l, n, p, _ := newTestLimiter()

	l.SetMuted(true)
	assert.True(t, l.Muted())
	assert.False(t, l.Dispatch(Message{Title: "t", Body: "b", IgnoreRateLimit: true}))
	assert.False(t, l.Test())

	assert.Equal(t, 0, n.count())
	assert.Equal(t, 0, p.count())

	assert.False(t, l.ToggleMuted())
	assert.True(t, l.Dispatch(Message{Title: "t", Body: "b"}))
	assert.Equal(t, 1, n.count())
	assert.True(t, l.ToggleMuted())
}

func TestLimiter_AudioDisabled(t *testing.T) {
	l, n, p, _ := newTestLimiter()
	l.SetAudio(false)
	assert.False(t, l.Audio())

	assert.False(t, l.Dispatch(Message{Title: "t", Body: "b", IgnoreRateLimit: true}))
	assert.Equal(t, 1, n.count())
	assert.Equal(t, 0, p.count())
}

func TestLimiter_NilCollaborators(t *testing.T) {
	l := NewLimiter(nil, nil, 0, WithLogger(logger.NewBufferLogger()))
	l.SetAudio(true)
	assert.NotPanics(t, func() { l.Dispatch(Message{Title: "t"}) })
	assert.Equal(t, DefaultCooldown, l.cooldown)
}

func TestLimiter_Test(t *testing.T) {
	l, n, p, _ := newTestLimiter()

	require.True(t, l.Test())
	require.True(t, l.Test())

	assert.Equal(t, 2, p.count())
	require.Equal(t, 2, n.count())
	assert.Equal(t, TestMessage().Title, n.calls[0].Title)
	assert.True(t, TestMessage().IgnoreRateLimit)
}

func TestLimiter_ConcurrentDispatch(t *testing.T) {
	n := &recordingNotifier{}
	p := &countingPlayer{}
	l := NewLimiter(n, p, time.Hour)
	l.SetAudio(true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Dispatch(Message{Title: "t", Body: "b"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, n.count())
	assert.Equal(t, 1, p.count())
}

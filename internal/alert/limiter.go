package alert

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/logger"
)

// DefaultCooldown is the minimum gap between two alert sounds.
const DefaultCooldown = 15 * time.Second

// Message is an alert ready for delivery.
type Message struct {
	Title string
	Body  string
	// IgnoreRateLimit plays the sound even inside the cooldown window.
	IgnoreRateLimit bool
}

// Notifier shows an alert to the user. Implementations must not block.
type Notifier interface {
	Notify(title, body string)
}

// Player plays an alert sound. Implementations must not block.
type Player interface {
	Play()
}

// Limiter delivers alerts. Every dispatch reaches the notifier unless
// muted; the sound is additionally rate limited to one per cooldown.
type Limiter struct {
	notifier Notifier
	player   Player
	cooldown time.Duration
	now      func() time.Time
	log      logger.Logger

	muted atomic.Bool
	audio atomic.Bool

	mu        sync.Mutex
	lastAudio time.Time
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) LimiterOption {
	return func(l *Limiter) { l.log = log }
}

// NewLimiter creates a limiter. A nil player disables sound regardless of
// the audio flag. A non-positive cooldown selects DefaultCooldown.
func NewLimiter(n Notifier, p Player, cooldown time.Duration, opts ...LimiterOption) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	l := &Limiter{
		notifier: n,
		player:   p,
		cooldown: cooldown,
		now:      time.Now,
		log:      logger.Noop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dispatch delivers msg. Returns whether the sound played.
func (l *Limiter) Dispatch(msg Message) bool {
	if l.muted.Load() {
		l.log.Debug("alert muted: %s", msg.Body)
		return false
	}

	if l.notifier != nil {
		l.notifier.Notify(msg.Title, msg.Body)
	}

	if !l.audio.Load() || l.player == nil {
		return false
	}

	l.mu.Lock()
	now := l.now()
	play := msg.IgnoreRateLimit || l.lastAudio.IsZero() || now.Sub(l.lastAudio) >= l.cooldown
	if play {
		l.lastAudio = now
	}
	l.mu.Unlock()

	if play {
		l.player.Play()
	}
	return play
}

// Test dispatches a fixed message that bypasses the sound cooldown.
func (l *Limiter) Test() bool {
	return l.Dispatch(TestMessage())
}

// TestMessage is the message sent by Test.
func TestMessage() Message {
	return Message{
		Title:           "emuwatch test alert",
		Body:            "this is what a memory alert looks like",
		IgnoreRateLimit: true,
	}
}

// SetMuted mutes or unmutes all alerts.
func (l *Limiter) SetMuted(muted bool) { l.muted.Store(muted) }

// ToggleMuted flips the mute flag and returns the new value.
func (l *Limiter) ToggleMuted() bool {
	for {
		old := l.muted.Load()
		if l.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Muted reports whether alerts are muted.
func (l *Limiter) Muted() bool { return l.muted.Load() }

// SetAudio enables or disables the alert sound.
func (l *Limiter) SetAudio(enabled bool) { l.audio.Store(enabled) }

// Audio reports whether the alert sound is enabled.
func (l *Limiter) Audio() bool { return l.audio.Load() }

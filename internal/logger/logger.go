// Package logger provides a simple logging interface for emuwatch components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation. The default
// implementation writes through zerolog's console writer.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DebugEnv enables debug output for every logger when set to any value.
const DebugEnv = "EMUWATCH_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Config selects the minimum level and destination of the default logger.
type Config struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

var (
	mu       sync.RWMutex
	output   io.Writer = os.Stderr
	minLevel           = zerolog.InfoLevel
	logFile  *os.File
)

// Init configures the shared output and level. Loggers created afterwards
// with NewEnvLogger write to the configured destination; the level applies
// to all env loggers immediately.
func Init(cfg Config) error {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var w io.Writer = os.Stderr
	var f *os.File
	if cfg.File != "" {
		var err error
		f, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
	}

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	output = w
	minLevel = level
	mu.Unlock()

	SetDefault(NewEnvLogger(""))
	return nil
}

// Close releases the log file opened by Init, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	output = os.Stderr
}

func enabled(level zerolog.Level) bool {
	if level == zerolog.DebugLevel && os.Getenv(DebugEnv) != "" {
		return true
	}
	mu.RLock()
	defer mu.RUnlock()
	return level >= minLevel
}

// envLogger implements Logger on top of a zerolog console writer.
// Debug messages are only printed when EMUWATCH_DEBUG is set or the
// configured level is debug.
type envLogger struct {
	prefix string
	zl     zerolog.Logger
}

// NewEnvLogger creates a logger writing to the output configured by Init.
// The prefix is prepended to all log messages (e.g., "[device]" or "[alert]").
func NewEnvLogger(prefix string) Logger {
	mu.RLock()
	w := output
	mu.RUnlock()
	return New(w, prefix)
}

// New creates a logger that writes to w regardless of the Init destination.
func New(w io.Writer, prefix string) Logger {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.TimeOnly}
	return &envLogger{
		prefix: prefix,
		zl:     zerolog.New(cw).With().Timestamp().Logger(),
	}
}

func (l *envLogger) msg(format string) string {
	if l.prefix == "" {
		return format
	}
	return l.prefix + " " + format
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if enabled(zerolog.DebugLevel) {
		l.zl.Debug().Msgf(l.msg(format), args...)
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	if enabled(zerolog.InfoLevel) {
		l.zl.Info().Msgf(l.msg(format), args...)
	}
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	if enabled(zerolog.WarnLevel) {
		l.zl.Warn().Msgf(l.msg(format), args...)
	}
}

func (l *envLogger) Error(format string, args ...interface{}) {
	if enabled(zerolog.ErrorLevel) {
		l.zl.Error().Msgf(l.msg(format), args...)
	}
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// Safe for use from the scheduler's concurrent loops.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the captured messages.
func (l *BufferLogger) Snapshot() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.Messages))
	copy(out, l.Messages)
	return out
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewEnvLogger("")
)

// Default returns the default logger for the package.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// =============================================================================
// gridcheck - Logging
// =============================================================================
//
// A small leveled logger shared by every engine. The engines only depend on
// the Logger interface so callers can plug in their own implementation; the
// CLI uses New() with the level and file from config.yaml.
//
// LEVELS:
//   debug < info < warn < error
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Logger is the logging interface used across gridcheck.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a config string to a Level.
// Unknown values fall back to info.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// =============================================================================
// WRITER LOGGER
// =============================================================================

// writerLogger writes "[LEVEL] message" lines to one or more writers.
type writerLogger struct {
	mu    sync.Mutex
	level Level
	out   io.Writer
	now   func() time.Time
}

// New returns a Logger that writes messages at or above level to w.
func New(level Level, w io.Writer) Logger {
	return &writerLogger{level: level, out: w, now: time.Now}
}

func (l *writerLogger) log(level Level, msg string, args ...interface{}) {
	if level < l.level {
		return
	}
	line := fmt.Sprintf(msg, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s [%s] %s\n", l.now().Format("2006-01-02 15:04:05"), level, line)
}

func (l *writerLogger) Debug(msg string, args ...interface{}) { l.log(LevelDebug, msg, args...) }
func (l *writerLogger) Info(msg string, args ...interface{})  { l.log(LevelInfo, msg, args...) }
func (l *writerLogger) Warn(msg string, args ...interface{})  { l.log(LevelWarn, msg, args...) }
func (l *writerLogger) Error(msg string, args ...interface{}) { l.log(LevelError, msg, args...) }

// =============================================================================
// NOP LOGGER
// =============================================================================

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// OrNop returns l, or a Nop logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}

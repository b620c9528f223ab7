// Package log provides the leveled logging interface shared by Cairn
// components.
package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level.
type Level int

const (
	// LevelDebug level for detailed troubleshooting information
	LevelDebug Level = iota
	// LevelInfo level for general operational information
	LevelInfo
	// LevelWarn level for potentially harmful situations
	LevelWarn
	// LevelError level for error events
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", l)
	}
}

// Logger is the logging interface Cairn components code against.
// Messages are printf-style; fields attach structured context.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithField returns a logger with the given field added to its context.
	WithField(key string, value interface{}) Logger
	// WithFields returns a logger with all given fields added to its context.
	WithFields(fields map[string]interface{}) Logger

	GetLevel() Level
	SetLevel(level Level)
}

// StandardLogger writes lines of the form
//
//	2006-01-02T15:04:05.000Z [INFO] message key=value
//
// with fields sorted by key.
type StandardLogger struct {
	mu     sync.Mutex
	level  Level
	out    io.Writer
	fields map[string]interface{}
}

// Option configures a StandardLogger.
type Option func(*StandardLogger)

// WithLevel sets the minimum level that will be written.
func WithLevel(level Level) Option {
	return func(l *StandardLogger) {
		l.level = level
	}
}

// WithOutput sets the output writer.
func WithOutput(out io.Writer) Option {
	return func(l *StandardLogger) {
		l.out = out
	}
}

// New creates a StandardLogger. The default level is Info and the
// default output is stderr.
func New(opts ...Option) *StandardLogger {
	l := &StandardLogger{
		level:  LevelInfo,
		out:    os.Stderr,
		fields: make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	defaultLogger     *StandardLogger
	defaultLoggerOnce sync.Once
)

// Default returns the process-wide default logger.
func Default() Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = New()
	})
	return defaultLogger
}

func (l *StandardLogger) log(level Level, msg string, args ...interface{}) {
	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	if len(args) > 0 {
		fmt.Fprintf(&b, msg, args...)
	} else {
		b.WriteString(msg)
	}

	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
		}
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, b.String())
}

// Debug logs a debug-level message.
func (l *StandardLogger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info-level message.
func (l *StandardLogger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning-level message.
func (l *StandardLogger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error-level message.
func (l *StandardLogger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// WithField returns a logger with the given field added to its context.
func (l *StandardLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger with all given fields added to its
// context. The receiver is unchanged.
func (l *StandardLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &StandardLogger{
		level:  l.level,
		out:    l.out,
		fields: merged,
	}
}

// GetLevel returns the current logging level.
func (l *StandardLogger) GetLevel() Level {
	return l.level
}

// SetLevel sets the logging level.
func (l *StandardLogger) SetLevel(level Level) {
	l.level = level
}

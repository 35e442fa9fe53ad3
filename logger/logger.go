// Package logger provides the prefixed, colored loggers used by every component.
package logger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

// Color constants for logger prefixes.
const (
	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorMagenta = "\033[35m"
	ColorCyan    = "\033[36m"
	ColorReset   = "\033[0m"
)

// Logger writes "[PREFIX] [LEVEL] message" lines through logrus.
type Logger struct {
	entry *logrus.Entry
}

// Base owns the logrus logger and its hooks. Every Logger named from the
// same Base shares one output, one level and one rotating file.
type Base struct {
	logger *logrus.Logger
}

// Option configures a Base.
type Option func(*logrus.Logger) error

// WithLevel sets the minimum level that is written.
func WithLevel(level string) Option {
	return func(l *logrus.Logger) error {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		l.SetLevel(lvl)
		return nil
	}
}

// WithRotatingFile also writes every entry, uncolored, to a size-rotated file.
// Apply it to one Base only: two hooks rotating the same file lose track of it.
func WithRotatingFile(filename string, maxSizeMB, maxBackups, maxAgeDays int) Option {
	return func(l *logrus.Logger) error {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   filename,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Level:      logrus.TraceLevel,
			Formatter:  &prefixFormatter{},
		})
		if err != nil {
			return fmt.Errorf("creating rotating file hook: %w", err)
		}
		l.AddHook(hook)
		return nil
	}
}

// NewBase creates the shared logrus logger writing to w.
func NewBase(w io.Writer, opts ...Option) (*Base, error) {
	if w == nil {
		return nil, errors.New("logger writer is required")
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&prefixFormatter{colored: true})
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return &Base{logger: l}, nil
}

// Named returns a component logger with the given prefix and ANSI color.
func (b *Base) Named(prefix, color string) (*Logger, error) {
	if prefix == "" {
		return nil, errors.New("logger prefix is required")
	}
	return &Logger{entry: b.logger.WithFields(logrus.Fields{
		prefixKey: strings.ToUpper(prefix),
		colorKey:  color,
	})}, nil
}

// New creates a standalone logger writing to w with the given prefix and ANSI color.
func New(prefix, color string, w io.Writer, opts ...Option) (*Logger, error) {
	b, err := NewBase(w, opts...)
	if err != nil {
		return nil, err
	}
	return b.Named(prefix, color)
}

// WithField returns a logger that adds key=value to every line.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string) { l.entry.Debug(msg) }

// Info logs at info level.
func (l *Logger) Info(msg string) { l.entry.Info(msg) }

// Warning logs at warning level.
func (l *Logger) Warning(msg string) { l.entry.Warn(msg) }

// Error logs at error level.
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

const (
	prefixKey = "prefix"
	colorKey  = "color"
)

// prefixFormatter renders entries as "[PREFIX] [LEVEL] message k=v ...".
// The color travels with the entry; an uncolored formatter or an empty
// color disables ANSI escapes.
type prefixFormatter struct {
	colored bool
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	prefix, _ := e.Data[prefixKey].(string)
	color, _ := e.Data[colorKey].(string)
	if !f.colored {
		color = ""
	}
	if color != "" {
		fmt.Fprintf(&b, "%s[%s]%s ", color, prefix, ColorReset)
	} else {
		fmt.Fprintf(&b, "[%s] ", prefix)
	}

	level := strings.ToUpper(e.Level.String())
	if color != "" && e.Level <= logrus.ErrorLevel {
		fmt.Fprintf(&b, "%s[%s]%s ", ColorRed, level, ColorReset)
	} else {
		fmt.Fprintf(&b, "[%s] ", level)
	}

	fmt.Fprintf(&b, "%s %s", e.Time.Format("2006-01-02T15:04:05.000Z07:00"), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k != prefixKey && k != colorKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

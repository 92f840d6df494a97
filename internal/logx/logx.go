// Package logx provides a small leveled logger on top of the standard
// library. Verbosity is fixed at construction from configuration; core logic
// never consults the environment.
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level is a log verbosity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level. Unknown values default to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

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
	}
	return "INFO"
}

// Logger writes leveled, name-prefixed lines.
type Logger struct {
	name  string
	level Level
	out   *log.Logger
}

// New creates a logger writing to stderr.
func New(name string, level Level) *Logger {
	return NewWithWriter(name, level, os.Stderr)
}

// NewWithWriter creates a logger writing to w. Tests use this to capture
// output.
func NewWithWriter(name string, level Level, w io.Writer) *Logger {
	return &Logger{
		name:  name,
		level: level,
		out:   log.New(w, "", log.LstdFlags),
	}
}

// Named returns a logger with the same sink and level under a new name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{name: name, level: l.level, out: l.out}
}

func (l *Logger) emit(level Level, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	l.out.Printf("%-5s %s: %s", level, l.name, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) { l.emit(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.emit(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.emit(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.emit(LevelError, format, args...) }

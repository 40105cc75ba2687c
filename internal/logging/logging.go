// Package logging provides the small, level-gated logger used throughout
// TAUL's ambient code (loader diagnostics, service request logging, CLI
// verbosity). There is no structured-logging or third-party logging
// dependency here: every concern this package covers is a thin wrapper
// around the standard library's log.Logger, and no library in the example
// corpus is wired to anything resembling grammar-loader or lexer/parser
// tracing, so there is nothing domain-specific for a third-party logger to
// buy here (see DESIGN.md).
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level is a logging verbosity threshold.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// Logger wraps a standard library *log.Logger with a verbosity gate.
type Logger struct {
	out   *log.Logger
	level Level
}

// New returns a Logger writing to w at the given verbosity level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags), level: level}
}

// Default returns a Logger writing to stderr at LevelInfo.
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || level > l.level {
		return
	}
	l.out.Printf("[%s] "+format, append([]any{level}, args...)...)
}

func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

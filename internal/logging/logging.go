// Package logging provides the leveled logger used across the catalog. It is a
// thin wrapper around zerolog so that callers only depend on the small surface
// they actually use.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level identifies a log verbosity level.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	}
	return "unknown"
}

// Config holds logger construction parameters.
type Config struct {
	Level  Level
	Output io.Writer
}

// Logger is the leveled logger threaded through the catalog loaders and the
// license ledger.
type Logger struct {
	log zerolog.Logger
}

// NewLogger returns a logger writing human-readable output per the config.
// A nil output defaults to stderr.
func NewLogger(c Config) *Logger {
	w := c.Output
	if w == nil {
		w = os.Stderr
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(zerologLevel(c.Level)).
		With().Timestamp().Logger()

	return &Logger{log: log}
}

// Discard returns a logger that drops everything. Useful default for library
// callers that did not configure logging.
func Discard() *Logger {
	return &Logger{log: zerolog.Nop()}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

// WithField returns a copy of the logger with a field attached to every entry.
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{log: l.log.With().Str(key, value).Logger()}
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

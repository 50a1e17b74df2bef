package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a Logger writing human-readable lines to w at the given level
// (debug, info, warn, error). Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != os.Stderr}
	zl := zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(level))
	return &Logger{zl: zl}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

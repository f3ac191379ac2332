// Package util holds process-wide helpers.
package util

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a JSON logger on stderr, keeping stdout for reports.
// Unknown levels fall back to info.
func NewLogger(level string) zerolog.Logger {
	return newLogger(os.Stderr, level)
}

// NewConsoleLogger returns a human-readable logger on stderr.
func NewConsoleLogger(level string) zerolog.Logger {
	return newLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, level)
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

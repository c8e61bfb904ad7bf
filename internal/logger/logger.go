// Package logger sets up the process-wide slog logger from the environment.
package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Setup builds the logger from LOG_LEVEL (debug|info|warn|error) and
// LOG_FORMAT (text|json), installs it as the slog default and keeps the
// standard log package writing to stdout with microsecond timestamps.
func Setup() *slog.Logger {
	return SetupTo(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

func SetupTo(w io.Writer, level, format string) *slog.Logger {
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	defaultLogger = slog.New(h)
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L returns the process logger, setting it up on first use.
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}

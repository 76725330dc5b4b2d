package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// logger is the process-wide diagnostic logger. Operator-facing progress
// lines go to stdout with fmt; everything else goes through here.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// setupLogging replaces the diagnostic logger with one at the given level.
func setupLogging(level string) {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})).With("service", "teamjoy", "version", version)
}

// parseLevel converts a config log level to slog.Level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// dbg writes a printf-style debug trace.
func dbg(format string, args ...any) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...))
}

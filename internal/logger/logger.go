// Package logger holds the process-wide structured logger. Logs go to stderr so that stdout is
// left to the program's report.
package logger

import "io"
import "log/slog"
import "os"
import "strings"

var defaultLogger *slog.Logger

// Init replaces the process-wide logger, and slog's default, with one writing to w at the given
// level, as JSON if format is "json" and as logfmt-style text otherwise.
func Init(w io.Writer, level, format string) *slog.Logger {
	defaultLogger = New(w, level, format)
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

// New returns a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps debug, info, warn and error to their slog levels. Anything else is info.
func ParseLevel(level string) slog.Level {
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

// Get returns the process-wide logger, initializing it to write text to stderr at info level if
// needed.
func Get() *slog.Logger {
	if defaultLogger == nil {
		Init(os.Stderr, "info", "text")
	}
	return defaultLogger
}

package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/heat-response/internal/config"
)

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT, writing
// to stderr.
func NewLogger(cfg *config.Config) *slog.Logger {
	return NewLoggerTo(os.Stderr, cfg.LogLevel, cfg.LogFormat)
}

// NewLoggerTo builds a logger writing to w. Unknown levels fall back to info
// and unknown formats to JSON.
func NewLoggerTo(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps "debug", "info", "warn" and "error" (case-insensitive) to a
// slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

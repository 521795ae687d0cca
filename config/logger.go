package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. GO_ENV=production selects the JSON
// handler so log collectors can parse records; anything else gets the text
// handler for local reading. LOG_LEVEL picks the minimum level, info when
// unset or unrecognized.
func NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL"))}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

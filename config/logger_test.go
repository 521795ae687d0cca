package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logLevel("warn"))
	assert.Equal(t, slog.LevelError, logLevel("error"))
	assert.Equal(t, slog.LevelInfo, logLevel("info"))
	assert.Equal(t, slog.LevelInfo, logLevel(""))
	assert.Equal(t, slog.LevelInfo, logLevel("verbose"))
}

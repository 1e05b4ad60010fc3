package logger

import (
	"log/slog"
	"os"

	"github.com/airdesk-ai/airdesk/pkg/config"
	"go.uber.org/fx"
)

// NewRecentLogBuffer holds the last log lines for exposure through the
// server's diagnostics resource.
func NewRecentLogBuffer() *RingBuffer {
	return NewRingBuffer(1000)
}

func NewSlogLogger(cfg *config.ServerConfig, buffer *RingBuffer) *slog.Logger {
	// Configure log level
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(newBufferingHandler(handler, buffer, opts))
}

var Module = fx.Module("logger",
	fx.Provide(NewRecentLogBuffer),
	fx.Provide(NewSlogLogger),
)

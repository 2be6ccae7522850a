// Package logger builds the slog logger both binaries share.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/homeplan-finance-core/internal/config"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger builds a JSON slog.Logger at the configured level. Unknown
// levels fall back to info. Source locations are attached at debug level
// only.
func NewLogger(cfg *config.Config) *slog.Logger {
	level, ok := levels[strings.ToLower(cfg.Logging.Level)]
	if !ok {
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	log := slog.New(handler).With("service", cfg.Application.Name)
	log.Info("logger initialized", "level", level)
	return log
}

// Package log configures the process-wide slog logger. Both binaries call
// Setup once at startup; everything else logs through slog.Default.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Config selects the log level and output format.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
}

// ConfigFromEnv reads LOG_LEVEL and LOG_FORMAT, defaulting to info/text.
func ConfigFromEnv() Config {
	cfg := Config{Level: slog.LevelInfo, Format: "text"}

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "warn":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	}

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		cfg.Format = "json"
	}

	return cfg
}

// Setup builds the handler, installs it as the slog default and returns it.
func Setup(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

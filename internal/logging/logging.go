// Package logging installs the process-wide slog default every component
// logs through. Init must run before anything else starts logging.
package logging

import (
	"log/slog"
	"os"
)

// Init sets a text handler on stderr at the level named by the LOG_LEVEL
// environment variable. Unset or unknown values keep the error level, so a
// normal run stays quiet.
func Init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})
	slog.SetDefault(slog.New(handler))
}

func levelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "dev", "development", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

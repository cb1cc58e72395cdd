package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger builds the service-wide JSON logger and installs it as the
// slog default, so package-level logging (retry warnings, access logs)
// carries the service attribute too.
func NewJSONLogger(service, level string) *slog.Logger {
	logger := newLogger(os.Stderr, service, level)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

// parseLevel accepts the slog level names case-insensitively; anything
// unrecognized means info, never a startup failure.
func parseLevel(level string) slog.Level {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return parsed
}

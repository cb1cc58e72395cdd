package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLoggerCarriesServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "ingest", "info")
	logger.Info("corpus refresh completed", "kept", 12)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["service"] != "ingest" {
		t.Fatalf("service attribute = %v, want ingest", entry["service"])
	}
	if entry["kept"] != float64(12) {
		t.Fatalf("kept attribute = %v", entry["kept"])
	}
}

func TestLoggerLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "api", "warn")
	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info record must be filtered at warn level, got %q", buf.String())
	}
	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Fatalf("warn record must pass at warn level")
	}
}

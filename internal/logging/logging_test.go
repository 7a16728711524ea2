package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ashureev/castline/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_Format(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, config.LogConfig{Level: "info", Format: "json"}).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json logger wrote %q", buf.String())
	}

	buf.Reset()
	New(&buf, config.LogConfig{Level: "info", Format: "text"}).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("text logger wrote %q", buf.String())
	}

	buf.Reset()
	New(&buf, config.LogConfig{Level: "error", Format: "json"}).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at error level, got %q", buf.String())
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault(nil) != slog.Default() {
		t.Error("OrDefault(nil) should return slog.Default()")
	}
}

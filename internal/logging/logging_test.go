package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Format: "json"}, &buf)

	WithComponent(logger, "ingest").Info("stored clip", "size", 42)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["component"] != "ingest" {
		t.Errorf("component = %v, want ingest", rec["component"])
	}
	if rec["msg"] != "stored clip" {
		t.Errorf("msg = %v", rec["msg"])
	}
}

func TestNew_AutoFormatNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Format: "auto"}, &buf)
	logger.Info("hello")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("auto format on a buffer should be JSON, got %q", buf.String())
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Format: "text"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "dropped") {
		t.Errorf("info record should be filtered at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "videoprep.log")
	var buf bytes.Buffer
	logger := New(Options{Level: "info", Format: "text", File: path}, &buf)

	logger.With("clip_id", "abc").Info("written to both")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"clip_id":"abc"`) {
		t.Errorf("file sink missing attrs: %q", string(data))
	}
	if !strings.Contains(buf.String(), "written to both") {
		t.Errorf("stdout sink missing record: %q", buf.String())
	}
}

func TestSanitizePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home directory")
	}
	got := SanitizePath(filepath.Join(home, "videos", "a.mp4"))
	if !strings.HasPrefix(got, "~") {
		t.Errorf("SanitizePath did not mask home: %q", got)
	}
	if SanitizePath("/srv/x.mp4") != "/srv/x.mp4" && !strings.HasPrefix(home, "/srv") {
		t.Errorf("SanitizePath changed unrelated path")
	}
}

package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "logs", "trackfeed.log")

	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("release cached", String(FieldArtistID, "4Z8W4fKeB5YxbusRsiQu"), Int("count", 3))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"release cached"`) {
		t.Errorf("missing message in output: %s", out)
	}
	if !strings.Contains(out, `"artist_id":"4Z8W4fKeB5YxbusRsiQu"`) {
		t.Errorf("missing artist_id attr in output: %s", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestComponentLoggerNilBase(t *testing.T) {
	logger := NewComponentLogger(nil, "fetcher")
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	// Must not panic when logging through the noop handler.
	logger.Info("ignored")
}

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
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"fatal", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetup_Console(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	log, closeFn, err := Setup(Options{Level: "warn", Console: &buf, NoColor: true})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closeFn()

	log.Info("hidden")
	log.Warn("shown", "section", "Items")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "section=Items") {
		t.Errorf("warn record missing: %q", out)
	}
	if slog.Default() != log {
		t.Error("Setup did not install the default logger")
	}
}

func TestSetup_FileFanout(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	dir := t.TempDir()
	var console bytes.Buffer
	log, closeFn, err := Setup(Options{Level: "debug", OutputDir: dir, Console: &console, NoColor: true})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	log.Debug("to both", "key", "maxStack")
	if err := closeFn(); err != nil {
		t.Fatalf("close error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("log dir has %d files, want 1", len(entries))
	}
	if name := entries[0].Name(); !strings.HasPrefix(name, "modsync_") {
		t.Errorf("log file %q lacks modsync_ prefix", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("log file is not JSON: %v\n%s", err, data)
	}
	if rec["msg"] != "to both" {
		t.Errorf("msg = %v, want %q", rec["msg"], "to both")
	}
	if rec["key"] != "maxStack" {
		t.Errorf("key = %v, want maxStack", rec["key"])
	}
	if !strings.Contains(console.String(), "to both") {
		t.Errorf("console missing record: %q", console.String())
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing happens")
}

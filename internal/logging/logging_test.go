package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesToFileAtLevel(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "logs", "admin.log")
	l, err := New(Options{Level: "warn", Format: "json", File: file})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown")
	_ = l.Sync()

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected log output:\n%s", out)
	}
	if !strings.Contains(out, `"timestamp"`) {
		t.Fatalf("expected timestamp key:\n%s", out)
	}
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "admin.log")
	l, err := New(Options{Level: "loud", File: file})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("debug line")
	l.Info("info line")
	_ = l.Sync()

	b, _ := os.ReadFile(file)
	if strings.Contains(string(b), "debug line") || !strings.Contains(string(b), "info line") {
		t.Fatalf("unexpected log output:\n%s", b)
	}
}

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogBeforeInitIsNoop(t *testing.T) {
	Close()
	Log("nothing should happen %d", 1)
	if Enabled() {
		t.Error("Logging should be disabled before Init")
	}
}

func TestInitAndLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	if !Enabled() {
		t.Fatal("Expected logging enabled after Init")
	}

	Log("tick %d size %dx%d", 42, 24, 80)
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading log file: %v", err)
	}
	if !strings.Contains(string(data), "tick 42 size 24x80") {
		t.Errorf("Expected formatted message in log, got %q", string(data))
	}
	if !strings.Contains(string(data), "level=DEBUG") {
		t.Errorf("Expected structured debug level, got %q", string(data))
	}
}

func TestInitBadPath(t *testing.T) {
	Close()
	if err := Init("/nonexistent-dir/impossible/debug.log"); err == nil {
		t.Fatal("Expected error for unwritable path")
	}
	if Enabled() {
		t.Error("Failed Init must leave logging disabled")
	}
}

func TestCloseDisables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Close()
	if Enabled() {
		t.Error("Close should disable logging")
	}
	Log("dropped") // must not panic
}

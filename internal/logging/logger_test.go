package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledLoggingIsNoOp(t *testing.T) {
	if err := Initialize(t.TempDir(), false, "info"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer CloseAll()

	l := Get(CategoryStore)
	l.Info("should not be written")
	if l.logger != nil {
		t.Error("expected no-op logger when debug mode is disabled")
	}
}

func TestEnabledLoggingWritesFile(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, true, "debug"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer CloseAll()

	Loader("snapshot applied seq=%d", 7)

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var found bool
	for _, e := range entries {
		if strings.Contains(e.Name(), string(CategoryLoader)) {
			data, err := os.ReadFile(filepath.Join(dir, "logs", e.Name()))
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if !strings.Contains(string(data), "snapshot applied seq=7") {
				t.Errorf("log file missing entry: %s", data)
			}
			found = true
		}
	}
	if !found {
		t.Error("no loader log file created")
	}
}

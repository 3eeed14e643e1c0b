package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGet_NoOpBeforeInitialize(t *testing.T) {
	CloseAll()
	l := Get(CategoryVoice)
	// Must not panic or write anywhere.
	l.Info("dropped")
	l.Error("dropped")
}

func TestInitialize_WritesCategoryFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, "debug"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer CloseAll()

	Get(CategoryRoute).Info("resolved 12 points")
	Get(CategoryRoute).Debug("detail line")

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	var routeFile string
	for _, e := range entries {
		if strings.Contains(e.Name(), "route") {
			routeFile = filepath.Join(dir, "logs", e.Name())
		}
	}
	if routeFile == "" {
		t.Fatal("expected a route log file")
	}
	data, err := os.ReadFile(routeFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "resolved 12 points") {
		t.Errorf("log entry missing, got: %s", data)
	}
	if !strings.Contains(string(data), "[DEBUG] detail line") {
		t.Errorf("debug entry missing at debug level, got: %s", data)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, "warn"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer CloseAll()

	l := Get(CategoryAlert)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("visible warn")

	entries, _ := os.ReadDir(filepath.Join(dir, "logs"))
	for _, e := range entries {
		if !strings.Contains(e.Name(), "alert") {
			continue
		}
		data, _ := os.ReadFile(filepath.Join(dir, "logs", e.Name()))
		if strings.Contains(string(data), "hidden") {
			t.Errorf("sub-level entries leaked: %s", data)
		}
		if !strings.Contains(string(data), "visible warn") {
			t.Errorf("warn entry missing: %s", data)
		}
	}
}

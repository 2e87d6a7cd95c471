package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWriters_RoutesByLevel(t *testing.T) {
	var out, errOut, file bytes.Buffer
	logger := NewWriters(&out, &errOut, &file)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line")

	if !strings.Contains(out.String(), "info line") || !strings.Contains(out.String(), "warn line") {
		t.Errorf("expected info and warn on stdout, got %q", out.String())
	}
	if strings.Contains(out.String(), "error line") {
		t.Error("error must not go to stdout")
	}
	if !strings.Contains(errOut.String(), "error line") || strings.Contains(errOut.String(), "info line") {
		t.Errorf("expected only error on stderr, got %q", errOut.String())
	}
	for _, want := range []string{"debug line", "info line", "warn line", "error line"} {
		if !strings.Contains(file.String(), want) {
			t.Errorf("expected %q in file output", want)
		}
	}
	if !strings.Contains(out.String(), `"timestamp"`) {
		t.Errorf("expected timestamp key, got %q", out.String())
	}
}

func TestNew_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventstock.log")

	logger, cleanup, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("written to file only")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "written to file only") {
		t.Errorf("expected log line in file, got %q", data)
	}
}

func TestNew_BadPath(t *testing.T) {
	if _, _, err := New(filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestNamed_NilBase(t *testing.T) {
	if Named(nil, "api") == nil {
		t.Fatal("expected no-op logger")
	}
}

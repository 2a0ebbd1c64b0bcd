package logging

import (
	"os"
	"testing"
)

func TestNewLogger_WritesUnderDir(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}
	log.Debug("logger_smoke_test")

	if entries, _ := os.ReadDir(dir); len(entries) == 0 {
		t.Logf("no files yet in %s (async writers may delay)", dir)
	}
}

func TestNewLogger_BadLevelFallsBack(t *testing.T) {
	log, err := NewLogger(t.TempDir(), "chatty")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info("still_works")
	_ = log.Sync()
}

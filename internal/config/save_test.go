package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	off := false
	cfg := Default()
	cfg.Board.Owner = "acme"
	cfg.Board.Project = 12
	cfg.Board.Timeout = Duration{90 * time.Second}
	cfg.Sync.History = &off
	cfg.UI.Accent = "#ff8800"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if loaded.Board.Owner != "acme" || loaded.Board.Project != 12 {
		t.Errorf("board = %+v", loaded.Board)
	}
	if loaded.Board.Timeout.Duration != 90*time.Second {
		t.Errorf("timeout = %s", loaded.Board.Timeout.Duration)
	}
	if loaded.HistoryEnabled() {
		t.Error("expected history=false to persist")
	}
	if loaded.UI.Accent != "#ff8800" {
		t.Errorf("accent = %q", loaded.UI.Accent)
	}
}

func TestSaveToOmitsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := SaveTo(path, &Config{Store: "r.yaml"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != `store = "r.yaml"` {
		t.Errorf("saved config = %q", got)
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo("  ", Default()); err == nil {
		t.Error("expected error for empty path")
	}
}

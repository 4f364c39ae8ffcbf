package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/roadmap/internal/atomicfile"
)

type persistedConfig struct {
	Store *string              `toml:"store,omitempty"`
	Board *persistedBoard      `toml:"board,omitempty"`
	Sync  *persistedSync       `toml:"sync,omitempty"`
	UI    *persistedUISettings `toml:"ui,omitempty"`
}

type persistedBoard struct {
	Backend     *string   `toml:"backend,omitempty"`
	Owner       *string   `toml:"owner,omitempty"`
	Project     *int      `toml:"project,omitempty"`
	GHPath      *string   `toml:"gh_path,omitempty"`
	StatusField *string   `toml:"status_field,omitempty"`
	Timeout     *Duration `toml:"timeout,omitempty"`
	Limit       *int      `toml:"limit,omitempty"`
}

type persistedSync struct {
	Concurrency *int  `toml:"concurrency,omitempty"`
	History     *bool `toml:"history,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func positivePtr(value int) *int {
	if value <= 0 {
		return nil
	}
	return &value
}

// Save writes the config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the config to a specific path atomically. Empty values
// are left out so the defaults keep applying.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = Default()
	}

	out := persistedConfig{Store: nonEmptyPtr(cfg.Store)}

	board := persistedBoard{
		Backend:     nonEmptyPtr(cfg.Board.Backend),
		Owner:       nonEmptyPtr(cfg.Board.Owner),
		Project:     positivePtr(cfg.Board.Project),
		GHPath:      nonEmptyPtr(cfg.Board.GHPath),
		StatusField: nonEmptyPtr(cfg.Board.StatusField),
		Limit:       positivePtr(cfg.Board.Limit),
	}
	if cfg.Board.Timeout.Duration > 0 {
		timeout := cfg.Board.Timeout
		board.Timeout = &timeout
	}
	if board != (persistedBoard{}) {
		out.Board = &board
	}

	sync := persistedSync{Concurrency: positivePtr(cfg.Sync.Concurrency), History: cfg.Sync.History}
	if sync != (persistedSync{}) {
		out.Sync = &sync
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}

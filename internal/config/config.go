// Package config handles roadmap configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Board backends.
const (
	BackendGitHub = "github"
	BackendMemory = "memory"
)

// Defaults applied when a key is absent.
const (
	DefaultStore       = "roadmap.yaml"
	DefaultBackend     = BackendGitHub
	DefaultGHPath      = "gh"
	DefaultStatusField = "Status"
	DefaultTimeout     = 30 * time.Second
	DefaultLimit       = 500
	DefaultConcurrency = 4
)

// Config represents the roadmap configuration.
type Config struct {
	// Store is the roadmap file used when --store is not given.
	Store string `toml:"store"`

	Board BoardConfig `toml:"board"`
	Sync  SyncConfig  `toml:"sync"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// BoardConfig selects and configures the remote board.
type BoardConfig struct {
	// Backend is "github" or "memory".
	Backend string `toml:"backend"`

	// Owner and Project identify a GitHub project (v2) board.
	Owner   string `toml:"owner"`
	Project int    `toml:"project"`

	// GHPath is the gh executable.
	GHPath string `toml:"gh_path"`

	// StatusField is the single-select field holding the column.
	StatusField string `toml:"status_field"`

	// Timeout bounds each board request.
	Timeout Duration `toml:"timeout"`

	// Limit caps how many board items are listed.
	Limit int `toml:"limit"`
}

// SyncConfig tunes push and pull.
type SyncConfig struct {
	// Concurrency bounds parallel board writes during push.
	Concurrency int `toml:"concurrency"`

	// History records each run in the sync journal. Defaults to true.
	History *bool `toml:"history"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	CodeTheme string `toml:"code_theme"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store: DefaultStore,
		Board: BoardConfig{
			Backend:     DefaultBackend,
			GHPath:      DefaultGHPath,
			StatusField: DefaultStatusField,
			Timeout:     Duration{DefaultTimeout},
			Limit:       DefaultLimit,
		},
		Sync: SyncConfig{Concurrency: DefaultConcurrency},
	}
}

// HistoryEnabled reports whether sync runs are journaled.
func (c *Config) HistoryEnabled() bool {
	return c.Sync.History == nil || *c.Sync.History
}

// Validate checks values that would otherwise fail late, during a sync.
func (c *Config) Validate() error {
	switch c.Board.Backend {
	case BackendGitHub, BackendMemory:
	default:
		return fmt.Errorf("board.backend must be %q or %q, got %q", BackendGitHub, BackendMemory, c.Board.Backend)
	}
	if c.Board.Timeout.Duration <= 0 {
		return fmt.Errorf("board.timeout must be positive, got %s", c.Board.Timeout.Duration)
	}
	if c.Board.Limit <= 0 {
		return fmt.Errorf("board.limit must be positive, got %d", c.Board.Limit)
	}
	if c.Sync.Concurrency <= 0 {
		return fmt.Errorf("sync.concurrency must be positive, got %d", c.Sync.Concurrency)
	}
	return nil
}

// ValidateGitHub checks the settings the GitHub backend cannot run without.
func (b BoardConfig) ValidateGitHub() error {
	var missing []string
	if strings.TrimSpace(b.Owner) == "" {
		missing = append(missing, "board.owner")
	}
	if b.Project <= 0 {
		missing = append(missing, "board.project")
	}
	if len(missing) > 0 {
		return fmt.Errorf("github board needs %s", strings.Join(missing, " and "))
	}
	return nil
}

// Load loads the configuration from the default location.
// Returns the default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path. Keys missing from
// the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	config := Default()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// LoadResolved loads from an explicit path when given; a missing explicit
// file is an error, a missing default file is not.
func LoadResolved(explicitConfigPath string) (*Config, error) {
	if strings.TrimSpace(explicitConfigPath) == "" {
		return Load()
	}
	return LoadFrom(explicitConfigPath)
}

// DefaultPath returns the default config file path.
// Checks ~/.config/roadmap/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if xdgPath, err := XDGPath(); err == nil {
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "roadmap", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// XDGPath returns the XDG-style config path (~/.config/roadmap/config.toml).
func XDGPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "roadmap", "config.toml"), nil
}

const defaultTemplate = `# roadmap configuration

# Store file used when --store is not given.
# store = "roadmap.yaml"

[board]
# github | memory
backend = "github"
# owner = "your-org"
# project = 1
# gh_path = "gh"
# status_field = "Status"
# timeout = "30s"
# limit = 500

[sync]
# concurrency = 4
# history = true

# Optional UI accent color for headers in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`

// CreateDefault writes a commented config file at path if none exists.
// It reports whether a file was created.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultTemplate), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}

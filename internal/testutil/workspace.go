// Package testutil provides reusable helpers for roadmap integration tests
// that drive the built binary.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// TestWorkspace is a temporary directory holding a roadmap store, with its
// own home and config directories so runs never see the user's settings.
type TestWorkspace struct {
	Path  string
	Store string

	t       *testing.T
	project string
	items   []roadmap.Item
	config  string
	raw     string
}

// NewTestWorkspace creates a workspace builder. Call Build to create it.
func NewTestWorkspace(t *testing.T) *TestWorkspace {
	t.Helper()
	return &TestWorkspace{t: t, project: "demo"}
}

// WithProject sets the store's project name.
func (w *TestWorkspace) WithProject(name string) *TestWorkspace {
	w.project = name
	return w
}

// WithItem adds an item to the store.
func (w *TestWorkspace) WithItem(item roadmap.Item) *TestWorkspace {
	w.items = append(w.items, item)
	return w
}

// WithRawStore writes the store verbatim instead of encoding items. Use it
// for stores the encoder would refuse to write.
func (w *TestWorkspace) WithRawStore(content string) *TestWorkspace {
	w.raw = content
	return w
}

// WithConfig sets the config.toml content.
func (w *TestWorkspace) WithConfig(toml string) *TestWorkspace {
	w.config = toml
	return w
}

// Build creates the workspace directory and its files.
func (w *TestWorkspace) Build() *TestWorkspace {
	w.t.Helper()

	w.Path = w.t.TempDir()
	w.Store = filepath.Join(w.Path, roadmap.DefaultFileName)

	switch {
	case w.raw != "":
		w.writeFile(roadmap.DefaultFileName, w.raw)
	case w.items != nil:
		if err := roadmap.Save(w.Store, &roadmap.Roadmap{Project: w.project, Items: w.items}); err != nil {
			w.t.Fatalf("failed to write store: %v", err)
		}
	}
	if w.config != "" {
		w.writeFile(filepath.Join("config", "roadmap", "config.toml"), w.config)
	}
	return w
}

// Item returns a complete pending item for label and title.
func Item(label, title string) roadmap.Item {
	return roadmap.Item{
		Title:       title,
		Label:       label,
		Description: "Description of " + title,
		Kind:        roadmap.KindFeature,
		Layer:       roadmap.LayerBackend,
		Priority:    roadmap.PriorityP1,
		Status:      roadmap.StatusPending,
		StartDate:   "2026-01-05",
	}
}

// ReadStore loads the store as the binary left it.
func (w *TestWorkspace) ReadStore() *roadmap.Roadmap {
	w.t.Helper()
	r, err := roadmap.Load(w.Store)
	if err != nil {
		w.t.Fatalf("failed to read store: %v", err)
	}
	return r
}

// ReadFile returns the content of a file relative to the workspace.
func (w *TestWorkspace) ReadFile(relPath string) string {
	w.t.Helper()
	content, err := os.ReadFile(filepath.Join(w.Path, relPath))
	if err != nil {
		w.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

func (w *TestWorkspace) writeFile(relPath, content string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		w.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		w.t.Fatalf("failed to write file %s: %v", relPath, err)
	}
}

func (w *TestWorkspace) env() []string {
	return append(os.Environ(),
		"HOME="+filepath.Join(w.Path, "home"),
		"XDG_CONFIG_HOME="+filepath.Join(w.Path, "config"),
	)
}

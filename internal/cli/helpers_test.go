package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/roadmap/internal/board"
	"github.com/aidanlsb/roadmap/internal/config"
	"github.com/aidanlsb/roadmap/internal/roadmap"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	outputCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		outputCh <- buf.String()
	}()

	fn()

	os.Stdout = orig
	_ = w.Close()
	return <-outputCh
}

// resetFlags puts every flag of cmd and its subcommands back to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// testEnv is an isolated workspace: its own home, config dir, store file
// and in-memory board.
type testEnv struct {
	t     *testing.T
	dir   string
	store string
	board *board.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))

	env := &testEnv{
		t:     t,
		dir:   dir,
		store: filepath.Join(dir, "roadmap.yaml"),
		board: board.NewMemory(),
	}

	prevClient := newBoardClient
	newBoardClient = func(*config.Config, string) (board.Client, error) {
		return env.board, nil
	}
	t.Cleanup(func() {
		newBoardClient = prevClient
		resetFlags(rootCmd)
		cfg = nil
		resolvedStorePath = ""
	})
	return env
}

// run executes the root command with the store flag prepended.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--store", e.store}, args...))

	var err error
	out := captureStdout(e.t, func() {
		err = rootCmd.ExecuteContext(context.Background())
	})
	_ = closeLog()
	closeLog = func() error { return nil }
	return out, err
}

// runJSON executes the command with --json and decodes the envelope.
func (e *testEnv) runJSON(args ...string) (jsonResponse, error) {
	e.t.Helper()
	out, err := e.run(append(args, "--json")...)
	var resp jsonResponse
	if decodeErr := json.Unmarshal([]byte(out), &resp); decodeErr != nil {
		e.t.Fatalf("decode %v output: %v\n%s", args, decodeErr, out)
	}
	return resp, err
}

type jsonResponse struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`
	Meta     *Meta           `json:"meta"`
}

func (r jsonResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("decode data: %v\n%s", err, r.Data)
	}
}

func (r jsonResponse) hasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func (e *testEnv) writeStore(items ...roadmap.Item) {
	e.t.Helper()
	if err := roadmap.Save(e.store, &roadmap.Roadmap{Project: "demo", Items: items}); err != nil {
		e.t.Fatalf("save store: %v", err)
	}
}

func (e *testEnv) readStore() *roadmap.Roadmap {
	e.t.Helper()
	r, err := roadmap.Load(e.store)
	if err != nil {
		e.t.Fatalf("load store: %v", err)
	}
	return r
}

func testItem(label, title string, st roadmap.Status) roadmap.Item {
	return roadmap.Item{
		Title:       title,
		Label:       label,
		Description: "Description of " + title,
		Kind:        roadmap.KindFeature,
		Layer:       roadmap.LayerBackend,
		Priority:    roadmap.PriorityP1,
		Status:      st,
		StartDate:   "2026-01-05",
	}
}

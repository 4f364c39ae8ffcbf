package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	// binaryPath caches the path to the built roadmap binary.
	binaryPath string
	buildMu    sync.Mutex
	buildErr   error
)

// CLIResult is the outcome of one CLI run.
type CLIResult struct {
	OK       bool
	Data     json.RawMessage
	Error    *CLIError
	Warnings []CLIWarning
	Meta     *CLIMeta
	RawJSON  string
	Stderr   string
	ExitCode int
}

// CLIError is a structured error from the CLI.
type CLIError struct {
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Details    json.RawMessage `json:"details,omitempty"`
	Suggestion string          `json:"suggestion,omitempty"`
}

// CLIWarning is a warning from the CLI.
type CLIWarning struct {
	Code    string `json:"code"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}

// CLIMeta is response metadata.
type CLIMeta struct {
	Count      int   `json:"count,omitempty"`
	DurationMs int64 `json:"duration_ms,omitempty"`
	DryRun     bool  `json:"dry_run,omitempty"`
}

// BuildCLI builds the roadmap binary once per test process and returns
// its path.
func BuildCLI(t *testing.T) string {
	t.Helper()

	buildMu.Lock()
	defer buildMu.Unlock()

	if binaryPath != "" {
		if _, err := os.Stat(binaryPath); err == nil {
			return binaryPath
		}
		binaryPath = ""
		buildErr = nil
	}

	binaryPath, buildErr = build()
	if buildErr != nil {
		t.Fatalf("failed to build CLI: %v", buildErr)
	}
	return binaryPath
}

func build() (string, error) {
	root, err := findProjectRoot()
	if err != nil {
		return "", err
	}
	tmpDir, err := os.MkdirTemp("", "roadmap-cli-bin-*")
	if err != nil {
		return "", err
	}
	name := "roadmap"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(tmpDir, name)

	cmd := exec.Command("go", "build", "-o", path, "./cmd/roadmap")
	cmd.Dir = root
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", &BuildError{Output: string(output), Err: err}
	}
	return path, nil
}

// BuildError is a failed go build.
type BuildError struct {
	Output string
	Err    error
}

func (e *BuildError) Error() string {
	return e.Err.Error() + "\n" + e.Output
}

// findProjectRoot walks up from the working directory to go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// RunCLI runs the binary against the workspace store with --json and the
// in-memory board, and parses the response envelope.
func (w *TestWorkspace) RunCLI(args ...string) *CLIResult {
	w.t.Helper()
	return w.run("", args...)
}

// RunCLIWithStdin is RunCLI with stdin attached.
func (w *TestWorkspace) RunCLIWithStdin(stdin string, args ...string) *CLIResult {
	w.t.Helper()
	return w.run(stdin, args...)
}

func (w *TestWorkspace) run(stdin string, args ...string) *CLIResult {
	w.t.Helper()
	binary := BuildCLI(w.t)

	cmdArgs := append([]string{"--store", w.Store, "--board", "memory", "--json"}, args...)
	cmd := exec.Command(binary, cmdArgs...)
	cmd.Dir = w.Path
	cmd.Env = w.env()
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &CLIResult{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	result.RawJSON = stdout.String()
	result.Stderr = stderr.String()

	var resp struct {
		OK       bool            `json:"ok"`
		Data     json.RawMessage `json:"data,omitempty"`
		Error    *CLIError       `json:"error,omitempty"`
		Warnings []CLIWarning    `json:"warnings,omitempty"`
		Meta     *CLIMeta        `json:"meta,omitempty"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		result.Error = &CLIError{
			Code:    "PARSE_ERROR",
			Message: "failed to parse JSON output: " + err.Error() + "\n" + result.RawJSON + result.Stderr,
		}
		return result
	}

	result.OK = resp.OK
	result.Data = resp.Data
	result.Error = resp.Error
	result.Warnings = resp.Warnings
	result.Meta = resp.Meta
	return result
}

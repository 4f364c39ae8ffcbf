package testutil

import (
	"encoding/json"
	"testing"

	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// MustSucceed fails the test unless the command succeeded with exit code 0.
func (r *CLIResult) MustSucceed(t *testing.T) *CLIResult {
	t.Helper()
	if !r.OK || r.ExitCode != 0 {
		msg := "unknown error"
		if r.Error != nil {
			msg = r.Error.Code + ": " + r.Error.Message
		}
		t.Fatalf("expected success, got exit %d: %s\nRaw output: %s", r.ExitCode, msg, r.RawJSON)
	}
	return r
}

// MustFail fails the test unless the command failed with the expected
// error code and process exit code.
func (r *CLIResult) MustFail(t *testing.T, code string, exitCode int) *CLIResult {
	t.Helper()
	if r.OK {
		t.Fatalf("expected failure %s, but it succeeded\nRaw output: %s", code, r.RawJSON)
	}
	if r.Error == nil || r.Error.Code != code {
		t.Fatalf("expected error code %s, got %+v\nRaw output: %s", code, r.Error, r.RawJSON)
	}
	if r.ExitCode != exitCode {
		t.Fatalf("expected exit code %d, got %d", exitCode, r.ExitCode)
	}
	return r
}

// HasWarning reports whether the response carries a warning with code.
func (r *CLIResult) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// DecodeData unmarshals the data payload into v.
func (r *CLIResult) DecodeData(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("failed to decode data: %v\nRaw output: %s", err, r.RawJSON)
	}
}

// AssertItemCount fails the test unless the store holds n items.
func (w *TestWorkspace) AssertItemCount(n int) {
	w.t.Helper()
	if got := len(w.ReadStore().Items); got != n {
		w.t.Errorf("expected %d items in store, got %d", n, got)
	}
}

// AssertItemStatus fails the test unless label has the given status.
func (w *TestWorkspace) AssertItemStatus(label string, want roadmap.Status) {
	w.t.Helper()
	item, ok := w.ReadStore().Find(label)
	if !ok {
		w.t.Errorf("expected item %q in store", label)
		return
	}
	if item.Status != want {
		w.t.Errorf("item %q status = %s, want %s", label, item.Status, want)
	}
}

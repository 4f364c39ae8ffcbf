package roadmap

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleStore = `project: acme-platform
items:
  - title: User Auth
    label: auth
    description: Login, logout and session refresh.
    kind: feature
    layer: backend
    priority: P1
    status: pending
    start_date: 2026-01-05
  - title: Deploy pipeline
    label: deploy
    description: |
      Build images on merge.
      Promote to staging automatically.
    kind: task
    layer: devops
    priority: P0
    status: in_progress
    start_date: 2026-02-01
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(sampleStore))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if r.Project != "acme-platform" {
		t.Errorf("Project = %q", r.Project)
	}
	if len(r.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(r.Items))
	}

	auth := r.Items[0]
	want := Item{
		Title:       "User Auth",
		Label:       "auth",
		Description: "Login, logout and session refresh.",
		Kind:        KindFeature,
		Layer:       LayerBackend,
		Priority:    PriorityP1,
		Status:      StatusPending,
		StartDate:   "2026-01-05",
	}
	if auth != want {
		t.Errorf("item 1 = %+v, want %+v", auth, want)
	}

	deploy := r.Items[1]
	if deploy.Description != "Build images on merge.\nPromote to staging automatically." {
		t.Errorf("multi-line description = %q", deploy.Description)
	}
	if deploy.Status != StatusInProgress {
		t.Errorf("status = %q", deploy.Status)
	}
}

func TestParseErrorsNameTheRecord(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		index   int
		label   string
		message string
	}{
		{
			name: "bad kind",
			doc: `project: p
items:
  - title: A
    label: a
    description: d
    kind: feature
    layer: backend
    priority: P1
    start_date: 2026-01-01
  - title: B
    label: b
    description: d
    kind: epic
    layer: backend
    priority: P1
    start_date: 2026-01-01
`,
			index:   2,
			label:   "b",
			message: `invalid kind "epic"`,
		},
		{
			name: "unknown field",
			doc: `project: p
items:
  - title: A
    label: a
    description: d
    kind: task
    layer: backend
    priority: P1
    start_date: 2026-01-01
    owner: sam
`,
			index:   1,
			label:   "a",
			message: `unknown field "owner"`,
		},
		{
			name: "bad date",
			doc: `project: p
items:
  - title: A
    label: a
    description: d
    kind: task
    layer: backend
    priority: P3
    start_date: 01/02/2026
`,
			index:   1,
			label:   "a",
			message: "invalid start_date",
		},
		{
			name: "priority P2 is not a level",
			doc: `project: p
items:
  - title: A
    label: a
    description: d
    kind: task
    layer: backend
    priority: P2
    start_date: 2026-01-01
`,
			index:   1,
			label:   "a",
			message: `invalid priority "P2"`,
		},
		{
			name: "item is not a mapping",
			doc: `project: p
items:
  - just a string
`,
			index:   1,
			message: "expected a mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if perr.Index != tt.index {
				t.Errorf("Index = %d, want %d", perr.Index, tt.index)
			}
			if perr.Label != tt.label {
				t.Errorf("Label = %q, want %q", perr.Label, tt.label)
			}
			if perr.Line == 0 {
				t.Error("expected a source line")
			}
			if !strings.Contains(perr.Error(), tt.message) {
				t.Errorf("Error() = %q, want it to contain %q", perr.Error(), tt.message)
			}
		})
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"no project":    "items: []\n",
		"unknown top":   "project: p\nowner: x\nitems: []\n",
		"broken yaml":   "project: [unterminated\n",
		"items not seq": "project: p\nitems: nope\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
		})
	}
}

func TestParseDefaultsStatusToPending(t *testing.T) {
	doc := `project: p
items:
  - title: A
    label: a
    description: d
    kind: bug
    layer: frontend
    priority: P0
    start_date: 2026-01-01
`
	r, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Items[0].Status != StatusPending {
		t.Errorf("Status = %q, want pending", r.Items[0].Status)
	}
}

func TestLoadSetsPathOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadmap.yaml")
	if err := os.WriteFile(path, []byte("items: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Path != path {
		t.Errorf("Path = %q, want %q", perr.Path, path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func(label string) Item {
		return Item{
			Title: "T " + label, Label: label, Description: "d",
			Kind: KindTask, Layer: LayerBackend, Priority: PriorityP3,
			Status: StatusPending, StartDate: "2026-01-01",
		}
	}

	t.Run("valid", func(t *testing.T) {
		if err := Validate([]Item{valid("a"), valid("b")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("duplicate label", func(t *testing.T) {
		err := Validate([]Item{valid("a"), valid("b"), valid("a")})
		var dup *DuplicateLabelError
		if !errors.As(err, &dup) {
			t.Fatalf("err = %v, want *DuplicateLabelError", err)
		}
		if dup.Label != "a" || len(dup.Indexes) != 2 || dup.Indexes[0] != 1 || dup.Indexes[1] != 3 {
			t.Errorf("dup = %+v", dup)
		}
	})

	t.Run("missing fields are all reported", func(t *testing.T) {
		a := valid("a")
		a.Description = "  "
		b := valid("b")
		b.Title = ""
		err := Validate([]Item{a, b})

		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("err = %v, want *MissingFieldError", err)
		}
		if !strings.Contains(err.Error(), "description is required") || !strings.Contains(err.Error(), "title is required") {
			t.Errorf("expected both problems, got %q", err.Error())
		}
	})

	t.Run("invalid enum", func(t *testing.T) {
		a := valid("a")
		a.Status = "blocked"
		var invalid *InvalidFieldError
		if err := Validate([]Item{a}); !errors.As(err, &invalid) {
			t.Fatalf("err = %v, want *InvalidFieldError", err)
		}
		if invalid.Field != "status" {
			t.Errorf("Field = %q", invalid.Field)
		}
	})
}

func TestSaveRoundTripIsStable(t *testing.T) {
	r, err := Parse([]byte(sampleStore))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "roadmap.yaml")
	if err := Save(path, r); err != nil {
		t.Fatalf("Save: %v", err)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(first), "start_date: 2026-01-05\n") {
		t.Errorf("expected plain date in output:\n%s", first)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reloaded.Items) != len(r.Items) {
		t.Fatalf("reloaded %d items, want %d", len(reloaded.Items), len(r.Items))
	}
	for i := range r.Items {
		if reloaded.Items[i] != r.Items[i] {
			t.Errorf("item %d = %+v, want %+v", i, reloaded.Items[i], r.Items[i])
		}
	}

	if err := Save(path, reloaded); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("save is not stable:\n%s\n---\n%s", first, second)
	}
}

func TestSaveRefusesInvalidStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadmap.yaml")
	if err := os.WriteFile(path, []byte(sampleStore), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	r.Items[1].Label = "auth"

	var dup *DuplicateLabelError
	if err := Save(path, r); !errors.As(err, &dup) {
		t.Fatalf("err = %v, want *DuplicateLabelError", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != sampleStore {
		t.Error("store file changed after a failed save")
	}
}

func TestMarshalEmptyStore(t *testing.T) {
	out, err := Marshal(&Roadmap{Project: "fresh"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "project: fresh\nitems: []\n" {
		t.Errorf("Marshal = %q", out)
	}

	r, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse(Marshal) = %v", err)
	}
	if r.Project != "fresh" || len(r.Items) != 0 {
		t.Errorf("round trip = %+v", r)
	}
}

func TestAddRejectsDuplicateLabel(t *testing.T) {
	r := &Roadmap{Project: "p"}
	item := NewImportedItem("Search", "search", "Full text search", StatusPending, "2026-01-01")
	if err := r.Add(item); err != nil {
		t.Fatal(err)
	}

	var dup *DuplicateLabelError
	if err := r.Add(item); !errors.As(err, &dup) {
		t.Fatalf("err = %v, want *DuplicateLabelError", err)
	}
	if !r.HasLabel("search") || r.HasLabel("other") {
		t.Error("HasLabel mismatch")
	}
}

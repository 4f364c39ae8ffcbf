package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aidanlsb/roadmap/internal/reconcile"
	"github.com/aidanlsb/roadmap/internal/roadmap"
)

func TestJournal(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		j, err := OpenInMemory()
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()

		runs, err := j.Recent(ctx, 5)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})

	t.Run("record and read back", func(t *testing.T) {
		j, err := OpenInMemory()
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()

		run := Run{
			Direction: DirectionPush,
			StartedAt: started,
			Duration:  1500 * time.Millisecond,
			Store:     "roadmap.yaml",
			Board:     "memory",
			Created:   1,
			Failed:    1,
			Items: []RunItem{
				{Label: "auth", Action: "create", RemoteID: "1"},
				{Label: "deploy", Action: "update", Detail: "board unavailable", Failed: true},
			},
		}
		id, err := j.Record(ctx, run)
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if id == 0 {
			t.Fatal("expected a run id")
		}

		runs, err := j.Recent(ctx, 5)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		got := runs[0]
		if got.ID != id || got.Direction != DirectionPush || got.Created != 1 || got.Failed != 1 {
			t.Errorf("run = %+v", got)
		}
		if !got.StartedAt.Equal(started) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
		}
		if got.Duration != 1500*time.Millisecond {
			t.Errorf("Duration = %v", got.Duration)
		}
		if len(got.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(got.Items))
		}
		if got.Items[0] != run.Items[0] || got.Items[1] != run.Items[1] {
			t.Errorf("items = %+v", got.Items)
		}
	})

	t.Run("newest first with limit", func(t *testing.T) {
		j, err := OpenInMemory()
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()

		for _, dir := range []string{DirectionPush, DirectionPull, DirectionPush} {
			if _, err := j.Record(ctx, Run{Direction: dir, StartedAt: started, Store: "s", Board: "b"}); err != nil {
				t.Fatal(err)
			}
		}

		runs, err := j.Recent(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID <= runs[1].ID {
			t.Errorf("runs not newest first: %d, %d", runs[0].ID, runs[1].ID)
		}
		if runs[1].Direction != DirectionPull {
			t.Errorf("second newest = %s, want pull", runs[1].Direction)
		}
	})

	t.Run("last touched ignores dry runs", func(t *testing.T) {
		j, err := OpenInMemory()
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()

		records := []Run{
			{Direction: DirectionPush, Items: []RunItem{{Label: "a", Action: "create", RemoteID: "1"}, {Label: "b", Action: "create", RemoteID: "2"}}},
			{Direction: DirectionPush, Items: []RunItem{{Label: "a", Action: "update", RemoteID: "5"}}},
			{Direction: DirectionPush, DryRun: true, Items: []RunItem{{Label: "b", Action: "update", RemoteID: "99"}}},
		}
		for _, r := range records {
			r.StartedAt = started
			if _, err := j.Record(ctx, r); err != nil {
				t.Fatal(err)
			}
		}

		ids, err := j.LastTouched(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if ids["a"] != "5" || ids["b"] != "2" {
			t.Errorf("LastTouched() = %v", ids)
		}

		ids, err = j.LastTouched(ctx, "b")
		if err != nil {
			t.Fatal(err)
		}
		if len(ids) != 1 || ids["b"] != "2" {
			t.Errorf("LastTouched(b) = %v", ids)
		}
	})
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := PathFor(filepath.Join(t.TempDir(), "roadmap.yaml"))

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := j.Record(ctx, Run{Direction: DirectionPull, StartedAt: time.Now(), Store: "roadmap.yaml", Board: "memory"}); err != nil {
		t.Fatal(err)
	}
	j.Close()

	j, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()

	runs, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("expected the run to persist, got %d runs", len(runs))
	}
}

func TestPathFor(t *testing.T) {
	got := PathFor(filepath.Join("plans", "roadmap.yaml"))
	want := filepath.Join("plans", ".roadmap", "history.db")
	if got != want {
		t.Errorf("PathFor() = %q, want %q", got, want)
	}
}

func TestFromPush(t *testing.T) {
	report := reconcile.PushReport{
		Created:   1,
		Updated:   1,
		Unchanged: 1,
		Failed: []reconcile.ItemFailure{
			{Label: "d", Op: "create", Reason: reconcile.ReasonUnavailable},
		},
		Results: []reconcile.ActionResult{
			{Label: "a", Action: reconcile.ActionCreate, RemoteID: "1"},
			{Label: "b", Action: reconcile.ActionUpdate, RemoteID: "2", Fields: []string{"body", "column"}},
			{Label: "c", Action: reconcile.ActionUnchanged, RemoteID: "3"},
			{Label: "d", Action: reconcile.ActionCreate, Failed: true},
		},
	}

	run := FromPush(report)

	if run.Direction != DirectionPush || run.Created != 1 || run.Updated != 1 || run.Unchanged != 1 || run.Failed != 1 {
		t.Errorf("run = %+v", run)
	}
	if len(run.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(run.Items))
	}
	if run.Items[1].Detail != "body,column" {
		t.Errorf("update detail = %q", run.Items[1].Detail)
	}
	if !run.Items[3].Failed || run.Items[3].Detail != reconcile.ReasonUnavailable {
		t.Errorf("failed item = %+v", run.Items[3])
	}
}

func TestFromPull(t *testing.T) {
	res := reconcile.PullResult{
		Items:   make([]roadmap.Item, 3),
		Updated: 1,
		Changes: []reconcile.StatusChange{
			{Label: "a", RemoteID: "1", From: roadmap.StatusPending, To: roadmap.StatusDone},
		},
		OrphanLocal: []roadmap.Item{{Label: "c"}},
	}
	imported := []Imported{{Item: roadmap.Item{Label: "new", Status: roadmap.StatusPending}, RemoteID: "8"}}

	run := FromPull(res, imported, false)

	if run.Updated != 1 || run.Unchanged != 1 || run.Imported != 1 {
		t.Errorf("run = %+v", run)
	}
	want := []RunItem{
		{Label: "a", Action: "status", RemoteID: "1", Detail: "pending -> done"},
		{Label: "new", Action: "import", RemoteID: "8", Detail: "pending"},
		{Label: "c", Action: "orphan"},
	}
	if len(run.Items) != len(want) {
		t.Fatalf("items = %+v", run.Items)
	}
	for i := range want {
		if run.Items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, run.Items[i], want[i])
		}
	}
}

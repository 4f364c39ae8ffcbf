package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/aidanlsb/roadmap/internal/board"
	"github.com/aidanlsb/roadmap/internal/roadmap"
)

func TestPushCreatesOnEmptyBoard(t *testing.T) {
	ctx := context.Background()
	b := board.NewMemory()
	auth := item("auth", "User Auth", roadmap.StatusPending)

	report, err := Push(ctx, b, []roadmap.Item{auth}, Options{})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	creates := b.CallsOf("create")
	if len(creates) != 1 {
		t.Fatalf("create called %d times, want 1", len(creates))
	}
	if creates[0].Title != "User Auth" || creates[0].Body != EncodeBody(auth) {
		t.Errorf("create call = %+v", creates[0])
	}
	if report.Created != 1 || report.Updated != 0 || report.Unchanged != 0 || report.HasFailures() {
		t.Errorf("report = %+v", report)
	}

	got := b.Items()[0]
	if got.Column != "Todo" {
		t.Errorf("created item column = %q, want Todo", got.Column)
	}
}

func TestPushSkipsColumnUpdateWhenBoardDefaultMatches(t *testing.T) {
	b := board.NewMemory()
	b.DefaultColumn = "Todo"

	_, err := Push(context.Background(), b, []roadmap.Item{item("auth", "User Auth", roadmap.StatusPending)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(b.CallsOf("update")); n != 0 {
		t.Errorf("update called %d times, want 0", n)
	}
}

func TestPushUpdatesOnlyColumn(t *testing.T) {
	ctx := context.Background()
	auth := item("auth", "User Auth", roadmap.StatusPending)
	b := board.NewMemory(board.RemoteItem{
		ID:     "42",
		Title:  "User Auth",
		Body:   EncodeBody(auth),
		Column: "In Progress",
	})

	report, err := Push(ctx, b, []roadmap.Item{auth}, Options{})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	updates := b.CallsOf("update")
	if len(updates) != 1 {
		t.Fatalf("update called %d times, want 1", len(updates))
	}
	u := updates[0]
	if u.ID != "42" {
		t.Errorf("updated id %q, want 42", u.ID)
	}
	if u.Fields.Column == nil || *u.Fields.Column != "Todo" || u.Fields.Body != nil || u.Fields.Title != nil {
		t.Errorf("fields = %s, want only column=Todo", u.Fields)
	}
	if len(b.CallsOf("create")) != 0 {
		t.Error("push must not create a matched item")
	}
	if report.Created != 0 || report.Updated != 1 || report.Unchanged != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestPushWritesMissingBodyWithColumn(t *testing.T) {
	ctx := context.Background()
	auth := item("auth", "User Auth", roadmap.StatusPending)
	b := board.NewMemory(board.RemoteItem{ID: "42", Title: "User Auth", Column: "In Progress"})

	report, err := Push(ctx, b, []roadmap.Item{auth}, Options{})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	updates := b.CallsOf("update")
	if len(updates) != 1 {
		t.Fatalf("update called %d times, want 1", len(updates))
	}
	f := updates[0].Fields
	if f.Column == nil || *f.Column != "Todo" {
		t.Errorf("column = %v, want Todo", f.Column)
	}
	if f.Body == nil || *f.Body != EncodeBody(auth) {
		t.Errorf("body = %v, want encoded item", f.Body)
	}
	if f.Title != nil {
		t.Errorf("title should not change, got %q", *f.Title)
	}
	if report.Updated != 1 || report.Created != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestPushIsIdempotent(t *testing.T) {
	ctx := context.Background()
	items := []roadmap.Item{
		item("auth", "User Auth", roadmap.StatusPending),
		item("deploy", "Deploy pipeline", roadmap.StatusInProgress),
		item("search", "Search", roadmap.StatusDone),
	}
	b := board.NewMemory(
		board.RemoteItem{ID: "1", Title: "Deploy pipeline", Body: "stale", Column: "Todo"},
		board.RemoteItem{ID: "2", Title: "Unrelated", Column: "Done"},
	)

	first, err := Push(ctx, b, items, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Created != 2 || first.Updated != 1 {
		t.Fatalf("first run = %+v", first)
	}

	b.ResetCalls()
	second, err := Push(ctx, b, items, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if n := len(b.CallsOf("create")) + len(b.CallsOf("update")); n != 0 {
		t.Errorf("second push made %d writes, want 0", n)
	}
	if second.Unchanged != 3 || second.Created != 0 || second.Updated != 0 {
		t.Errorf("second run = %+v", second)
	}
}

func TestPushPartialFailureIsolation(t *testing.T) {
	ctx := context.Background()
	items := []roadmap.Item{
		item("a", "Alpha", roadmap.StatusPending),
		item("b", "Bravo", roadmap.StatusPending),
		item("c", "Charlie", roadmap.StatusPending),
	}
	snapshot := append([]roadmap.Item(nil), items...)

	b := board.NewMemory()
	b.FailCreate("Bravo", &board.UnavailableError{Op: "create", Err: errors.New("rate limited")})

	report, err := Push(ctx, b, items, Options{Concurrency: 3})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	if report.Created != 2 {
		t.Errorf("Created = %d, want 2", report.Created)
	}
	if len(report.Failed) != 1 || report.Failed[0].Label != "b" {
		t.Fatalf("Failed = %+v", report.Failed)
	}
	if report.Failed[0].Reason != ReasonUnavailable {
		t.Errorf("Reason = %q", report.Failed[0].Reason)
	}

	titles := map[string]bool{}
	for _, r := range b.Items() {
		titles[r.Title] = true
	}
	if !titles["Alpha"] || !titles["Charlie"] || titles["Bravo"] {
		t.Errorf("board titles = %v", titles)
	}

	for i := range items {
		if items[i] != snapshot[i] {
			t.Errorf("push mutated local item %d", i)
		}
	}
}

func TestPushReportsFailuresInStoreOrder(t *testing.T) {
	var items []roadmap.Item
	b := board.NewMemory()
	for _, l := range []string{"a", "b", "c", "d", "e", "f"} {
		it := item(l, "Title "+l, roadmap.StatusPending)
		items = append(items, it)
		if l != "c" {
			b.FailCreate(it.Title, &board.UnavailableError{Op: "create", Err: errors.New("down")})
		}
	}

	report, err := Push(context.Background(), b, items, Options{Concurrency: 4})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"a", "b", "d", "e", "f"}
	if len(report.Failed) != len(want) {
		t.Fatalf("Failed = %+v", report.Failed)
	}
	for i, l := range want {
		if report.Failed[i].Label != l {
			t.Errorf("Failed[%d] = %q, want %q", i, report.Failed[i].Label, l)
		}
	}
	if len(report.Results) != len(items) {
		t.Errorf("Results has %d entries, want %d", len(report.Results), len(items))
	}
}

func TestPushUpdateOfRemovedItem(t *testing.T) {
	ctx := context.Background()
	auth := item("auth", "User Auth", roadmap.StatusDone)
	b := board.NewMemory(board.RemoteItem{ID: "42", Title: "User Auth", Body: EncodeBody(auth), Column: "Todo"})
	b.FailUpdate("42", &board.NotFoundError{ID: "42"})

	report, err := Push(ctx, b, []roadmap.Item{auth}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Failed) != 1 || report.Failed[0].Reason != ReasonRemovedUpstream {
		t.Fatalf("Failed = %+v", report.Failed)
	}

	// Once the item is gone from the listing the next push re-creates it.
	b.Remove("42")
	b.ResetCalls()
	report, err = Push(ctx, b, []roadmap.Item{auth}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Created != 1 || len(b.CallsOf("create")) != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestPushListFailureIsFatal(t *testing.T) {
	b := board.NewMemory()
	b.FailList(&board.UnavailableError{Op: "list", Err: errors.New("auth required")})

	_, err := Push(context.Background(), b, []roadmap.Item{item("a", "A", roadmap.StatusPending)}, Options{})
	if !board.IsUnavailable(err) {
		t.Fatalf("err = %v, want UnavailableError", err)
	}
	if len(b.CallsOf("create")) != 0 {
		t.Error("no writes may happen when listing fails")
	}
}

func TestPushDryRunWritesNothing(t *testing.T) {
	b := board.NewMemory(board.RemoteItem{ID: "1", Title: "User Auth", Column: "Done"})
	items := []roadmap.Item{
		item("auth", "User Auth", roadmap.StatusPending),
		item("new", "New thing", roadmap.StatusPending),
	}

	report, err := Push(context.Background(), b, items, Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if !report.DryRun || report.Created != 1 || report.Updated != 1 {
		t.Errorf("report = %+v", report)
	}
	if n := len(b.Calls()); n != 1 {
		t.Errorf("dry run made %d calls, want only the list", n)
	}
}

func TestPlanPushRenamedItemUpdatesTitle(t *testing.T) {
	old := item("auth", "User Auth", roadmap.StatusPending)
	renamed := old
	renamed.Title = "Authentication"
	remote := []board.RemoteItem{{ID: "9", Title: "User Auth", Body: EncodeBody(old), Column: "Todo"}}

	plan := PlanPush([]roadmap.Item{renamed}, remote, Options{}.mapper())
	a := plan.Actions[0]
	if a.Kind != ActionUpdate || a.RemoteID != "9" {
		t.Fatalf("action = %+v", a)
	}
	if a.Fields.Title == nil || *a.Fields.Title != "Authentication" || a.Fields.Body != nil || a.Fields.Column != nil {
		t.Errorf("fields = %s, want only the new title", a.Fields)
	}
}

func TestPlanPushDuplicateLocalTitlesConflict(t *testing.T) {
	a := item("a", "Same", roadmap.StatusPending)
	b := item("b", "Same", roadmap.StatusPending)
	remote := []board.RemoteItem{{ID: "1", Title: "Same", Body: EncodeBody(a), Column: "Todo"}}

	plan := PlanPush([]roadmap.Item{a, b}, remote, Options{}.mapper())
	if plan.Actions[0].Kind != ActionUnchanged {
		t.Errorf("first action = %s", plan.Actions[0].Kind)
	}
	if plan.Actions[1].Kind != ActionConflict || plan.Actions[1].Err == nil {
		t.Fatalf("second action = %+v", plan.Actions[1])
	}

	report := plan.Preview()
	if len(report.Failed) != 1 || report.Failed[0].Reason != ReasonAlreadyMatched {
		t.Errorf("Failed = %+v", report.Failed)
	}
}

func TestPlanPushWarnsOnAmbiguousMatch(t *testing.T) {
	auth := item("auth", "User Auth", roadmap.StatusPending)
	remote := []board.RemoteItem{
		{ID: "1", Title: "User Auth", Body: EncodeBody(auth), Column: "Todo"},
		{ID: "2", Title: "User Auth", Column: "Done"},
	}

	plan := PlanPush([]roadmap.Item{auth}, remote, Options{}.mapper())
	if len(plan.Warnings) != 1 || plan.Warnings[0].Code != WarnAmbiguousMatch {
		t.Fatalf("Warnings = %+v", plan.Warnings)
	}
	if plan.Actions[0].Kind != ActionUnchanged || plan.Actions[0].RemoteID != "1" {
		t.Errorf("action = %+v", plan.Actions[0])
	}
}

func TestPushColumnFailureAfterCreate(t *testing.T) {
	b := board.NewMemory()
	// Memory assigns id "1" to the first created item.
	b.FailUpdate("1", &board.UnavailableError{Op: "update", Err: errors.New("timeout")})

	report, err := Push(context.Background(), b, []roadmap.Item{item("a", "A", roadmap.StatusDone)}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Created != 0 || len(report.Failed) != 1 {
		t.Fatalf("report = %+v", report)
	}
	f := report.Failed[0]
	if f.RemoteID != "1" || f.Reason != ReasonColumnNotSet {
		t.Errorf("failure = %+v", f)
	}
}

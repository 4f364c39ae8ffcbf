package board

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryCreateAssignsIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(RemoteItem{ID: "41", Title: "Existing", Column: "Done"})
	m.DefaultColumn = "Todo"

	created, err := m.Create(ctx, "New", "body")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "42" {
		t.Errorf("ID = %q, want 42", created.ID)
	}
	if created.Column != "Todo" {
		t.Errorf("Column = %q, want default column", created.Column)
	}

	items, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[1].Title != "New" {
		t.Errorf("items = %+v", items)
	}
}

func TestMemoryUpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(RemoteItem{ID: "1", Title: "A", Body: "keep", Column: "Todo"})

	if err := m.Update(ctx, "1", Fields{Column: Str("Done")}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got := m.Items()[0]
	if got.Column != "Done" || got.Body != "keep" || got.Title != "A" {
		t.Errorf("item = %+v", got)
	}
}

func TestMemoryUpdateUnknownID(t *testing.T) {
	m := NewMemory()
	err := m.Update(context.Background(), "404", Fields{Column: Str("Done")})
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestMemoryInjectedFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(RemoteItem{ID: "1", Title: "A"})
	boom := &UnavailableError{Op: "create", Err: errors.New("rate limited")}

	m.FailCreate("B", boom)
	if _, err := m.Create(ctx, "B", ""); !IsUnavailable(err) {
		t.Errorf("Create err = %v", err)
	}
	if _, err := m.Create(ctx, "C", ""); err != nil {
		t.Errorf("unrelated create failed: %v", err)
	}

	m.FailUpdate("1", boom)
	if err := m.Update(ctx, "1", Fields{Title: Str("x")}); !IsUnavailable(err) {
		t.Errorf("Update err = %v", err)
	}

	m.FailList(boom)
	if _, err := m.List(ctx); !IsUnavailable(err) {
		t.Errorf("List err = %v", err)
	}

	if got := len(m.CallsOf("create")); got != 2 {
		t.Errorf("create calls = %d, want 2", got)
	}
}

func TestMemoryRemoveAndSetColumn(t *testing.T) {
	m := NewMemory(RemoteItem{ID: "1", Title: "A", Column: "Todo"})

	if !m.SetColumn("1", "Done") || m.Items()[0].Column != "Done" {
		t.Error("SetColumn did not move the item")
	}
	if !m.Remove("1") || len(m.Items()) != 0 {
		t.Error("Remove did not delete the item")
	}
	if m.Remove("1") {
		t.Error("second Remove should report false")
	}
	if len(m.Calls()) != 0 {
		t.Errorf("test helpers should not record calls, got %d", len(m.Calls()))
	}
}

func TestFields(t *testing.T) {
	var f Fields
	if !f.Empty() {
		t.Error("zero Fields should be empty")
	}

	f = Fields{Body: Str("abc"), Column: Str("Todo")}
	if f.Empty() {
		t.Error("Fields with values should not be empty")
	}
	names := f.Names()
	if len(names) != 2 || names[0] != "body" || names[1] != "column" {
		t.Errorf("Names = %v", names)
	}
	if got := f.String(); got != `{body=(3 bytes) column="Todo"}` {
		t.Errorf("String = %s", got)
	}
}

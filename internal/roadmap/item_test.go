package roadmap

import "testing"

func TestParseEnums(t *testing.T) {
	if k, err := ParseKind("Feature"); err != nil || k != KindFeature {
		t.Errorf("ParseKind = %q, %v", k, err)
	}
	if l, err := ParseLayer("DEVOPS"); err != nil || l != LayerDevops {
		t.Errorf("ParseLayer = %q, %v", l, err)
	}
	if p, err := ParsePriority("p0"); err != nil || p != PriorityP0 {
		t.Errorf("ParsePriority = %q, %v", p, err)
	}
	if s, err := ParseStatus("in-progress"); err != nil || s != StatusInProgress {
		t.Errorf("ParseStatus = %q, %v", s, err)
	}
	if _, err := ParseStatus("blocked"); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := ParsePriority("P2"); err == nil {
		t.Error("expected error for P2")
	}
}

func TestPriorityOrdering(t *testing.T) {
	if !PriorityP0.Before(PriorityP1) || !PriorityP1.Before(PriorityP3) {
		t.Error("expected P0 > P1 > P3")
	}
	if PriorityP3.Before(PriorityP0) {
		t.Error("P3 must not sort before P0")
	}
	if Priority("P9").Rank() != len(Priorities) {
		t.Error("unknown priority should rank last")
	}
}

func TestNewImportedItemDefaults(t *testing.T) {
	item := NewImportedItem("Search", "search", "desc", StatusDone, "2026-10-19")
	if item.Kind != KindTask || item.Layer != LayerBackend || item.Priority != PriorityP3 {
		t.Errorf("defaults = %+v", item)
	}
	if item.Status != StatusDone {
		t.Errorf("Status = %q", item.Status)
	}

	item = NewImportedItem("Search", "search", "desc", "", "2026-10-19")
	if item.Status != StatusPending {
		t.Errorf("invalid status should default to pending, got %q", item.Status)
	}
}

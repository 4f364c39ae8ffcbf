// Package roadmap owns the local roadmap store: the item model, parsing,
// validation and the atomic on-disk save.
package roadmap

import (
	"fmt"
	"strings"
)

// Kind classifies the work an item represents.
type Kind string

const (
	KindBug     Kind = "bug"
	KindFeature Kind = "feature"
	KindTask    Kind = "task"
)

// Kinds lists every valid kind in display order.
var Kinds = []Kind{KindBug, KindFeature, KindTask}

// Layer is the part of the stack an item touches.
type Layer string

const (
	LayerBackend  Layer = "backend"
	LayerFrontend Layer = "frontend"
	LayerDevops   Layer = "devops"
)

// Layers lists every valid layer in display order.
var Layers = []Layer{LayerBackend, LayerFrontend, LayerDevops}

// Priority orders items; P0 is the most urgent.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP3 Priority = "P3"
)

// Priorities lists every valid priority from most to least urgent.
var Priorities = []Priority{PriorityP0, PriorityP1, PriorityP3}

// Status is the local workflow state of an item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every valid status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

// Item is one roadmap entry as written in the store.
type Item struct {
	Title       string   `yaml:"title" json:"title"`
	Label       string   `yaml:"label" json:"label"`
	Description string   `yaml:"description" json:"description"`
	Kind        Kind     `yaml:"kind" json:"kind"`
	Layer       Layer    `yaml:"layer" json:"layer"`
	Priority    Priority `yaml:"priority" json:"priority"`
	Status      Status   `yaml:"status" json:"status"`
	// StartDate is YYYY-MM-DD. It is set when the item is created and sync
	// never changes it.
	StartDate string `yaml:"start_date" json:"start_date"`
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return oneOf(k, Kinds) }

// Valid reports whether l is a known layer.
func (l Layer) Valid() bool { return oneOf(l, Layers) }

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool { return oneOf(p, Priorities) }

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return oneOf(s, Statuses) }

// Rank returns 0 for the most urgent priority. Unknown priorities sort last.
func (p Priority) Rank() int {
	for i, candidate := range Priorities {
		if candidate == p {
			return i
		}
	}
	return len(Priorities)
}

// Before reports whether p is more urgent than other.
func (p Priority) Before(other Priority) bool {
	return p.Rank() < other.Rank()
}

// ParseKind parses a kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	return parseEnum(s, "kind", Kinds, strings.ToLower)
}

// ParseLayer parses a layer, case-insensitively.
func ParseLayer(s string) (Layer, error) {
	return parseEnum(s, "layer", Layers, strings.ToLower)
}

// ParsePriority parses a priority such as "P1" or "p1".
func ParsePriority(s string) (Priority, error) {
	return parseEnum(s, "priority", Priorities, strings.ToUpper)
}

// ParseStatus parses a status. "in-progress" is accepted for in_progress.
func ParseStatus(s string) (Status, error) {
	return parseEnum(s, "status", Statuses, func(v string) string {
		return strings.ReplaceAll(strings.ToLower(v), "-", "_")
	})
}

func parseEnum[T ~string](s, name string, valid []T, normalize func(string) string) (T, error) {
	v := T(normalize(strings.TrimSpace(s)))
	if oneOf(v, valid) {
		return v, nil
	}
	return "", fmt.Errorf("invalid %s %q (expected one of: %s)", name, s, joinEnum(valid))
}

func oneOf[T comparable](v T, valid []T) bool {
	for _, candidate := range valid {
		if v == candidate {
			return true
		}
	}
	return false
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

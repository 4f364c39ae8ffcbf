// Package board defines the remote project board contract the sync engine
// talks to, together with an in-memory implementation and an adapter for
// GitHub Projects driven through the gh CLI.
package board

import (
	"context"
	"fmt"
	"strings"
)

// RemoteItem is an entry on the remote board as last observed.
type RemoteItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Column string `json:"column"`
}

// Fields is a partial update. Nil fields are left unchanged.
type Fields struct {
	Title  *string `json:"title,omitempty"`
	Body   *string `json:"body,omitempty"`
	Column *string `json:"column,omitempty"`
}

// Client is the minimal surface sync needs from a board backend.
//
// Every method may fail with *UnavailableError (network, auth, rate limits,
// timeouts). Update fails with *NotFoundError when id no longer exists.
type Client interface {
	List(ctx context.Context) ([]RemoteItem, error)
	Create(ctx context.Context, title, body string) (RemoteItem, error)
	Update(ctx context.Context, id string, fields Fields) error
}

// Str returns a pointer to s, for building Fields.
func Str(s string) *string { return &s }

// Empty reports whether f changes nothing.
func (f Fields) Empty() bool {
	return f.Title == nil && f.Body == nil && f.Column == nil
}

// Names lists the fields set in f, in a fixed order.
func (f Fields) Names() []string {
	var names []string
	if f.Title != nil {
		names = append(names, "title")
	}
	if f.Body != nil {
		names = append(names, "body")
	}
	if f.Column != nil {
		names = append(names, "column")
	}
	return names
}

func (f Fields) String() string {
	var parts []string
	if f.Title != nil {
		parts = append(parts, fmt.Sprintf("title=%q", *f.Title))
	}
	if f.Body != nil {
		parts = append(parts, fmt.Sprintf("body=(%d bytes)", len(*f.Body)))
	}
	if f.Column != nil {
		parts = append(parts, fmt.Sprintf("column=%q", *f.Column))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Apply returns item with f applied.
func (f Fields) Apply(item RemoteItem) RemoteItem {
	if f.Title != nil {
		item.Title = *f.Title
	}
	if f.Body != nil {
		item.Body = *f.Body
	}
	if f.Column != nil {
		item.Column = *f.Column
	}
	return item
}

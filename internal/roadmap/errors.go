package roadmap

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed store. Index is the 1-based position of
// the offending item, or 0 when the problem is at document level.
type ParseError struct {
	Path  string
	Index int
	Label string
	Line  int
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Index > 0 {
		fmt.Fprintf(&b, "item %d", e.Index)
		if e.Label != "" {
			fmt.Fprintf(&b, " (label %q)", e.Label)
		}
		if e.Line > 0 {
			fmt.Fprintf(&b, " at line %d", e.Line)
		}
		b.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFieldError reports an empty required field.
type MissingFieldError struct {
	Index int
	Label string
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("item %d (label %q): %s is required", e.Index, e.Label, e.Field)
	}
	return fmt.Sprintf("item %d: %s is required", e.Index, e.Field)
}

// DuplicateLabelError reports a label used by more than one item.
type DuplicateLabelError struct {
	Label   string
	Indexes []int
}

func (e *DuplicateLabelError) Error() string {
	idx := make([]string, len(e.Indexes))
	for i, n := range e.Indexes {
		idx[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("label %q is used by items %s; labels must be unique", e.Label, strings.Join(idx, ", "))
}

// InvalidFieldError reports an enum or date field holding an unknown value.
type InvalidFieldError struct {
	Index int
	Label string
	Field string
	Value string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("item %d (label %q): invalid %s %q", e.Index, e.Label, e.Field, e.Value)
}

// Package status translates between local roadmap statuses and the column
// names used on the remote board.
package status

import (
	"fmt"

	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// Board column names.
const (
	ColumnTodo       = "Todo"
	ColumnInProgress = "In Progress"
	ColumnDone       = "Done"
)

// UnknownColumnError is returned by ToLocal for a column outside the table.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown board column %q (expected %q, %q or %q)", e.Column, ColumnTodo, ColumnInProgress, ColumnDone)
}

type mapping struct {
	local  roadmap.Status
	column string
}

var table = []mapping{
	{roadmap.StatusPending, ColumnTodo},
	{roadmap.StatusInProgress, ColumnInProgress},
	{roadmap.StatusDone, ColumnDone},
}

// Mapper is the fixed bidirectional status table. The zero value is ready
// to use.
type Mapper struct{}

// ToRemote returns the column for s. Statuses outside the table map to "".
func (Mapper) ToRemote(s roadmap.Status) string {
	for _, m := range table {
		if m.local == s {
			return m.column
		}
	}
	return ""
}

// ToLocal returns the status for a board column. Matching is exact and
// case-sensitive.
func (Mapper) ToLocal(column string) (roadmap.Status, error) {
	for _, m := range table {
		if m.column == column {
			return m.local, nil
		}
	}
	return "", &UnknownColumnError{Column: column}
}

// Columns lists the board columns in workflow order.
func (Mapper) Columns() []string {
	cols := make([]string, len(table))
	for i, m := range table {
		cols[i] = m.column
	}
	return cols
}

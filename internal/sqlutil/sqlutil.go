// Package sqlutil holds small database/sql helpers shared by the journal
// queries.
package sqlutil

import (
	"database/sql"
	"strings"
)

// InClauseArgs returns "?" placeholders for an IN list and the matching
// args. An empty list yields "NULL", so `IN (NULL)` matches no rows.
func InClauseArgs[T any](values []T) (placeholders string, args []any) {
	if len(values) == 0 {
		return "NULL", nil
	}
	args = make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", "), args
}

// ScanRows scans every row with scan and closes rows.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Package dates provides the calendar-date helpers shared by the store,
// the CLI and pull imports. Dates are always plain YYYY-MM-DD values.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layout is the only accepted date layout.
const Layout = "2006-01-02"

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Now is the clock used for "today". Tests replace it.
var Now = time.Now

// IsValidDate checks if a string is a valid YYYY-MM-DD date.
func IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !IsValidDate(s) {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return time.Parse(Layout, s)
}

// Format renders t as YYYY-MM-DD in t's own location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today returns the current local date as YYYY-MM-DD.
func Today() string {
	return Format(Now())
}

// ParseDateArg parses a CLI date argument which can be:
//   - "today", "yesterday", "tomorrow"
//   - "YYYY-MM-DD"
//   - empty, meaning today
//
// The result is normalized to YYYY-MM-DD.
func ParseDateArg(arg string, now time.Time) (string, error) {
	dateArg := strings.ToLower(strings.TrimSpace(arg))
	switch dateArg {
	case "", "today":
		return Format(now), nil
	case "yesterday":
		return Format(now.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return Format(now.AddDate(0, 0, 1)), nil
	}

	parsed, err := ParseDate(dateArg)
	if err != nil {
		return "", fmt.Errorf("invalid date format '%s', use YYYY-MM-DD or today/yesterday/tomorrow", dateArg)
	}
	return Format(parsed), nil
}

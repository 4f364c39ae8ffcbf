package ui

import (
	"fmt"
	"strings"
)

// Status symbols. Outcomes are marked by symbol, not by color.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
)

// Success prefixes msg with a check mark.
func Success(msg string) string { return SymbolSuccess + " " + msg }

// Successf is Success with formatting.
func Successf(format string, args ...interface{}) string {
	return Success(fmt.Sprintf(format, args...))
}

// Error prefixes msg with a cross.
func Error(msg string) string { return SymbolError + " " + msg }

// Warning prefixes msg with a warning sign.
func Warning(msg string) string { return SymbolWarning + " " + msg }

// Warningf is Warning with formatting.
func Warningf(format string, args ...interface{}) string {
	return Warning(fmt.Sprintf(format, args...))
}

// Check is the spinner's completion line.
func Check(msg string) string { return Success(msg) }

// Header renders a section heading.
func Header(msg string) string { return Bold.Render(msg) }

// Label renders an item label in the accent color.
func Label(label string) string { return Accent.Render(label) }

// RemoteID renders a board item id as "#id", or "" when there is none.
func RemoteID(id string) string {
	if id == "" {
		return ""
	}
	return Muted.Render("#" + id)
}

// Hint renders secondary text.
func Hint(msg string) string { return Muted.Render(msg) }

// Count renders "(1 item)" / "(3 items)".
func Count(n int, singular, plural string) string {
	word := plural
	if n == 1 {
		word = singular
	}
	return fmt.Sprintf("(%d %s)", n, word)
}

// FailureWarningCounts renders e.g. "(2 failures, 1 warning)", leaving out
// a zero failure count.
func FailureWarningCounts(failures, warnings int) string {
	var parts []string
	if failures > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", failures, pluralize("failure", failures)))
	}
	if warnings > 0 || failures == 0 {
		parts = append(parts, fmt.Sprintf("%d %s", warnings, pluralize("warning", warnings)))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func pluralize(singular string, count int) string {
	if count == 1 {
		return singular
	}
	return singular + "s"
}

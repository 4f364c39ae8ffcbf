// Package slugs derives roadmap labels from free-text titles.
//
// Labels are short, lowercase, dash-separated identifiers built on
// gosimple/slug, so "User Auth (v2)" becomes "user-auth-v2".
package slugs

import (
	"fmt"
	"strings"

	goslug "github.com/gosimple/slug"
)

// maxLabelLength keeps generated labels short enough to type.
const maxLabelLength = 40

// Label converts a title into a label.
func Label(title string) string {
	label := goslug.Make(strings.TrimSpace(title))
	if len(label) > maxLabelLength {
		label = strings.TrimRight(label[:maxLabelLength], "-")
	}
	return label
}

// UniqueLabel returns Label(title), suffixed with -2, -3, ... until taken
// reports false.
func UniqueLabel(title string, taken func(string) bool) string {
	base := Label(title)
	if base == "" {
		base = "item"
	}
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !taken(candidate) {
			return candidate
		}
	}
}

// IsValidLabel reports whether s is already in canonical label form.
func IsValidLabel(s string) bool {
	return s != "" && goslug.IsSlug(s)
}

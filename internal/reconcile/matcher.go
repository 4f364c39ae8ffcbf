package reconcile

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/roadmap/internal/board"
	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// MatchKind says which natural key produced a match.
type MatchKind string

const (
	MatchNone  MatchKind = ""
	MatchTitle MatchKind = "title"
	MatchLabel MatchKind = "label"
)

// AmbiguousMatchWarning reports several board items sharing a local item's
// natural key. The first one in board order is used; none are merged or
// deleted.
type AmbiguousMatchWarning struct {
	Label string
	Key   MatchKind
	Value string
	IDs   []string
}

func (w *AmbiguousMatchWarning) Error() string {
	return fmt.Sprintf("%d board items share %s %q (ids %s); using %s",
		len(w.IDs), w.Key, w.Value, strings.Join(w.IDs, ", "), w.IDs[0])
}

// MatchResult is the outcome of matching one local item.
type MatchResult struct {
	Remote board.RemoteItem
	By     MatchKind
	// Candidates holds every board item sharing the matched key, the
	// chosen one first.
	Candidates []board.RemoteItem
	Warning    *AmbiguousMatchWarning
}

// Found reports whether a board item was matched.
func (r MatchResult) Found() bool {
	return r.By != MatchNone
}

// Matcher resolves local items against one board snapshot. Labels encoded
// in remote bodies are decoded once per snapshot.
type Matcher struct {
	remote []board.RemoteItem
	labels []string
}

// NewMatcher prepares a matcher for the given snapshot, kept in board order.
func NewMatcher(remote []board.RemoteItem) *Matcher {
	m := &Matcher{remote: remote, labels: make([]string, len(remote))}
	for i, r := range remote {
		if decoded, ok := DecodeBody(r.Body); ok {
			m.labels[i] = decoded.Label()
		}
	}
	return m
}

// Match finds the board item for local. Exact, case-sensitive title
// equality wins; when no title matches, a board item whose field block
// carries the same label is used, which keeps the link after a local rename.
func (m *Matcher) Match(local roadmap.Item) MatchResult {
	var byTitle []board.RemoteItem
	for _, r := range m.remote {
		if r.Title == local.Title {
			byTitle = append(byTitle, r)
		}
	}
	if len(byTitle) > 0 {
		return result(local, MatchTitle, local.Title, byTitle)
	}

	if local.Label == "" {
		return MatchResult{}
	}
	var byLabel []board.RemoteItem
	for i, r := range m.remote {
		if m.labels[i] == local.Label {
			byLabel = append(byLabel, r)
		}
	}
	if len(byLabel) > 0 {
		return result(local, MatchLabel, local.Label, byLabel)
	}
	return MatchResult{}
}

// Match is a one-off convenience around NewMatcher(remote).Match(local).
func Match(local roadmap.Item, remote []board.RemoteItem) MatchResult {
	return NewMatcher(remote).Match(local)
}

func result(local roadmap.Item, by MatchKind, value string, candidates []board.RemoteItem) MatchResult {
	res := MatchResult{Remote: candidates[0], By: by, Candidates: candidates}
	if len(candidates) > 1 {
		ids := make([]string, len(candidates))
		for i, c := range candidates {
			ids[i] = c.ID
		}
		res.Warning = &AmbiguousMatchWarning{Label: local.Label, Key: by, Value: value, IDs: ids}
	}
	return res
}

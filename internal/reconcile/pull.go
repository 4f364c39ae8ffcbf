package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aidanlsb/roadmap/internal/board"
	"github.com/aidanlsb/roadmap/internal/roadmap"
	"github.com/aidanlsb/roadmap/internal/slugs"
	"github.com/aidanlsb/roadmap/internal/status"
)

// StatusChange is one status imported from the board.
type StatusChange struct {
	Label    string         `json:"label"`
	RemoteID string         `json:"remote_id"`
	From     roadmap.Status `json:"from"`
	To       roadmap.Status `json:"to"`
}

// PullResult is the outcome of comparing the store against the board.
// Items is a copy of the input with imported statuses applied; the input
// slice is never modified.
type PullResult struct {
	Items         []roadmap.Item     `json:"-"`
	Updated       int                `json:"updated"`
	Changes       []StatusChange     `json:"changes"`
	NewFromRemote []board.RemoteItem `json:"new_from_remote"`
	OrphanLocal   []roadmap.Item     `json:"orphan_local"`
	Warnings      []Warning          `json:"warnings,omitempty"`
}

// Pull imports board columns into local statuses. Only status is ever
// changed; a column outside the status table leaves the item untouched
// and raises a warning. Board items nobody matched come back as
// NewFromRemote and local items with no board entry as OrphanLocal; the
// caller decides what to do with both.
func Pull(items []roadmap.Item, remote []board.RemoteItem, mapper StatusMapper) PullResult {
	if mapper == nil {
		mapper = status.Mapper{}
	}

	matcher := NewMatcher(remote)
	seen := make(map[string]bool, len(remote))
	claimed := make(map[string]string)

	res := PullResult{Items: make([]roadmap.Item, len(items))}
	copy(res.Items, items)

	for i, item := range items {
		m := matcher.Match(item)
		if !m.Found() {
			res.OrphanLocal = append(res.OrphanLocal, item)
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnOrphanLocal,
				Label:   item.Label,
				Message: fmt.Sprintf("%q has no board item; run push to create it", item.Title),
			})
			continue
		}
		for _, c := range m.Candidates {
			seen[c.ID] = true
		}
		if m.Warning != nil {
			res.Warnings = append(res.Warnings, ambiguityWarning(m.Warning))
		}

		if owner, taken := claimed[m.Remote.ID]; taken {
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnAlreadyMatched,
				Label:   item.Label,
				Message: fmt.Sprintf("board item %s already matched by %q; status left unchanged", m.Remote.ID, owner),
			})
			continue
		}
		claimed[m.Remote.ID] = item.Label

		remoteStatus, err := mapper.ToLocal(m.Remote.Column)
		if err != nil {
			var unknown *status.UnknownColumnError
			msg := err.Error()
			if errors.As(err, &unknown) {
				msg = fmt.Sprintf("board column %q is not mapped; status left as %s", unknown.Column, item.Status)
			}
			res.Warnings = append(res.Warnings, Warning{Code: WarnUnknownColumn, Label: item.Label, Message: msg})
			continue
		}

		if remoteStatus != item.Status {
			res.Items[i].Status = remoteStatus
			res.Changes = append(res.Changes, StatusChange{
				Label:    item.Label,
				RemoteID: m.Remote.ID,
				From:     item.Status,
				To:       remoteStatus,
			})
		}
	}

	for _, r := range remote {
		if !seen[r.ID] {
			res.NewFromRemote = append(res.NewFromRemote, r)
		}
	}

	res.Updated = len(res.Changes)
	return res
}

// ImportRemote converts an accepted board item into a local item. The label
// comes from the item's field block when it is free, otherwise from the
// title. The description is the body's free text, or the title when the
// body has none. Kind, layer and priority take the import defaults and the
// start date is today.
func ImportRemote(r board.RemoteItem, taken func(string) bool, mapper StatusMapper, today string) roadmap.Item {
	if mapper == nil {
		mapper = status.Mapper{}
	}

	decoded, _ := DecodeBody(r.Body)

	label := decoded.Label()
	if label == "" || taken(label) {
		label = slugs.UniqueLabel(r.Title, taken)
	}

	description := decoded.Description
	if strings.TrimSpace(description) == "" {
		description = r.Title
	}

	st, err := mapper.ToLocal(r.Column)
	if err != nil {
		st = roadmap.StatusPending
	}

	return roadmap.NewImportedItem(strings.TrimSpace(r.Title), label, description, st, today)
}

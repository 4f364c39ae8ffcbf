package history

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/roadmap/internal/reconcile"
	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// Imported pairs a local item created by pull with its board item.
type Imported struct {
	Item     roadmap.Item
	RemoteID string
}

// FromPush converts a push report into a run. Timing and location fields
// are left for the caller.
func FromPush(report reconcile.PushReport) Run {
	run := Run{
		Direction: DirectionPush,
		DryRun:    report.DryRun,
		Created:   report.Created,
		Updated:   report.Updated,
		Unchanged: report.Unchanged,
		Failed:    len(report.Failed),
		Warnings:  len(report.Warnings),
	}

	reasons := make(map[string]string, len(report.Failed))
	for _, f := range report.Failed {
		reasons[f.Label] = f.Reason
	}

	for _, r := range report.Results {
		item := RunItem{
			Label:    r.Label,
			Action:   string(r.Action),
			RemoteID: r.RemoteID,
			Failed:   r.Failed,
		}
		switch {
		case r.Failed:
			item.Detail = reasons[r.Label]
		case len(r.Fields) > 0:
			item.Detail = strings.Join(r.Fields, ",")
		}
		run.Items = append(run.Items, item)
	}
	return run
}

// FromPull converts a pull result, plus the items the operator accepted
// from the board, into a run.
func FromPull(res reconcile.PullResult, imported []Imported, dryRun bool) Run {
	run := Run{
		Direction: DirectionPull,
		DryRun:    dryRun,
		Updated:   res.Updated,
		Unchanged: len(res.Items) - res.Updated - len(res.OrphanLocal),
		Imported:  len(imported),
		Warnings:  len(res.Warnings),
	}
	if run.Unchanged < 0 {
		run.Unchanged = 0
	}

	for _, c := range res.Changes {
		run.Items = append(run.Items, RunItem{
			Label:    c.Label,
			Action:   "status",
			RemoteID: c.RemoteID,
			Detail:   fmt.Sprintf("%s -> %s", c.From, c.To),
		})
	}
	for _, im := range imported {
		run.Items = append(run.Items, RunItem{
			Label:    im.Item.Label,
			Action:   "import",
			RemoteID: im.RemoteID,
			Detail:   string(im.Item.Status),
		})
	}
	for _, o := range res.OrphanLocal {
		run.Items = append(run.Items, RunItem{Label: o.Label, Action: "orphan"})
	}
	return run
}

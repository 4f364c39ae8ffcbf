package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aidanlsb/roadmap/internal/board"
	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// ActionKind is what push does for one local item.
type ActionKind string

const (
	ActionCreate    ActionKind = "create"
	ActionUpdate    ActionKind = "update"
	ActionUnchanged ActionKind = "unchanged"
	// ActionConflict marks an item that cannot be pushed, see Action.Err.
	ActionConflict ActionKind = "conflict"
)

// Action is the planned change for one local item.
type Action struct {
	Kind ActionKind
	Item roadmap.Item

	// RemoteID is the matched board item (update, unchanged, conflict).
	RemoteID string
	// Body and Column are what a created item should end up with.
	Body   string
	Column string
	// Fields holds only the differing fields for an update.
	Fields board.Fields

	Err error
}

// PushPlan is the full set of actions for one push, in store order.
type PushPlan struct {
	Actions  []Action
	Warnings []Warning
}

// ActionResult is the outcome of one applied action.
type ActionResult struct {
	Label    string     `json:"label"`
	Action   ActionKind `json:"action"`
	RemoteID string     `json:"remote_id,omitempty"`
	Fields   []string   `json:"fields,omitempty"`
	Failed   bool       `json:"failed,omitempty"`
}

// PushReport summarizes a push. Every item lands in exactly one of
// Created, Updated, Unchanged or Failed.
type PushReport struct {
	Created   int            `json:"created"`
	Updated   int            `json:"updated"`
	Unchanged int            `json:"unchanged"`
	Failed    []ItemFailure  `json:"failed"`
	Warnings  []Warning      `json:"warnings,omitempty"`
	Results   []ActionResult `json:"results"`
	DryRun    bool           `json:"dry_run,omitempty"`
}

// HasFailures reports whether any item failed.
func (r PushReport) HasFailures() bool {
	return len(r.Failed) > 0
}

// PlanPush decides, without touching the board, what push must do for
// each item against the remote snapshot. An item whose board entry has
// already been matched by an earlier item is a conflict, never a second
// write to the same entry.
func PlanPush(items []roadmap.Item, remote []board.RemoteItem, mapper StatusMapper) PushPlan {
	matcher := NewMatcher(remote)
	claimed := make(map[string]string)
	plan := PushPlan{Actions: make([]Action, 0, len(items))}

	for _, item := range items {
		res := matcher.Match(item)
		if res.Warning != nil {
			plan.Warnings = append(plan.Warnings, ambiguityWarning(res.Warning))
		}

		column := mapper.ToRemote(item.Status)
		body := EncodeBody(item)

		if !res.Found() {
			plan.Actions = append(plan.Actions, Action{
				Kind:   ActionCreate,
				Item:   item,
				Body:   body,
				Column: column,
			})
			continue
		}

		if owner, taken := claimed[res.Remote.ID]; taken {
			plan.Actions = append(plan.Actions, Action{
				Kind:     ActionConflict,
				Item:     item,
				RemoteID: res.Remote.ID,
				Err:      fmt.Errorf("board item %s already matched by %q", res.Remote.ID, owner),
			})
			continue
		}
		claimed[res.Remote.ID] = item.Label

		fields := diffFields(item, res, body, column)
		if fields.Empty() {
			plan.Actions = append(plan.Actions, Action{Kind: ActionUnchanged, Item: item, RemoteID: res.Remote.ID})
			continue
		}
		plan.Actions = append(plan.Actions, Action{
			Kind:     ActionUpdate,
			Item:     item,
			RemoteID: res.Remote.ID,
			Fields:   fields,
		})
	}

	return plan
}

func diffFields(item roadmap.Item, res MatchResult, body, column string) board.Fields {
	var f board.Fields
	if res.By == MatchLabel && res.Remote.Title != item.Title {
		f.Title = board.Str(item.Title)
	}
	if !sameBody(res.Remote.Body, body) {
		f.Body = board.Str(body)
	}
	if column != "" && res.Remote.Column != column {
		f.Column = board.Str(column)
	}
	return f
}

// Preview reports what applying the plan would do, without applying it.
func (p PushPlan) Preview() PushReport {
	report := PushReport{DryRun: true, Warnings: p.Warnings}
	for _, a := range p.Actions {
		report.record(a, outcome{remoteID: a.RemoteID, err: a.Err})
	}
	return report
}

// Pusher applies push plans to a board.
type Pusher struct {
	Client      board.Client
	Concurrency int
	Logger      *slog.Logger
}

type outcome struct {
	remoteID string
	err      error
	reason   string
}

type indexedAction struct {
	idx    int
	action Action
}

type indexedOutcome struct {
	idx int
	outcome
}

// Apply executes the plan's creates and updates through a bounded pool of
// workers. Outcomes fan in to this goroutine, which alone builds the
// report, so the report lists items in store order regardless of which
// request finished first. A failed item never stops the others.
func (p *Pusher) Apply(ctx context.Context, plan PushPlan) PushReport {
	opts := Options{Concurrency: p.Concurrency, Logger: p.Logger}
	logger := opts.logger()
	workers := opts.concurrency()

	outcomes := make([]outcome, len(plan.Actions))
	var pending []indexedAction
	for i, a := range plan.Actions {
		switch a.Kind {
		case ActionCreate, ActionUpdate:
			pending = append(pending, indexedAction{idx: i, action: a})
		default:
			outcomes[i] = outcome{remoteID: a.RemoteID, err: a.Err}
		}
	}
	if workers > len(pending) {
		workers = len(pending)
	}

	workCh := make(chan indexedAction)
	doneCh := make(chan indexedOutcome, len(pending))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range workCh {
				doneCh <- indexedOutcome{idx: job.idx, outcome: p.execute(ctx, logger, job.action)}
			}
		}()
	}

	go func() {
		for _, job := range pending {
			workCh <- job
		}
		close(workCh)
		wg.Wait()
		close(doneCh)
	}()

	for res := range doneCh {
		outcomes[res.idx] = res.outcome
	}

	report := PushReport{Warnings: plan.Warnings}
	for i, a := range plan.Actions {
		report.record(a, outcomes[i])
	}
	return report
}

func (p *Pusher) execute(ctx context.Context, logger *slog.Logger, a Action) outcome {
	switch a.Kind {
	case ActionCreate:
		created, err := p.Client.Create(ctx, a.Item.Title, a.Body)
		if err != nil {
			logger.Warn("create failed", "label", a.Item.Label, "err", err)
			return outcome{err: err}
		}
		logger.Debug("created board item", "label", a.Item.Label, "id", created.ID)

		if a.Column != "" && created.Column != a.Column {
			if err := p.Client.Update(ctx, created.ID, board.Fields{Column: board.Str(a.Column)}); err != nil {
				logger.Warn("set column after create failed", "label", a.Item.Label, "id", created.ID, "err", err)
				return outcome{remoteID: created.ID, err: err, reason: ReasonColumnNotSet}
			}
		}
		return outcome{remoteID: created.ID}

	case ActionUpdate:
		if err := p.Client.Update(ctx, a.RemoteID, a.Fields); err != nil {
			logger.Warn("update failed", "label", a.Item.Label, "id", a.RemoteID, "err", err)
			return outcome{remoteID: a.RemoteID, err: err}
		}
		logger.Debug("updated board item", "label", a.Item.Label, "id", a.RemoteID, "fields", a.Fields.String())
		return outcome{remoteID: a.RemoteID}
	}
	return outcome{remoteID: a.RemoteID, err: a.Err}
}

func (r *PushReport) record(a Action, o outcome) {
	result := ActionResult{Label: a.Item.Label, Action: a.Kind, RemoteID: o.remoteID}
	if a.Kind == ActionUpdate {
		result.Fields = a.Fields.Names()
	}

	if o.err != nil {
		result.Failed = true
		reason := o.reason
		if reason == "" {
			if a.Kind == ActionConflict {
				reason = ReasonAlreadyMatched
			} else {
				reason = failureReason(o.err)
			}
		}
		r.Failed = append(r.Failed, ItemFailure{
			Label:    a.Item.Label,
			Title:    a.Item.Title,
			Op:       string(a.Kind),
			RemoteID: o.remoteID,
			Reason:   reason,
			Err:      o.err,
		})
		r.Results = append(r.Results, result)
		return
	}

	switch a.Kind {
	case ActionCreate:
		r.Created++
	case ActionUpdate:
		r.Updated++
	case ActionUnchanged:
		r.Unchanged++
	}
	r.Results = append(r.Results, result)
}

// Push lists the board, plans and, unless opts.DryRun is set, applies the
// plan. Only a failure to list the board is returned as an error; item
// failures are in the report.
func Push(ctx context.Context, client board.Client, items []roadmap.Item, opts Options) (PushReport, error) {
	remote, err := client.List(ctx)
	if err != nil {
		return PushReport{}, fmt.Errorf("list board: %w", err)
	}

	plan := PlanPush(items, remote, opts.mapper())
	if opts.DryRun {
		return plan.Preview(), nil
	}

	p := &Pusher{Client: client, Concurrency: opts.Concurrency, Logger: opts.Logger}
	return p.Apply(ctx, plan), nil
}

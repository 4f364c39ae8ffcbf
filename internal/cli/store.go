package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/aidanlsb/roadmap/internal/history"
	"github.com/aidanlsb/roadmap/internal/logging"
	"github.com/aidanlsb/roadmap/internal/reconcile"
	"github.com/aidanlsb/roadmap/internal/roadmap"
)

// loadRoadmap reads and validates the store. Any problem is fatal and is
// returned already classified, so callers can return it as is.
func loadRoadmap() (*roadmap.Roadmap, error) {
	path := getStorePath()
	r, err := roadmap.Load(path)
	if err == nil {
		err = roadmap.Validate(r.Items)
	}
	if err != nil {
		logging.Logger.Warn("store rejected", "path", path, "err", err)
		code, suggestion := storeErrorCode(err)
		return nil, handleErrorWithDetails(code, err, suggestion, storeErrorDetails(err))
	}
	return r, nil
}

func saveRoadmap(r *roadmap.Roadmap) error {
	if err := roadmap.Save(getStorePath(), r); err != nil {
		code, suggestion := storeErrorCode(err)
		return handleError(code, err, suggestion)
	}
	return nil
}

// storeErrorDetails lists every individual problem for JSON consumers.
func storeErrorDetails(err error) interface{} {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var problems []string
	for _, e := range joined.Unwrap() {
		problems = append(problems, e.Error())
	}
	return map[string]interface{}{"problems": problems}
}

// sortByPriority orders items P0 first, keeping store order within a priority.
func sortByPriority(items []roadmap.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority.Before(items[j].Priority)
	})
}

// openJournal opens the sync history for the current store. It returns
// nil when history is disabled in the config.
func openJournal() (*history.Journal, error) {
	if !getConfig().HistoryEnabled() {
		return nil, nil
	}
	return history.Open(history.PathFor(getStorePath()))
}

// openJournalIfExists opens the journal only if a previous sync created it.
func openJournalIfExists() (*history.Journal, error) {
	path := history.PathFor(getStorePath())
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return history.Open(path)
}

// recordRun journals a sync run. Failures never fail the command; they
// come back as a warning.
func recordRun(ctx context.Context, run history.Run) []Warning {
	j, err := openJournal()
	if err == nil && j != nil {
		defer j.Close()
		_, err = j.Record(ctx, run)
	}
	if err != nil {
		logging.Logger.Warn("record history", "err", err)
		return []Warning{{Code: WarnHistoryFailed, Message: "could not record sync history: " + err.Error()}}
	}
	return nil
}

func syncWarnings(ws []reconcile.Warning) []Warning {
	out := make([]Warning, 0, len(ws))
	for _, w := range ws {
		out = append(out, Warning{Code: w.Code, Label: w.Label, Message: w.Message})
	}
	return out
}

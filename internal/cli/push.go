package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/roadmap/internal/history"
	"github.com/aidanlsb/roadmap/internal/logging"
	"github.com/aidanlsb/roadmap/internal/reconcile"
	"github.com/aidanlsb/roadmap/internal/ui"
)

var (
	pushDryRun      bool
	pushConcurrency int
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Create or update board items from the roadmap",
	Long: `Push every roadmap item to the board.

Items are matched to board items by exact title, then by the label stored
in the board item's body. Unmatched items are created; matched items are
updated only in the fields that differ. Running push twice in a row makes
no changes the second time.

A failure on one item does not stop the others. The command exits with
status 2 when any item failed.

Examples:
  roadmap push
  roadmap push --dry-run
  roadmap push --concurrency 8 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRoadmap()
		if err != nil {
			return err
		}
		client, backend, err := openBoard()
		if err != nil {
			return err
		}

		concurrency := pushConcurrency
		if concurrency <= 0 {
			concurrency = getConfig().Sync.Concurrency
		}
		logger := logging.Logger.With("cmd", "push", "board", backend)

		started := time.Now()
		spinner := newSyncSpinner(fmt.Sprintf("Pushing %d items", len(r.Items)))
		spinner.Start()
		report, err := reconcile.Push(cmd.Context(), client, r.Items, reconcile.Options{
			Concurrency: concurrency,
			DryRun:      pushDryRun,
			Logger:      logger,
		})
		spinner.Stop()
		if err != nil {
			logger.Error("push aborted", "err", err)
			code, suggestion := boardErrorCode(err)
			return handleError(code, err, suggestion)
		}
		elapsed := time.Since(started)
		logger.Info("push finished", "created", report.Created, "updated", report.Updated,
			"unchanged", report.Unchanged, "failed", len(report.Failed), "dry_run", report.DryRun)

		run := history.FromPush(report)
		run.StartedAt = started
		run.Duration = elapsed
		run.Store = getStorePath()
		run.Board = backend

		warnings := syncWarnings(report.Warnings)
		warnings = append(warnings, recordRun(cmd.Context(), run)...)

		var failErr error
		if report.HasFailures() {
			failErr = &ExitError{
				Code:   2,
				Err:    fmt.Errorf("%d of %d items failed to sync", len(report.Failed), len(r.Items)),
				Silent: true,
			}
		}

		if isJSONOutput() {
			resp := Response{
				OK:       !report.HasFailures(),
				Data:     report,
				Warnings: warnings,
				Meta:     &Meta{Count: len(r.Items), DurationMs: elapsed.Milliseconds(), DryRun: report.DryRun},
			}
			if failErr != nil {
				resp.Error = &ErrorInfo{
					Code:       ErrSyncPartial,
					Message:    failErr.Error(),
					Suggestion: "Fix the reported items and run push again; finished items are not redone",
				}
			}
			outputJSON(resp)
			return failErr
		}

		printPushReport(report, warnings)
		return failErr
	},
}

func printPushReport(report reconcile.PushReport, warnings []Warning) {
	verb := "Pushed"
	if report.DryRun {
		verb = "Would push"
	}
	summary := fmt.Sprintf("%s: %d created, %d updated, %d unchanged", verb, report.Created, report.Updated, report.Unchanged)
	if report.HasFailures() || len(warnings) > 0 {
		summary += " " + ui.FailureWarningCounts(len(report.Failed), len(warnings))
	}
	if report.HasFailures() {
		fmt.Println(ui.Error(summary))
	} else {
		fmt.Println(ui.Success(summary))
	}

	tbl := ui.NewTable(ui.NewDisplayContext(), ui.SyncLayout)
	for _, res := range report.Results {
		if res.Action == reconcile.ActionUnchanged || res.Failed {
			continue
		}
		tbl.AddRow(res.Label, string(res.Action), "#"+res.RemoteID, strings.Join(res.Fields, ", "))
	}
	if tbl.Len() > 0 {
		fmt.Println(indent(tbl.Render(), "  "))
	}

	for _, f := range report.Failed {
		line := fmt.Sprintf("%s %s: %s", ui.Label(f.Label), f.Op, f.Reason)
		if f.Err != nil && f.Err.Error() != f.Reason {
			line += ui.Hint(" (" + f.Err.Error() + ")")
		}
		fmt.Println(ui.Error(line))
	}
	printWarnings(warnings)
}

func printWarnings(warnings []Warning) {
	for _, w := range warnings {
		fmt.Println(ui.Warning(w.Message))
	}
}

func newSyncSpinner(message string) *ui.Spinner {
	if isJSONOutput() {
		return ui.NewSpinnerTo(nil, false, message)
	}
	return ui.NewSpinner(message)
}

func init() {
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Show what would change without writing to the board")
	pushCmd.Flags().IntVar(&pushConcurrency, "concurrency", 0, "Parallel board writes (default from config)")
	rootCmd.AddCommand(pushCmd)
}

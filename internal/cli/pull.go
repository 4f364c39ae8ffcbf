package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/roadmap/internal/board"
	"github.com/aidanlsb/roadmap/internal/dates"
	"github.com/aidanlsb/roadmap/internal/history"
	"github.com/aidanlsb/roadmap/internal/logging"
	"github.com/aidanlsb/roadmap/internal/reconcile"
	"github.com/aidanlsb/roadmap/internal/roadmap"
	"github.com/aidanlsb/roadmap/internal/ui"
)

var (
	pullDryRun    bool
	pullAcceptNew bool
	pullRejectNew bool
)

type pullResult struct {
	reconcile.PullResult
	Imported []importedItem `json:"imported"`
	Saved    bool           `json:"saved"`
}

type importedItem struct {
	Label    string `json:"label"`
	Title    string `json:"title"`
	RemoteID string `json:"remote_id"`
	Status   string `json:"status"`
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Bring board columns back into the roadmap",
	Long: `Import statuses from the board into the roadmap.

Only status is taken from the board; titles, descriptions and every other
field stay as they are in the roadmap. Board items with no roadmap item can
be imported: pass --accept-new or --reject-new, or answer the prompt when
running in a terminal. Without either flag and without a terminal they are
skipped.

Examples:
  roadmap pull
  roadmap pull --dry-run
  roadmap pull --accept-new --json`,
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
		logger := logging.Logger.With("cmd", "pull", "board", backend)

		started := time.Now()
		spinner := newSyncSpinner("Reading board")
		spinner.Start()
		remote, err := client.List(cmd.Context())
		spinner.Stop()
		if err != nil {
			logger.Error("pull aborted", "err", err)
			code, suggestion := boardErrorCode(err)
			return handleError(code, err, suggestion)
		}

		res := reconcile.Pull(r.Items, remote, nil)
		warnings := syncWarnings(res.Warnings)

		accepted, skipped := chooseNewItems(res.NewFromRemote)
		if skipped > 0 {
			warnings = append(warnings, Warning{
				Code:    WarnNewSkipped,
				Message: fmt.Sprintf("%d board %s not imported; rerun with --accept-new to import them", skipped, plural(skipped, "item", "items")),
			})
		}

		updated := &roadmap.Roadmap{Project: r.Project, Items: res.Items}
		today := dates.Today()
		var imported []history.Imported
		for _, ri := range accepted {
			item := reconcile.ImportRemote(ri, updated.HasLabel, nil, today)
			if strings.TrimSpace(item.Title) == "" {
				warnings = append(warnings, Warning{
					Code:    WarnImportSkipped,
					Message: fmt.Sprintf("board item %s has no title and was not imported", ri.ID),
				})
				continue
			}
			if err := updated.Add(item); err != nil {
				return handleError(ErrInternal, err, "")
			}
			imported = append(imported, history.Imported{Item: item, RemoteID: ri.ID})
		}

		saved := false
		if !pullDryRun && (res.Updated > 0 || len(imported) > 0) {
			if err := saveRoadmap(updated); err != nil {
				return err
			}
			saved = true
		}
		elapsed := time.Since(started)
		logger.Info("pull finished", "updated", res.Updated, "imported", len(imported),
			"new", len(res.NewFromRemote), "orphans", len(res.OrphanLocal), "dry_run", pullDryRun)

		run := history.FromPull(res, imported, pullDryRun)
		run.StartedAt = started
		run.Duration = elapsed
		run.Store = getStorePath()
		run.Board = backend
		warnings = append(warnings, recordRun(cmd.Context(), run)...)

		out := pullResult{PullResult: res, Saved: saved, Imported: make([]importedItem, 0, len(imported))}
		for _, im := range imported {
			out.Imported = append(out.Imported, importedItem{
				Label:    im.Item.Label,
				Title:    im.Item.Title,
				RemoteID: im.RemoteID,
				Status:   string(im.Item.Status),
			})
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(out, warnings, &Meta{
				Count:      len(remote),
				DurationMs: elapsed.Milliseconds(),
				DryRun:     pullDryRun,
			})
			return nil
		}

		printPullResult(out, warnings)
		return nil
	},
}

// chooseNewItems decides which unmatched board items to import. It returns
// the accepted items and how many were left out.
func chooseNewItems(items []board.RemoteItem) (accepted []board.RemoteItem, skipped int) {
	switch {
	case len(items) == 0:
		return nil, 0
	case pullAcceptNew:
		return items, 0
	case pullRejectNew:
		return nil, 0
	case !shouldPromptForConfirm():
		return nil, len(items)
	}

	fmt.Println(ui.Header(fmt.Sprintf("%d board %s not in the roadmap", len(items), plural(len(items), "item is", "items are"))))
	for _, ri := range items {
		prompt := fmt.Sprintf("  Import %s %q", ui.RemoteID(ri.ID), ri.Title)
		if ri.Column != "" {
			prompt += ui.Hint(" [" + ri.Column + "]")
		}
		if promptForConfirm(prompt + "?") {
			accepted = append(accepted, ri)
		}
	}
	return accepted, 0
}

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}

func printPullResult(out pullResult, warnings []Warning) {
	verb := "Pulled"
	if pullDryRun {
		verb = "Would pull"
	}
	summary := fmt.Sprintf("%s: %d %s changed, %d imported", verb, out.Updated, plural(out.Updated, "status", "statuses"), len(out.Imported))
	if len(warnings) > 0 {
		summary += " " + ui.FailureWarningCounts(0, len(warnings))
	}
	fmt.Println(ui.Success(summary))

	tbl := ui.NewTable(ui.NewDisplayContext(), ui.SyncLayout)
	for _, c := range out.Changes {
		tbl.AddRow(c.Label, "status", "#"+c.RemoteID, fmt.Sprintf("%s -> %s", c.From, c.To))
	}
	for _, im := range out.Imported {
		tbl.AddRow(im.Label, "import", "#"+im.RemoteID, im.Status)
	}
	if tbl.Len() > 0 {
		fmt.Println(indent(tbl.Render(), "  "))
	}
	printWarnings(warnings)
	if pullDryRun && (out.Updated > 0 || len(out.Imported) > 0) {
		fmt.Println(ui.Hint("Dry run: the roadmap file was not changed."))
	}
}

func init() {
	pullCmd.Flags().BoolVar(&pullDryRun, "dry-run", false, "Show what would change without writing the roadmap")
	pullCmd.Flags().BoolVar(&pullAcceptNew, "accept-new", false, "Import every board item that has no roadmap item")
	pullCmd.Flags().BoolVar(&pullRejectNew, "reject-new", false, "Never import board items that have no roadmap item")
	pullCmd.MarkFlagsMutuallyExclusive("accept-new", "reject-new")
	rootCmd.AddCommand(pullCmd)
}

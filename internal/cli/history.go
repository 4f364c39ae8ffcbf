package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/roadmap/internal/history"
	"github.com/aidanlsb/roadmap/internal/ui"
)

var (
	historyLimit int
	historyItems bool
)

var historyColumns = []ui.ColumnDef{
	{Name: "id", MinWidth: 4, MaxWidth: 6, Align: ui.AlignRight, Style: ui.Muted},
	{Name: "when", MinWidth: 16, MaxWidth: 16},
	{Name: "direction", MinWidth: 4, MaxWidth: 4, Style: ui.Bold},
	{Name: "board", MinWidth: 6, MaxWidth: 10, Style: ui.Muted},
	{Name: "summary", WidthRatio: 1, MinWidth: 20, MaxWidth: 80},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent push and pull runs",
	Long: `Show the sync journal kept next to the roadmap file, newest first.

Examples:
  roadmap history
  roadmap history --limit 5 --items
  roadmap history --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return handleErrorMsg(ErrInvalidInput, "--limit must be positive", "")
		}

		j, err := openJournalIfExists()
		if err != nil {
			return handleError(ErrHistory, err, "")
		}
		var runs []history.Run
		if j != nil {
			defer j.Close()
			runs, err = j.Recent(cmd.Context(), historyLimit)
			if err != nil {
				return handleError(ErrHistory, err, "")
			}
		}
		if runs == nil {
			runs = []history.Run{}
		}

		if isJSONOutput() {
			outputSuccess(runs, &Meta{Count: len(runs)})
			return nil
		}

		if len(runs) == 0 {
			fmt.Println(ui.Hint("No sync runs recorded yet."))
			return nil
		}

		tbl := ui.NewTable(ui.NewDisplayContext(), historyColumns)
		for _, run := range runs {
			tbl.AddRow(
				strconv.FormatInt(run.ID, 10),
				run.StartedAt.Local().Format("2006-01-02 15:04"),
				run.Direction,
				run.Board,
				runSummary(run),
			)
		}
		fmt.Println(tbl.Render())

		if historyItems {
			for _, run := range runs {
				if len(run.Items) == 0 {
					continue
				}
				fmt.Println()
				fmt.Println(ui.Header(fmt.Sprintf("Run %d", run.ID)))
				for _, item := range run.Items {
					line := fmt.Sprintf("  %s %s %s", ui.Label(item.Label), item.Action, ui.RemoteID(item.RemoteID))
					if item.Detail != "" {
						line += " " + ui.Hint(item.Detail)
					}
					if item.Failed {
						line = ui.Error(line)
					}
					fmt.Println(line)
				}
			}
		}
		return nil
	},
}

func runSummary(run history.Run) string {
	var s string
	switch run.Direction {
	case history.DirectionPush:
		s = fmt.Sprintf("%d created, %d updated, %d unchanged", run.Created, run.Updated, run.Unchanged)
	default:
		s = fmt.Sprintf("%d updated, %d imported", run.Updated, run.Imported)
	}
	if run.Failed > 0 || run.Warnings > 0 {
		s += " " + ui.FailureWarningCounts(run.Failed, run.Warnings)
	}
	if run.DryRun {
		s += " (dry run)"
	}
	return s
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
	historyCmd.Flags().BoolVar(&historyItems, "items", false, "Also list the items touched by each run")
	rootCmd.AddCommand(historyCmd)
}

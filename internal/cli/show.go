package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/roadmap/internal/logging"
	"github.com/aidanlsb/roadmap/internal/roadmap"
	"github.com/aidanlsb/roadmap/internal/status"
	"github.com/aidanlsb/roadmap/internal/ui"
)

type showResult struct {
	roadmap.Item
	Column   string `json:"column"`
	RemoteID string `json:"last_remote_id,omitempty"`
}

var showCmd = &cobra.Command{
	Use:   "show <label>",
	Short: "Show one roadmap item",
	Long: `Show one roadmap item with its description rendered as markdown.

The board item id shown is the one recorded by the most recent push or
pull, if sync history is enabled.

Examples:
  roadmap show auth
  roadmap show auth --json`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		r, err := roadmap.Load(resolveStorePath())
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var labels []string
		for _, item := range r.Items {
			if strings.HasPrefix(item.Label, toComplete) {
				labels = append(labels, item.Label+"\t"+item.Title)
			}
		}
		return labels, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRoadmap()
		if err != nil {
			return err
		}

		label := strings.TrimSpace(args[0])
		item, ok := r.Find(label)
		if !ok {
			return handleErrorMsg(ErrItemNotFound, fmt.Sprintf("no item with label %q", label),
				"Run 'roadmap list' to see labels")
		}

		result := showResult{Item: item, Column: status.Mapper{}.ToRemote(item.Status)}
		result.RemoteID = lastRemoteID(cmd, label)

		if isJSONOutput() {
			outputSuccess(result, nil)
			return nil
		}

		fmt.Println(ui.Header(item.Title) + "  " + ui.Label(item.Label))
		fmt.Println(ui.Hint(fmt.Sprintf("%s · %s · %s · %s · started %s",
			item.Priority, item.Kind, item.Layer, item.Status, item.StartDate)))
		if result.RemoteID != "" {
			fmt.Println(ui.Hint("board item ") + ui.RemoteID(result.RemoteID) + ui.Hint(" in "+result.Column))
		}

		display := ui.NewDisplayContext()
		rendered, err := ui.RenderMarkdown(item.Description, display.MarkdownWidth())
		if err != nil {
			logging.Logger.Debug("render description", "label", label, "err", err)
			fmt.Println()
			fmt.Println(item.Description)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

// lastRemoteID looks the label up in the sync history. History is a
// convenience here; any failure just means no id is shown.
func lastRemoteID(cmd *cobra.Command, label string) string {
	if !getConfig().HistoryEnabled() {
		return ""
	}
	j, err := openJournalIfExists()
	if err != nil || j == nil {
		return ""
	}
	defer j.Close()

	ids, err := j.LastTouched(cmd.Context(), label)
	if err != nil {
		logging.Logger.Debug("history lookup", "label", label, "err", err)
		return ""
	}
	return ids[label]
}

func init() {
	rootCmd.AddCommand(showCmd)
}

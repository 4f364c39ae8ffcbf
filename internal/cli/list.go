package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/roadmap/internal/roadmap"
	"github.com/aidanlsb/roadmap/internal/ui"
)

var (
	listStatus roadmap.Status
	listKind   roadmap.Kind
	listLayer  roadmap.Layer
)

type statusGroup struct {
	Status roadmap.Status `json:"status"`
	Items  []roadmap.Item `json:"items"`
}

type listResult struct {
	Project string        `json:"project"`
	Groups  []statusGroup `json:"groups"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List roadmap items grouped by status",
	Long: `List roadmap items grouped by status (pending, in_progress, done),
most urgent priority first within each group.

Examples:
  roadmap list
  roadmap list --status in_progress
  roadmap list --kind bug --layer devops --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadRoadmap()
		if err != nil {
			return err
		}

		result := listResult{Project: r.Project, Groups: groupByStatus(r.Items, itemFilter)}
		count := 0
		for _, g := range result.Groups {
			count += len(g.Items)
		}

		if isJSONOutput() {
			outputSuccess(result, &Meta{Count: count})
			return nil
		}

		fmt.Println(ui.Header(r.Project) + " " + ui.Hint(ui.Count(count, "item", "items")))
		if count == 0 {
			fmt.Println(ui.Hint("No items. Add one with 'roadmap add'."))
			return nil
		}

		display := ui.NewDisplayContext()
		for _, g := range result.Groups {
			if len(g.Items) == 0 {
				continue
			}
			fmt.Println()
			fmt.Println(ui.Header(statusHeading(g.Status)) + " " + ui.Hint(fmt.Sprintf("(%d)", len(g.Items))))
			tbl := ui.NewTable(display, ui.ItemLayout)
			for _, item := range g.Items {
				tbl.AddRow(item.Label, string(item.Priority), string(item.Kind), string(item.Layer), item.Title)
			}
			fmt.Println(indent(tbl.Render(), "  "))
		}
		return nil
	},
}

func itemFilter(item roadmap.Item) bool {
	if listStatus != "" && item.Status != listStatus {
		return false
	}
	if listKind != "" && item.Kind != listKind {
		return false
	}
	if listLayer != "" && item.Layer != listLayer {
		return false
	}
	return true
}

// groupByStatus buckets items by status in workflow order. Every status
// gets a group, possibly empty, so JSON consumers see a fixed shape.
func groupByStatus(items []roadmap.Item, keep func(roadmap.Item) bool) []statusGroup {
	groups := make([]statusGroup, len(roadmap.Statuses))
	index := make(map[roadmap.Status]int, len(roadmap.Statuses))
	for i, st := range roadmap.Statuses {
		groups[i] = statusGroup{Status: st, Items: []roadmap.Item{}}
		index[st] = i
	}

	for _, item := range items {
		if keep != nil && !keep(item) {
			continue
		}
		i, ok := index[item.Status]
		if !ok {
			continue
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	for i := range groups {
		sortByPriority(groups[i].Items)
	}
	return groups
}

func statusHeading(st roadmap.Status) string {
	switch st {
	case roadmap.StatusPending:
		return "Pending"
	case roadmap.StatusInProgress:
		return "In progress"
	case roadmap.StatusDone:
		return "Done"
	}
	return string(st)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func init() {
	listCmd.Flags().Var(newOptionalEnumValue(&listStatus, "status", roadmap.ParseStatus), "status", "Only items with this status")
	listCmd.Flags().Var(newOptionalEnumValue(&listKind, "kind", roadmap.ParseKind), "kind", "Only items of this kind")
	listCmd.Flags().Var(newOptionalEnumValue(&listLayer, "layer", roadmap.ParseLayer), "layer", "Only items in this layer")

	_ = listCmd.RegisterFlagCompletionFunc("status", completeValues(roadmap.Statuses))
	_ = listCmd.RegisterFlagCompletionFunc("kind", completeValues(roadmap.Kinds))
	_ = listCmd.RegisterFlagCompletionFunc("layer", completeValues(roadmap.Layers))
	rootCmd.AddCommand(listCmd)
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/roadmap/internal/dates"
	"github.com/aidanlsb/roadmap/internal/roadmap"
	"github.com/aidanlsb/roadmap/internal/slugs"
	"github.com/aidanlsb/roadmap/internal/ui"
)

var (
	addDescription string
	addLabel       string
	addStartDate   string
	addKind        roadmap.Kind
	addLayer       roadmap.Layer
	addPriority    roadmap.Priority
	addStatus      roadmap.Status
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an item to the roadmap",
	Long: `Add an item to the roadmap file.

The label defaults to a slug of the title, made unique with a numeric
suffix. The start date defaults to today and accepts today, yesterday,
tomorrow or YYYY-MM-DD.

Examples:
  roadmap add "User Auth" --description "Login and sessions" --kind feature --priority P0
  roadmap add "Fix flaky deploy" -d "Retry the upload step" --kind bug --layer devops
  roadmap add "Dark mode" -d "Theme toggle" --label theme --start-date tomorrow --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(args[0])
		if title == "" {
			return handleErrorMsg(ErrInvalidInput, "title must not be empty", "Usage: roadmap add <title> --description <text>")
		}
		description := strings.TrimSpace(addDescription)
		if description == "" {
			return handleErrorMsg(ErrInvalidInput, "--description is required", "Usage: roadmap add <title> --description <text>")
		}

		startDate, err := dates.ParseDateArg(addStartDate, dates.Now())
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		r, err := loadRoadmap()
		if err != nil {
			return err
		}

		label := strings.TrimSpace(addLabel)
		switch {
		case label == "":
			label = slugs.UniqueLabel(title, r.HasLabel)
		case !slugs.IsValidLabel(label):
			return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("invalid label %q", label),
				fmt.Sprintf("Labels are lowercase words joined by hyphens, e.g. %q", slugs.Label(label)))
		}

		item := roadmap.Item{
			Title:       title,
			Label:       label,
			Description: description,
			Kind:        addKind,
			Layer:       addLayer,
			Priority:    addPriority,
			Status:      addStatus,
			StartDate:   startDate,
		}
		if err := r.Add(item); err != nil {
			code, suggestion := storeErrorCode(err)
			return handleError(code, err, suggestion)
		}
		if err := saveRoadmap(r); err != nil {
			return err
		}

		if isJSONOutput() {
			outputSuccess(item, nil)
			return nil
		}
		fmt.Println(ui.Successf("Added %s %s", ui.Label(item.Label), item.Title))
		fmt.Println(ui.Hint("Run 'roadmap push' to create it on the board."))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Item description (required)")
	addCmd.Flags().StringVar(&addLabel, "label", "", "Unique label (default: derived from the title)")
	addCmd.Flags().StringVar(&addStartDate, "start-date", "today", "Start date: YYYY-MM-DD, today, yesterday or tomorrow")
	addCmd.Flags().Var(newEnumValue(&addKind, roadmap.KindTask, "kind", roadmap.ParseKind), "kind", "Kind: bug, feature or task")
	addCmd.Flags().Var(newEnumValue(&addLayer, roadmap.LayerBackend, "layer", roadmap.ParseLayer), "layer", "Layer: backend, frontend or devops")
	addCmd.Flags().Var(newEnumValue(&addPriority, roadmap.PriorityP3, "priority", roadmap.ParsePriority), "priority", "Priority: P0, P1 or P3")
	addCmd.Flags().Var(newEnumValue(&addStatus, roadmap.StatusPending, "status", roadmap.ParseStatus), "status", "Status: pending, in_progress or done")

	_ = addCmd.RegisterFlagCompletionFunc("kind", completeValues(roadmap.Kinds))
	_ = addCmd.RegisterFlagCompletionFunc("layer", completeValues(roadmap.Layers))
	_ = addCmd.RegisterFlagCompletionFunc("priority", completeValues(roadmap.Priorities))
	_ = addCmd.RegisterFlagCompletionFunc("status", completeValues(roadmap.Statuses))
	rootCmd.AddCommand(addCmd)
}

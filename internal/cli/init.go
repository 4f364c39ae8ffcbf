package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/roadmap/internal/config"
	"github.com/aidanlsb/roadmap/internal/roadmap"
	"github.com/aidanlsb/roadmap/internal/ui"
)

var initProject string

type initResult struct {
	Store         string `json:"store"`
	Project       string `json:"project"`
	Config        string `json:"config"`
	ConfigCreated bool   `json:"config_created"`
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty roadmap file",
	Long: `Create an empty roadmap file at the store path, and a commented config
file if none exists yet. An existing roadmap is never overwritten.

Examples:
  roadmap init
  roadmap init --project web-app
  roadmap init --store plans/roadmap.yaml --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := getStorePath()
		if _, err := os.Stat(path); err == nil {
			return handleErrorMsg(ErrStoreExists, fmt.Sprintf("%s already exists", path),
				"Use a different --store path or edit the existing file")
		}

		project := strings.TrimSpace(initProject)
		if project == "" {
			project = defaultProjectName(path)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return handleError(ErrInternal, err, "")
		}
		if err := saveRoadmap(&roadmap.Roadmap{Project: project}); err != nil {
			return err
		}

		cfgPath := config.ResolveConfigPath(configPath)
		created, err := config.CreateDefault(cfgPath)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		result := initResult{Store: path, Project: project, Config: cfgPath, ConfigCreated: created}
		if isJSONOutput() {
			outputSuccess(result, nil)
			return nil
		}

		fmt.Println(ui.Successf("Created %s for project %s", path, ui.Bold.Render(project)))
		if created {
			fmt.Println(ui.Successf("Wrote default config to %s", cfgPath))
			fmt.Println(ui.Hint("  Set [board] owner and project there before running push."))
		}
		fmt.Println(ui.Hint("Next: roadmap add \"First item\" --description \"...\""))
		return nil
	},
}

// defaultProjectName names the project after the directory holding the store.
func defaultProjectName(storePath string) string {
	abs, err := filepath.Abs(storePath)
	if err != nil {
		return "roadmap"
	}
	name := filepath.Base(filepath.Dir(abs))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "roadmap"
	}
	return name
}

func init() {
	initCmd.Flags().StringVar(&initProject, "project", "", "Project name (default: the store's directory name)")
	rootCmd.AddCommand(initCmd)
}

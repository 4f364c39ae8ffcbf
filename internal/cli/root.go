// Package cli implements the command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/roadmap/internal/board"
	"github.com/aidanlsb/roadmap/internal/config"
	"github.com/aidanlsb/roadmap/internal/logging"
	"github.com/aidanlsb/roadmap/internal/roadmap"
	"github.com/aidanlsb/roadmap/internal/ui"
)

var (
	// Global flags
	storePathFlag string
	configPath    string
	boardFlag     string
	verbose       bool

	// Resolved values
	resolvedStorePath string
	cfg               *config.Config
	closeLog          = func() error { return nil }
)

// newBoardClient builds the board client for a backend. Tests replace it
// to share one in-memory board across commands.
var newBoardClient = func(c *config.Config, backend string) (board.Client, error) {
	switch backend {
	case config.BackendMemory:
		return board.NewMemory(), nil
	case config.BackendGitHub:
		if err := c.Board.ValidateGitHub(); err != nil {
			return nil, err
		}
		return board.NewGitHub(board.GitHubOptions{
			Owner:       c.Board.Owner,
			Project:     c.Board.Project,
			GHPath:      c.Board.GHPath,
			StatusField: c.Board.StatusField,
			Timeout:     c.Board.Timeout.Duration,
			Limit:       c.Board.Limit,
		}, logging.Logger.With("component", "github")), nil
	default:
		return nil, fmt.Errorf("unknown board backend %q", backend)
	}
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Keep a local roadmap file in sync with a project board",
	Long: `roadmap keeps a YAML roadmap of work items in step with a project board.

push creates or updates one board item per roadmap item; pull brings board
columns back as statuses and offers to import items added on the board.
The roadmap file stays the source of truth for everything but status.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		loaded, err := config.LoadResolved(configPath)
		if err != nil {
			return handleError(ErrConfigInvalid, fmt.Errorf("failed to load config: %w", err),
				"Fix the config file or pass --config")
		}
		cfg = loaded
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		closer, logErr := logging.Init(logging.Options{Verbose: verbose})
		closeLog = closer
		if logErr != nil && verbose && !isJSONOutput() {
			fmt.Fprintln(os.Stderr, ui.Warningf("log file unavailable: %v", logErr))
		}

		resolvedStorePath = resolveStorePath()
		logging.Logger.Debug("command start", "cmd", cmd.CommandPath(), "store", resolvedStorePath)
		return nil
	},
}

// Execute runs the CLI. The returned error, if any, has already been
// reported; pass it to ExitCode for the process status.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closeErr := closeLog(); closeErr != nil {
		logging.Logger.Debug("close log", "err", closeErr)
	}
	if err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !exitErr.Silent {
			fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storePathFlag, "store", "s", "", "Path to the roadmap file (default from config, else roadmap.yaml)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().Var(newOptionalEnumValue(&boardFlag, "board", parseBackend), "board", "Board backend: github or memory (default from config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for scripts)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug output to stderr")

	_ = rootCmd.RegisterFlagCompletionFunc("board", completeValues([]string{config.BackendGitHub, config.BackendMemory}))
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// getStorePath returns the resolved store path.
func getStorePath() string {
	return resolvedStorePath
}

func resolveStorePath() string {
	if strings.TrimSpace(storePathFlag) != "" {
		return storePathFlag
	}
	if c := getConfig(); strings.TrimSpace(c.Store) != "" {
		return c.Store
	}
	return roadmap.DefaultFileName
}

// boardBackend returns the backend chosen by flag, then config.
func boardBackend() string {
	if boardFlag != "" {
		return boardFlag
	}
	return getConfig().Board.Backend
}

// openBoard returns the client for the selected backend.
func openBoard() (board.Client, string, error) {
	backend := boardBackend()
	client, err := newBoardClient(getConfig(), backend)
	if err != nil {
		return nil, backend, handleError(ErrConfigInvalid, err, "Set [board] owner and project in the config, or use --board memory")
	}
	return client, backend, nil
}

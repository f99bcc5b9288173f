package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/autosnap/internal/config"
)

// globalCfg holds the user-level configuration, populated in
// PersistentPreRunE. Repo-local config is merged per command, since most
// commands take the repository path as an argument.
var globalCfg *config.Config

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "autosnap",
	Short: "Automatically commit file changes with rotating backup branches",
	Long: `autosnap watches a git repository for file changes and commits
qualifying changes automatically: changes are debounced into batches,
commits are rate-limited by a cooldown, and each commit can snapshot the
repository to a rotating set of timestamped backup branches.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		globalCfg = global
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// repoArg resolves the optional positional repository path argument.
func repoArg(args []string) (string, error) {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", fmt.Errorf("repository path does not exist: %s", abs)
	}
	return abs, nil
}

// loadConfig merges the global config with the repo-local one.
func loadConfig(repoPath string) (config.Config, error) {
	repo, err := config.LoadRepo(repoPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading repo config: %w", err)
	}
	return config.Merge(globalCfg, repo), nil
}

// journalPath returns the repository-local journal database location.
func journalPath(repoPath string) string {
	return filepath.Join(repoPath, ".autosnap", "journal.db")
}

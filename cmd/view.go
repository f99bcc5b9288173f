package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/autosnap/internal/journal"
	"github.com/fakeyudi/autosnap/internal/tui"
)

const viewEntryLimit = 500

var viewCmd = &cobra.Command{
	Use:   "view [path]",
	Short: "Browse the activity timeline in an interactive viewer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, err := repoArg(args)
		if err != nil {
			return err
		}

		ctx := context.Background()
		jr, err := journal.Open(ctx, journalPath(repoPath))
		if err != nil {
			return err
		}
		defer jr.Close()

		entries, err := jr.Recent(ctx, viewEntryLimit)
		if err != nil {
			return err
		}

		reload := func() ([]journal.Entry, error) {
			return jr.Recent(ctx, viewEntryLimit)
		}

		m := tui.New(repoPath, entries, reload)
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("run viewer: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

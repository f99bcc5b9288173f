package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/autosnap/internal/journal"
	"github.com/fakeyudi/autosnap/internal/state"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show the active tracker run and recent activity",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, err := repoArg(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		store, err := state.NewStore(repoPath)
		if err != nil {
			return err
		}
		run, err := store.Load()
		switch {
		case errors.Is(err, state.ErrNotRunning):
			fmt.Fprintln(out, "No active tracker run.")
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "Tracker running since %s (pid %d, run %s)\n",
				run.StartTime.Local().Format(time.RFC1123), run.PID, shortRunID(run.RunID))
		}

		ctx := context.Background()
		jr, err := journal.Open(ctx, journalPath(repoPath))
		if err != nil {
			return err
		}
		defer jr.Close()

		commits, err := jr.CountByKind(ctx, journal.KindCommit)
		if err != nil {
			return err
		}
		branches, err := jr.CountByKind(ctx, journal.KindBranchCreated)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Recorded: %d commits, %d backup branches\n\n", commits, branches)

		entries, err := jr.Recent(ctx, statusLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No activity recorded yet.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %-14s  %s\n",
				e.Time.Local().Format("2006-01-02 15:04:05"), e.Kind, e.Detail)
		}
		return nil
	},
}

// shortRunID abbreviates a run UUID for display.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "number of recent entries to show")
	rootCmd.AddCommand(statusCmd)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/autosnap/internal/config"
	"github.com/fakeyudi/autosnap/internal/git"
	"github.com/fakeyudi/autosnap/internal/journal"
	"github.com/fakeyudi/autosnap/internal/logging"
	"github.com/fakeyudi/autosnap/internal/state"
	"github.com/fakeyudi/autosnap/internal/tracker"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a repository and auto-commit qualifying changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, err := repoArg(args)
		if err != nil {
			return err
		}

		vcs := git.New(repoPath)
		if !vcs.IsRepo() {
			return fmt.Errorf("not a git repository: %s", repoPath)
		}

		cfg, err := loadConfig(repoPath)
		if err != nil {
			return err
		}

		logFile := cfg.LogFile
		if !filepath.IsAbs(logFile) {
			logFile = filepath.Join(repoPath, logFile)
		}
		log, closeLog, err := logging.Setup(logFile, verbose)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		jr, err := journal.Open(ctx, journalPath(repoPath))
		if err != nil {
			return err
		}
		defer jr.Close()

		tr, err := tracker.New(repoPath, cfg, vcs, jr, log)
		if err != nil {
			return err
		}

		store, err := state.NewStore(repoPath)
		if err != nil {
			return err
		}
		if err := store.Save(&state.RunState{
			RunID:     tr.RunID(),
			PID:       os.Getpid(),
			StartTime: time.Now(),
			RepoPath:  repoPath,
		}); err != nil {
			return err
		}
		defer store.Delete()

		if term.IsTerminal(os.Stdout.Fd()) {
			printBanner(cmd, repoPath, cfg)
		}

		return tr.Run(ctx)
	},
}

// printBanner summarizes the effective configuration on startup when stdout
// is an interactive terminal.
func printBanner(cmd *cobra.Command, repoPath string, cfg config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching for changes in %s\n", repoPath)
	fmt.Fprintf(out, "  include patterns: %d, ignore patterns: %d\n",
		len(cfg.FilePatterns), len(cfg.IgnorePatterns))
	fmt.Fprintf(out, "  debounce window:  %s\n", cfg.Debounce())
	fmt.Fprintf(out, "  commit cooldown:  %s\n", cfg.Cooldown())
	if cfg.BackupsEnabled() {
		fmt.Fprintf(out, "  backup branches:  %s-*, keeping %d\n",
			cfg.BackupBranchPrefix, cfg.MaxBackupBranches)
	} else {
		fmt.Fprintln(out, "  backup branches:  disabled")
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

package cmd

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fakeyudi/autosnap/internal/journal"
	"github.com/fakeyudi/autosnap/internal/state"
)

func TestStatusNoRunNoActivity(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	out, err := executeCommand(rootCmd, "status", dir)
	if err != nil {
		t.Fatalf("status returned unexpected error: %v", err)
	}
	if !strings.Contains(out, "No active tracker run.") {
		t.Errorf("output = %q, want no-active-run message", out)
	}
	if !strings.Contains(out, "No activity recorded yet.") {
		t.Errorf("output = %q, want no-activity message", out)
	}
}

func TestStatusReportsRunAndEntries(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	ctx := context.Background()

	store, err := state.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&state.RunState{
		RunID:     "0123456789abcdef",
		PID:       4242,
		StartTime: time.Now(),
		RepoPath:  dir,
	}); err != nil {
		t.Fatal(err)
	}

	jr, err := journal.Open(ctx, journalPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	entries := []journal.Entry{
		{RunID: "0123456789abcdef", Time: time.Now(), Kind: journal.KindCommit, Detail: "abc12345 1 modified"},
		{RunID: "0123456789abcdef", Time: time.Now(), Kind: journal.KindBranchCreated, Detail: "autosnap-20240601_120000"},
	}
	for _, e := range entries {
		if err := jr.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	jr.Close()

	out, err := executeCommand(rootCmd, "status", dir)
	if err != nil {
		t.Fatalf("status returned unexpected error: %v", err)
	}

	if !strings.Contains(out, "pid 4242") {
		t.Errorf("output = %q, want the run pid", out)
	}
	if !strings.Contains(out, "run 01234567") {
		t.Errorf("output = %q, want the abbreviated run id", out)
	}
	if !strings.Contains(out, "1 commits, 1 backup branches") {
		t.Errorf("output = %q, want the journal counts", out)
	}
	if !strings.Contains(out, "autosnap-20240601_120000") {
		t.Errorf("output = %q, want the branch entry detail", out)
	}
}

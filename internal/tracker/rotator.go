package tracker

import (
	"fmt"
	"log/slog"
	"time"
)

// branchTimeLayout embeds a lexicographically sortable timestamp in backup
// branch names, so name order is creation order.
const branchTimeLayout = "20060102_150405"

// VCS is the version-control capability the tracker needs. *git.Git
// implements it; tests substitute a double.
type VCS interface {
	Stage(paths []string) error
	HasStagedChanges() (bool, error)
	Commit(message string) (string, error)
	CreateBranch(name string) error
	ListBranches(prefix string) ([]string, error)
	DeleteBranch(name string) error
}

// RotationOutcome describes what a rotation cycle did.
type RotationOutcome struct {
	Created string   // new backup branch name, empty if skipped
	Pruned  []string // branches deleted to satisfy the retention limit
}

// Rotator snapshots repository state to timestamp-named backup branches and
// prunes the oldest ones beyond a retention limit. It keeps no branch list
// of its own; the VCS is queried fresh on every cycle.
type Rotator struct {
	prefix     string
	max        int
	interval   time.Duration // minimum spacing between backups; 0 = every commit
	lastBackup time.Time
	log        *slog.Logger
}

// NewRotator returns a Rotator retaining at most max branches named
// prefix-<timestamp>.
func NewRotator(prefix string, max int, interval time.Duration, log *slog.Logger) *Rotator {
	return &Rotator{prefix: prefix, max: max, interval: interval, log: log}
}

// Rotate creates a backup branch at the current commit and prunes the oldest
// branches beyond the retention limit. Branch creation failure aborts the
// cycle (the commit itself stands); each deletion is attempted independently
// so one stuck branch cannot block rotation forever.
func (r *Rotator) Rotate(vcs VCS, now time.Time) (RotationOutcome, error) {
	var out RotationOutcome

	if r.interval > 0 && !r.lastBackup.IsZero() && now.Sub(r.lastBackup) < r.interval {
		return out, nil
	}

	name := fmt.Sprintf("%s-%s", r.prefix, now.Format(branchTimeLayout))
	if err := vcs.CreateBranch(name); err != nil {
		return out, fmt.Errorf("create backup branch %s: %w", name, err)
	}
	out.Created = name
	r.lastBackup = now
	r.log.Info("created backup branch", "branch", name)

	branches, err := vcs.ListBranches(r.prefix + "-")
	if err != nil {
		return out, fmt.Errorf("list backup branches: %w", err)
	}

	excess := len(branches) - r.max
	for _, old := range branches[:max(excess, 0)] {
		if err := vcs.DeleteBranch(old); err != nil {
			r.log.Error("failed to prune backup branch", "branch", old, "error", err)
			continue
		}
		out.Pruned = append(out.Pruned, old)
		r.log.Info("pruned backup branch", "branch", old)
	}
	return out, nil
}

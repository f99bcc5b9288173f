package tracker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/fakeyudi/autosnap/internal/config"
	"github.com/fakeyudi/autosnap/internal/filter"
	"github.com/fakeyudi/autosnap/internal/journal"
)

// ErrWatcherClosed is returned when the filesystem listener dies. No further
// changes could ever be tracked, so the run must terminate.
var ErrWatcherClosed = errors.New("filesystem watcher closed unexpectedly")

// Recorder persists tracker activity. *journal.Journal implements it; a nil
// Recorder disables journaling.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Tracker owns the watch lifecycle: it wires filesystem events through the
// filter into the aggregator, and on each tick drives the
// flush → throttle → commit → rotate cycle. All VCS calls happen on the one
// Run goroutine, so no concurrent commit or rotation is ever in flight.
type Tracker struct {
	repo     string
	filter   *filter.Filter
	agg      *Aggregator
	throttle *Throttle
	rotator  *Rotator
	vcs      VCS
	journal  Recorder
	log      *slog.Logger
	runID    string
	backups  bool

	now  func() time.Time // injectable clock for tests
	tick time.Duration    // flush check period, must not exceed the debounce window
}

// New builds a Tracker for the repository at repo. Malformed glob patterns
// in cfg are reported here, before any watching starts.
func New(repo string, cfg config.Config, vcs VCS, rec Recorder, log *slog.Logger) (*Tracker, error) {
	f, err := filter.New(cfg.FilePatterns, cfg.IgnorePatterns)
	if err != nil {
		return nil, err
	}

	tick := time.Second
	if d := cfg.Debounce(); d < tick {
		tick = d
	}

	return &Tracker{
		repo:     repo,
		filter:   f,
		agg:      NewAggregator(cfg.Debounce()),
		throttle: NewThrottle(cfg.Cooldown()),
		rotator:  NewRotator(cfg.BackupBranchPrefix, cfg.MaxBackupBranches, cfg.BackupEvery(), log),
		vcs:      vcs,
		journal:  rec,
		log:      log,
		runID:    uuid.New().String(),
		backups:  cfg.BackupsEnabled(),
		now:      time.Now,
		tick:     tick,
	}, nil
}

// RunID identifies this tracker run in logs and the journal.
func (t *Tracker) RunID() string {
	return t.runID
}

// Run watches the repository tree and commits qualifying changes until ctx
// is cancelled. An in-flight commit cycle always completes before Run
// returns; a dead watcher terminates the run with ErrWatcherClosed.
func (t *Tracker) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := t.watchTree(watcher); err != nil {
		return fmt.Errorf("watch %s: %w", t.repo, err)
	}

	t.log.Info("started watching repository", "path", t.repo, "run_id", t.runID)
	t.record(ctx, journal.KindStart, t.repo)

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("stopped watching repository", "path", t.repo)
			t.record(context.WithoutCancel(ctx), journal.KindStop, t.repo)
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return ErrWatcherClosed
			}
			t.handleEvent(watcher, ev)

		case err, ok := <-watcher.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			// Transient watcher errors are not fatal; only channel closure is.
			t.log.Error("watch error", "error", err)

		case <-ticker.C:
			t.cycle(ctx)
		}
	}
}

// watchTree adds a watch for every directory under the repository root,
// skipping excluded trees so events from .git, node_modules and friends are
// never even delivered.
func (t *Tracker) watchTree(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(t.repo, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if rel := t.rel(path); rel != "." && t.filter.Excluded(rel) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// handleEvent filters a raw filesystem event into the aggregator.
func (t *Tracker) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) {
	kind, ok := eventKind(ev.Op)
	if !ok {
		return
	}

	rel := t.rel(ev.Name)

	if kind == Created {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// New directories get watched, not tracked.
			if !t.filter.Excluded(rel) {
				_ = watcher.Add(ev.Name)
			}
			return
		}
	}

	if !t.filter.ShouldTrack(rel) {
		return
	}

	t.log.Debug("change detected", "path", rel, "kind", kind.String())
	t.agg.Add(rel, kind, t.now())
}

// cycle runs one flush attempt: ask the aggregator for a settled change set,
// the throttle for permission, then commit and rotate. Denied or failed sets
// are requeued, never dropped.
func (t *Tracker) cycle(ctx context.Context) {
	now := t.now()
	changes := t.agg.FlushDue(now)
	if changes == nil {
		return
	}

	if !t.throttle.Allow(now) {
		t.log.Debug("commit throttled, retaining changes", "pending", len(changes))
		t.agg.Requeue(changes, now)
		return
	}

	paths := make([]string, len(changes))
	for i, c := range changes {
		paths[i] = c.Path
	}

	if err := t.vcs.Stage(paths); err != nil {
		t.log.Error("failed to stage changes", "paths", paths, "error", err)
		t.record(ctx, journal.KindError, "stage: "+err.Error())
		t.agg.Requeue(changes, now)
		return
	}

	staged, err := t.vcs.HasStagedChanges()
	if err != nil {
		t.log.Error("failed to inspect index", "error", err)
		t.record(ctx, journal.KindError, "diff: "+err.Error())
		t.agg.Requeue(changes, now)
		return
	}
	if !staged {
		// The events were no-ops as far as git is concerned (touched but
		// unchanged content). Nothing to commit, nothing to retry.
		t.log.Debug("no effective changes to commit", "paths", paths)
		return
	}

	id, err := t.vcs.Commit(commitMessage(changes))
	if err != nil {
		t.log.Error("failed to commit", "error", err)
		t.record(ctx, journal.KindError, "commit: "+err.Error())
		t.agg.Requeue(changes, now)
		return
	}
	t.throttle.Record(now)
	t.log.Info("created commit", "commit", id, "files", len(changes))
	t.record(ctx, journal.KindCommit, fmt.Sprintf("%s %s", shortID(id), changeSummary(changes)))

	if !t.backups {
		return
	}
	outcome, err := t.rotator.Rotate(t.vcs, now)
	if err != nil {
		// The commit stands; rotation just skips this cycle.
		t.log.Error("backup rotation failed", "error", err)
		t.record(ctx, journal.KindError, "rotate: "+err.Error())
		return
	}
	if outcome.Created != "" {
		t.record(ctx, journal.KindBranchCreated, outcome.Created)
	}
	for _, pruned := range outcome.Pruned {
		t.record(ctx, journal.KindBranchPruned, pruned)
	}
}

// record appends a journal entry, logging (but otherwise ignoring) failures:
// a broken journal must not stop the tracking loop.
func (t *Tracker) record(ctx context.Context, kind, detail string) {
	if t.journal == nil {
		return
	}
	e := journal.Entry{RunID: t.runID, Time: t.now(), Kind: kind, Detail: detail}
	if err := t.journal.Record(ctx, e); err != nil {
		t.log.Error("failed to record journal entry", "kind", kind, "error", err)
	}
}

// rel converts an absolute event path to a repository-relative one.
func (t *Tracker) rel(path string) string {
	if rel, err := filepath.Rel(t.repo, path); err == nil {
		return rel
	}
	return path
}

// eventKind maps an fsnotify operation to a change kind. Chmod-only events
// carry no content change and are dropped.
func eventKind(op fsnotify.Op) (Kind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Created, true
	case op.Has(fsnotify.Write):
		return Modified, true
	case op.Has(fsnotify.Remove):
		return Deleted, true
	case op.Has(fsnotify.Rename):
		return Renamed, true
	}
	return 0, false
}

// commitMessage summarizes the flushed set: a one-line count by kind, then
// the file list.
func commitMessage(changes []Change) string {
	var b strings.Builder
	fmt.Fprintf(&b, "autosnap: %s\n\n", changeSummary(changes))
	for _, c := range changes {
		fmt.Fprintf(&b, "- %s (%s)\n", c.Path, c.Kind)
	}
	return strings.TrimRight(b.String(), "\n")
}

// changeSummary renders counts like "2 modified, 1 deleted".
func changeSummary(changes []Change) string {
	counts := make(map[Kind]int)
	for _, c := range changes {
		counts[c.Kind]++
	}
	var parts []string
	for _, k := range []Kind{Created, Modified, Deleted, Renamed} {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	return strings.Join(parts, ", ")
}

// shortID abbreviates a commit hash for journal entries.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

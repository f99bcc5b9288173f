// Package tracker implements the change-detection-to-commit pipeline: a
// debounced change aggregator, a commit cooldown throttle, a backup branch
// rotator and the controller loop that ties them to the filesystem watcher.
package tracker

import (
	"sort"
	"sync"
	"time"
)

// Kind classifies a filesystem change.
type Kind int

const (
	Created Kind = iota
	Modified
	Deleted
	Renamed
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	}
	return "unknown"
}

// Change is one pending changed path. Duplicate events on the same path
// collapse to a single Change carrying the most recent kind.
type Change struct {
	Path string
	Kind Kind
}

// Aggregator buffers filtered change events until a debounce window of
// inactivity has elapsed. It is safe for concurrent use: events arrive from
// the watcher goroutine while the controller loop flushes.
type Aggregator struct {
	mu       sync.Mutex
	window   time.Duration
	pending  map[string]Kind
	deadline time.Time
}

// NewAggregator returns an idle Aggregator with the given debounce window.
func NewAggregator(window time.Duration) *Aggregator {
	return &Aggregator{
		window:  window,
		pending: make(map[string]Kind),
	}
}

// Add records a change and pushes the debounce deadline to now+window.
// An event arriving exactly at the deadline restarts the window: batching
// related edits beats premature flushing.
func (a *Aggregator) Add(path string, kind Kind, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending[path] = kind
	a.deadline = now.Add(a.window)
}

// FlushDue returns the pending changes sorted by path and resets the
// aggregator to idle, but only when the debounce deadline has passed.
// An empty pending set or an unexpired window returns nil.
func (a *Aggregator) FlushDue(now time.Time) []Change {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.pending) == 0 || now.Before(a.deadline) {
		return nil
	}
	changes := make([]Change, 0, len(a.pending))
	for path, kind := range a.pending {
		changes = append(changes, Change{Path: path, Kind: kind})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	a.pending = make(map[string]Kind)
	return changes
}

// Requeue returns a flushed set to the pending state after a throttle denial
// or a failed commit, starting a fresh accumulation window. Changes that
// arrived in the meantime win over the requeued ones for the same path.
func (a *Aggregator) Requeue(changes []Change, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range changes {
		if _, ok := a.pending[c.Path]; !ok {
			a.pending[c.Path] = c.Kind
		}
	}
	a.deadline = now.Add(a.window)
}

// Len returns the number of distinct pending paths.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

package tracker

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFlushDueEmptyIsNoop(t *testing.T) {
	a := NewAggregator(2 * time.Second)
	if got := a.FlushDue(t0); got != nil {
		t.Errorf("FlushDue on empty aggregator = %v, want nil", got)
	}
}

func TestFlushDueWaitsForDebounceWindow(t *testing.T) {
	a := NewAggregator(2 * time.Second)
	a.Add("a.py", Modified, t0)

	if got := a.FlushDue(t0.Add(1 * time.Second)); got != nil {
		t.Errorf("flush before deadline = %v, want nil", got)
	}
	got := a.FlushDue(t0.Add(2 * time.Second))
	if len(got) != 1 || got[0].Path != "a.py" {
		t.Fatalf("flush at deadline = %v, want [a.py]", got)
	}

	// Flushing clears the pending set.
	if a.Len() != 0 {
		t.Errorf("Len after flush = %d, want 0", a.Len())
	}
	if got := a.FlushDue(t0.Add(10 * time.Second)); got != nil {
		t.Errorf("second flush = %v, want nil", got)
	}
}

func TestEventResetsDeadline(t *testing.T) {
	a := NewAggregator(2 * time.Second)
	a.Add("a.py", Modified, t0)
	// A second event exactly at the deadline restarts the window.
	a.Add("b.py", Created, t0.Add(2*time.Second))

	if got := a.FlushDue(t0.Add(3 * time.Second)); got != nil {
		t.Errorf("flush during restarted window = %v, want nil", got)
	}
	got := a.FlushDue(t0.Add(4 * time.Second))
	if len(got) != 2 {
		t.Fatalf("flush after restarted window = %v, want 2 changes", got)
	}
	// Sorted by path.
	if got[0].Path != "a.py" || got[1].Path != "b.py" {
		t.Errorf("flush order = [%s %s], want [a.py b.py]", got[0].Path, got[1].Path)
	}
}

func TestDuplicateEventsCollapse(t *testing.T) {
	a := NewAggregator(time.Second)
	for i := 0; i < 10; i++ {
		a.Add("a.py", Modified, t0.Add(time.Duration(i)*time.Millisecond))
	}

	got := a.FlushDue(t0.Add(2 * time.Second))
	if len(got) != 1 {
		t.Fatalf("flushed %d entries for one path, want 1", len(got))
	}
}

func TestLatestKindWins(t *testing.T) {
	a := NewAggregator(time.Second)
	a.Add("a.py", Created, t0)
	a.Add("a.py", Deleted, t0.Add(time.Millisecond))

	got := a.FlushDue(t0.Add(2 * time.Second))
	if len(got) != 1 || got[0].Kind != Deleted {
		t.Fatalf("flush = %v, want [{a.py deleted}]", got)
	}
}

func TestRequeueRetainsDeniedChanges(t *testing.T) {
	a := NewAggregator(time.Second)
	a.Add("a.py", Modified, t0)

	flushed := a.FlushDue(t0.Add(time.Second))
	if len(flushed) != 1 {
		t.Fatal("expected one flushed change")
	}

	now := t0.Add(time.Second)
	a.Requeue(flushed, now)
	if a.Len() != 1 {
		t.Fatalf("Len after requeue = %d, want 1", a.Len())
	}

	// The requeued set flushes again after a fresh window.
	if got := a.FlushDue(now.Add(500 * time.Millisecond)); got != nil {
		t.Errorf("flush inside fresh window = %v, want nil", got)
	}
	got := a.FlushDue(now.Add(time.Second))
	if len(got) != 1 || got[0].Path != "a.py" {
		t.Fatalf("flush after requeue = %v, want [a.py]", got)
	}
}

func TestRequeueNewerChangeWins(t *testing.T) {
	a := NewAggregator(time.Second)
	a.Add("a.py", Created, t0)
	flushed := a.FlushDue(t0.Add(time.Second))

	// A newer event for the same path lands before the requeue.
	a.Add("a.py", Deleted, t0.Add(time.Second))
	a.Requeue(flushed, t0.Add(time.Second))

	got := a.FlushDue(t0.Add(3 * time.Second))
	if len(got) != 1 || got[0].Kind != Deleted {
		t.Fatalf("flush = %v, want the newer deleted kind to win", got)
	}
}

// Property: N events on any mix of paths within one window flush to exactly
// the distinct path set, each path once.
func TestDebounceIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := NewAggregator(time.Second)

		n := rapid.IntRange(1, 50).Draw(t, "n")
		distinct := make(map[string]bool)
		for i := 0; i < n; i++ {
			p := rapid.StringMatching(`[a-z]{1,4}\.py`).Draw(t, "path")
			distinct[p] = true
			a.Add(p, Modified, t0.Add(time.Duration(i)*time.Millisecond))
		}

		got := a.FlushDue(t0.Add(5 * time.Second))
		if len(got) != len(distinct) {
			t.Fatalf("flushed %d entries, want %d distinct paths", len(got), len(distinct))
		}
		for _, c := range got {
			if !distinct[c.Path] {
				t.Fatalf("flushed unexpected path %q", c.Path)
			}
		}
	})
}

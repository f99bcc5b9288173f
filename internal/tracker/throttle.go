package tracker

import (
	"sync"
	"time"
)

// Throttle enforces a strict minimum interval between commits. A denied
// acquisition does not queue; the caller keeps the pending changes buffered
// and retries on the next cycle.
type Throttle struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     time.Time // zero until the first commit
}

// NewThrottle returns a Throttle with the given cooldown.
func NewThrottle(cooldown time.Duration) *Throttle {
	return &Throttle{cooldown: cooldown}
}

// Allow reports whether a commit may proceed at now: always before the first
// commit, and afterwards only once the cooldown has fully elapsed.
func (t *Throttle) Allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last.IsZero() || now.Sub(t.last) >= t.cooldown
}

// Record marks a commit as performed at now. Call it only after the commit
// actually succeeded.
func (t *Throttle) Record(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = now
}

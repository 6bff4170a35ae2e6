package flood

import (
	"sync"
	"time"
)

// Tracker keeps a per-user sliding window of recent message timestamps in
// process memory. Flood is a transient signal, so losing the window on
// restart is acceptable.
type Tracker struct {
	window    time.Duration
	threshold int

	mutex   sync.Mutex
	windows map[int64][]time.Time
}

func NewTracker(window time.Duration, threshold int) *Tracker {
	return &Tracker{
		window:    window,
		threshold: threshold,
		windows:   make(map[int64][]time.Time),
	}
}

// RecordAndCheck appends now to the user's window, prunes entries older
// than the window, and reports whether the remaining count exceeds the
// threshold.
func (t *Tracker) RecordAndCheck(userID int64, now time.Time) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	cutoff := now.Add(-t.window)
	kept := t.windows[userID][:0]
	for _, ts := range t.windows[userID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	t.windows[userID] = kept

	return len(kept) > t.threshold
}

// Forget drops the user's window, used after a flood mute so the user is
// not re-flagged for the same burst once the mute expires.
func (t *Tracker) Forget(userID int64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	delete(t.windows, userID)
}

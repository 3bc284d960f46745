// lobby/timer.go
package lobby

import (
	"sync"
	"time"
)

// StartTimer is the single-slot deferred start scheduler: at most one
// pending timer per lobby, scheduling a new one invalidates the prior.
type StartTimer struct {
	mu    sync.Mutex
	timer *time.Timer
}

func NewStartTimer() *StartTimer {
	return &StartTimer{}
}

// Schedule cancels any pending timer and arms a new one. The action
// runs on the timer goroutine once the delay expires; a timer
// superseded or cancelled in the meantime never fires its action.
func (t *StartTimer) Schedule(d time.Duration, action func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}

	var armed *time.Timer
	armed = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.timer != armed {
			// Superseded after firing was already queued.
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		action()
	})
	t.timer = armed
}

// Cancel invalidates the pending timer, reporting whether one existed.
// Cancelling an absent timer is a safe no-op.
func (t *StartTimer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	return true
}

// Active reports whether a timer is pending.
func (t *StartTimer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

package lobby

import (
	"testing"
	"time"
)

func TestStartTimer_Fires(t *testing.T) {
	timer := NewStartTimer()
	fired := make(chan struct{})

	timer.Schedule(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Timer did not fire")
	}
	if timer.Active() {
		t.Error("Timer should not be active after firing")
	}
}

func TestStartTimer_Cancel(t *testing.T) {
	timer := NewStartTimer()
	fired := make(chan struct{}, 1)

	timer.Schedule(20*time.Millisecond, func() { fired <- struct{}{} })
	if !timer.Cancel() {
		t.Fatal("Cancel should report an active timer")
	}
	if timer.Active() {
		t.Error("Timer should not be active after cancel")
	}

	select {
	case <-fired:
		t.Error("Cancelled timer should not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStartTimer_CancelAbsent(t *testing.T) {
	timer := NewStartTimer()
	if timer.Cancel() {
		t.Error("Cancel with no pending timer should report false")
	}
}

func TestStartTimer_Supersede(t *testing.T) {
	timer := NewStartTimer()
	first := make(chan struct{}, 1)
	second := make(chan struct{}, 1)

	timer.Schedule(30*time.Millisecond, func() { first <- struct{}{} })
	timer.Schedule(60*time.Millisecond, func() { second <- struct{}{} })

	select {
	case <-first:
		t.Error("Superseded timer should not fire")
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("Replacement timer did not fire")
	}
}

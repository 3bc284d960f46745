package lobby

import (
	"testing"

	"github.com/iWeeti/bancho-autohost/bancho"
)

func TestRotationQueue_EnqueueIdempotent(t *testing.T) {
	q := NewRotationQueue()
	p := bancho.Player{ID: 1, Username: "alice"}

	if !q.Enqueue(p) {
		t.Fatal("First Enqueue should succeed")
	}
	if q.Enqueue(p) {
		t.Error("Enqueueing a present player should return false")
	}
	if q.Len() != 1 {
		t.Errorf("Expected queue length 1, got %d", q.Len())
	}
}

func TestRotationQueue_RotateOrder(t *testing.T) {
	q := NewRotationQueue()
	alice := bancho.Player{ID: 1, Username: "alice"}
	bob := bancho.Player{ID: 2, Username: "bob"}
	carol := bancho.Player{ID: 3, Username: "carol"}
	q.Enqueue(alice)
	q.Enqueue(bob)
	q.Enqueue(carol)

	first, ok := q.Rotate()
	if !ok {
		t.Fatal("Rotate should succeed on a non-empty queue")
	}
	if first.ID != alice.ID {
		t.Errorf("Expected alice first, got %s", first.Username)
	}

	// Alice moved to the back.
	if pos := q.Position(alice); pos != 2 {
		t.Errorf("Expected alice at position 2 after rotation, got %d", pos)
	}

	second, _ := q.Rotate()
	if second.ID != bob.ID {
		t.Errorf("Expected bob second, got %s", second.Username)
	}
}

func TestRotationQueue_RotateEmpty(t *testing.T) {
	q := NewRotationQueue()
	if _, ok := q.Rotate(); ok {
		t.Error("Rotate on an empty queue should report false")
	}
}

func TestRotationQueue_Remove(t *testing.T) {
	q := NewRotationQueue()
	alice := bancho.Player{ID: 1, Username: "alice"}
	bob := bancho.Player{ID: 2, Username: "bob"}
	q.Enqueue(alice)
	q.Enqueue(bob)

	q.Remove(alice)

	if q.Contains(alice) {
		t.Error("Removed player should not be contained")
	}
	if q.Position(bob) != 0 {
		t.Error("Remaining player should move to the front")
	}
}

func TestRotationQueue_UsernameFallback(t *testing.T) {
	q := NewRotationQueue()
	// Id unresolved at join time.
	q.Enqueue(bancho.Player{Username: "alice"})

	if !q.Contains(bancho.Player{Username: "alice"}) {
		t.Error("Username match should identify the player when ids are missing")
	}
	q.Remove(bancho.Player{Username: "alice"})
	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got length %d", q.Len())
	}
}

func TestRotationQueue_Sync(t *testing.T) {
	q := NewRotationQueue()
	alice := bancho.Player{ID: 1, Username: "alice"}
	bob := bancho.Player{ID: 2, Username: "bob"}
	carol := bancho.Player{ID: 3, Username: "carol"}
	q.Enqueue(alice)
	q.Enqueue(bob)

	// Bob is gone, carol appeared.
	q.Sync([]bancho.Player{alice, carol})

	if q.Contains(bob) {
		t.Error("Stale player should be dropped by Sync")
	}
	if !q.Contains(carol) {
		t.Error("Missing present player should be appended by Sync")
	}
	if q.Position(alice) != 0 {
		t.Error("Sync should preserve the order of surviving entries")
	}
	if q.Position(carol) != 1 {
		t.Errorf("Expected carol appended at position 1, got %d", q.Position(carol))
	}
}

// lobby/queue.go
package lobby

import (
	"github.com/iWeeti/bancho-autohost/bancho"
)

// RotationQueue is the ordered host rotation: insertion order is join
// order, the front entry is the next (or current) host.
type RotationQueue struct {
	players []bancho.Player
}

func NewRotationQueue() *RotationQueue {
	return &RotationQueue{}
}

func samePlayer(a, b bancho.Player) bool {
	if a.ID != 0 && b.ID != 0 {
		return a.ID == b.ID
	}
	return a.Username == b.Username
}

// Enqueue appends the player unless already present. Re-adding a
// present player is a no-op and returns false.
func (q *RotationQueue) Enqueue(p bancho.Player) bool {
	if q.Contains(p) {
		return false
	}
	q.players = append(q.players, p)
	return true
}

// Remove filters out all entries matching the player.
func (q *RotationQueue) Remove(p bancho.Player) {
	filtered := q.players[:0]
	for _, entry := range q.players {
		if !samePlayer(entry, p) {
			filtered = append(filtered, entry)
		}
	}
	q.players = filtered
}

// Rotate pops the front entry and appends it to the back, returning the
// popped player. It does not issue the set-host command itself; the
// session owns the command sink.
func (q *RotationQueue) Rotate() (bancho.Player, bool) {
	if len(q.players) == 0 {
		return bancho.Player{}, false
	}
	next := q.players[0]
	q.players = append(q.players[1:], next)
	return next, true
}

func (q *RotationQueue) Contains(p bancho.Player) bool {
	for _, entry := range q.players {
		if samePlayer(entry, p) {
			return true
		}
	}
	return false
}

// Position returns the zero-based queue position, or -1.
func (q *RotationQueue) Position(p bancho.Player) int {
	for i, entry := range q.players {
		if samePlayer(entry, p) {
			return i
		}
	}
	return -1
}

// Players returns a copy of the queue in order.
func (q *RotationQueue) Players() []bancho.Player {
	out := make([]bancho.Player, len(q.players))
	copy(out, q.players)
	return out
}

// Sync reconciles membership with the live slot list: present players
// are appended if missing, stale entries are dropped.
func (q *RotationQueue) Sync(present []bancho.Player) {
	filtered := q.players[:0]
	for _, entry := range q.players {
		for _, p := range present {
			if samePlayer(entry, p) {
				filtered = append(filtered, entry)
				break
			}
		}
	}
	q.players = filtered

	for _, p := range present {
		q.Enqueue(p)
	}
}

func (q *RotationQueue) Len() int {
	return len(q.players)
}

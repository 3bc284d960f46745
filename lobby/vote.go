// lobby/vote.go
package lobby

import (
	"errors"

	"github.com/iWeeti/bancho-autohost/bancho"
)

// ErrAlreadyVoted is returned when a voter registers twice for the same
// vote; the tally is unchanged.
var ErrAlreadyVoted = errors.New("already voted")

// VoteTracker accumulates votes of one kind (skip, stop, start).
// Quorum is floor(presentPlayers / 2); the host bypasses voting
// entirely, which is the session's concern, not the tracker's.
type VoteTracker struct {
	kind   string
	voters map[int64]string
}

func NewVoteTracker(kind string) *VoteTracker {
	return &VoteTracker{
		kind:   kind,
		voters: make(map[int64]string),
	}
}

// Quorum is the minimum tally that forces the action.
func Quorum(presentPlayers int) int {
	return presentPlayers / 2
}

// Register adds a vote and reports the tally against quorum. When the
// quorum is reached the tracker resets itself so the bound action fires
// exactly once.
func (v *VoteTracker) Register(voter bancho.Player, presentPlayers int) (tally, quorum int, reached bool, err error) {
	quorum = Quorum(presentPlayers)
	if _, ok := v.voters[voter.ID]; ok {
		return len(v.voters), quorum, false, ErrAlreadyVoted
	}

	v.voters[voter.ID] = voter.Username
	tally = len(v.voters)
	if tally >= quorum {
		v.Reset()
		return tally, quorum, true, nil
	}
	return tally, quorum, false, nil
}

// Remove drops a voter, used when a player leaves the room. A vote set
// never contains a player not currently in the room.
func (v *VoteTracker) Remove(voter bancho.Player) {
	delete(v.voters, voter.ID)
}

// Reset clears the set. Invoked on every play-state flip and whenever
// the host rotates.
func (v *VoteTracker) Reset() {
	v.voters = make(map[int64]string)
}

func (v *VoteTracker) Len() int {
	return len(v.voters)
}

func (v *VoteTracker) Kind() string {
	return v.kind
}

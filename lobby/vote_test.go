package lobby

import (
	"errors"
	"testing"

	"github.com/iWeeti/bancho-autohost/bancho"
)

func TestQuorum(t *testing.T) {
	cases := []struct {
		present int
		want    int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 2},
		{16, 8},
	}
	for _, c := range cases {
		if got := Quorum(c.present); got != c.want {
			t.Errorf("Quorum(%d) = %d, want %d", c.present, got, c.want)
		}
	}
}

func TestVoteTracker_ReachedResets(t *testing.T) {
	v := NewVoteTracker("skip")

	tally, quorum, reached, err := v.Register(bancho.Player{ID: 1, Username: "alice"}, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if reached {
		t.Fatal("Single vote should not reach a quorum of 2")
	}
	if tally != 1 || quorum != 2 {
		t.Errorf("Expected tally 1 of quorum 2, got %d of %d", tally, quorum)
	}

	_, _, reached, err = v.Register(bancho.Player{ID: 2, Username: "bob"}, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reached {
		t.Fatal("Second vote should reach the quorum")
	}
	if v.Len() != 0 {
		t.Error("Tracker should reset itself once the quorum is reached")
	}
}

func TestVoteTracker_DuplicateVote(t *testing.T) {
	v := NewVoteTracker("stop")
	alice := bancho.Player{ID: 1, Username: "alice"}

	if _, _, _, err := v.Register(alice, 6); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tally, _, reached, err := v.Register(alice, 6)
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("Expected ErrAlreadyVoted, got %v", err)
	}
	if reached {
		t.Error("A duplicate vote should never reach the quorum")
	}
	if tally != 1 {
		t.Errorf("Duplicate vote should leave the tally at 1, got %d", tally)
	}
}

func TestVoteTracker_RemoveVoter(t *testing.T) {
	v := NewVoteTracker("start")
	alice := bancho.Player{ID: 1, Username: "alice"}
	bob := bancho.Player{ID: 2, Username: "bob"}

	v.Register(alice, 6)
	v.Register(bob, 6)
	v.Remove(alice)

	if v.Len() != 1 {
		t.Errorf("Expected 1 voter after removal, got %d", v.Len())
	}
}

func TestVoteTracker_SmallRoomImmediateQuorum(t *testing.T) {
	v := NewVoteTracker("skip")

	// Two players present, quorum 1: the first vote fires immediately.
	_, _, reached, err := v.Register(bancho.Player{ID: 1, Username: "alice"}, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reached {
		t.Error("A single vote should satisfy quorum 1")
	}
}

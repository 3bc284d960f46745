// bancho/events.go
package bancho

// Event is a typed room event delivered on a channel's event stream.
// Events for one room are delivered strictly one at a time.
type Event interface {
	eventName() string
}

// PlayerJoinedEvent fires when a player occupies a slot.
type PlayerJoinedEvent struct {
	Player Player
	Slot   int
}

// PlayerLeftEvent fires when a player leaves the room.
type PlayerLeftEvent struct {
	Player Player
}

// HostChangedEvent fires when host authority moves to another player.
type HostChangedEvent struct {
	Player Player
}

// BeatmapChangedEvent fires when the host picks a different map. Only
// the id travels on the wire; metadata comes from the beatmap service.
type BeatmapChangedEvent struct {
	BeatmapID int64
}

// PlayingChangedEvent fires when the room flips between playing and not
// playing (start, finish or abort).
type PlayingChangedEvent struct {
	Playing bool
}

// MatchStartedEvent fires once the match actually begins.
type MatchStartedEvent struct{}

// MatchFinishedEvent fires when the match ends normally.
type MatchFinishedEvent struct{}

// AllPlayersReadyEvent fires when every occupied slot is ready.
type AllPlayersReadyEvent struct{}

// MessageEvent is a chat message in the room channel.
type MessageEvent struct {
	From    Player
	Content string
}

func (PlayerJoinedEvent) eventName() string    { return "playerJoined" }
func (PlayerLeftEvent) eventName() string      { return "playerLeft" }
func (HostChangedEvent) eventName() string     { return "hostChanged" }
func (BeatmapChangedEvent) eventName() string  { return "beatmapChanged" }
func (PlayingChangedEvent) eventName() string  { return "playingChanged" }
func (MatchStartedEvent) eventName() string    { return "matchStarted" }
func (MatchFinishedEvent) eventName() string   { return "matchFinished" }
func (AllPlayersReadyEvent) eventName() string { return "allPlayersReady" }
func (MessageEvent) eventName() string         { return "message" }

// bancho/interfaces.go
package bancho

import "time"

// Channel is one joined multiplayer room: the command sink plus the
// live room state and the typed event stream. Commands are fire and
// forget; the server's acknowledgement arrives as a later event.
type Channel interface {
	ID() int64
	Name() string

	// State returns a snapshot of the live room settings and slots.
	State() RoomState
	// RefreshSettings asks the server to re-send the room settings so
	// the next State call reflects them.
	RefreshSettings() error

	SetHost(playerID int64) error
	SetMap(beatmapID int64) error
	SetSettings(teamMode TeamMode, winCondition WinCondition, size int) error
	SetMods(mods Mods, freemod bool) error
	SetName(name string) error
	StartMatch(delay time.Duration) error
	AbortMatch() error
	Close() error
	SendMessage(text string) error

	// Events delivers room events one at a time. The channel is closed
	// when the room is closed or the connection drops.
	Events() <-chan Event
}

// Client manages the connection to the chat server and hands out room
// channels.
type Client interface {
	JoinLobby(id int64) (Channel, error)
	CreateLobby(name string) (Channel, error)
	Disconnect() error
}

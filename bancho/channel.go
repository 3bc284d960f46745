// bancho/channel.go
package bancho

import (
	"fmt"
	"sync"
	"time"
)

const maxSlots = 16

// ircChannel is the Channel implementation over one "#mp_<id>" IRC
// channel. It owns the live RoomState, updated from BanchoBot messages.
type ircChannel struct {
	client      *IRCClient
	id          int64
	channelName string

	mu      sync.RWMutex
	state   RoomState
	userIDs map[string]int64 // usernames seen in settings output
	closed  bool

	events chan Event
}

func newIRCChannel(client *IRCClient, id int64, channelName string) *ircChannel {
	return &ircChannel{
		client:      client,
		id:          id,
		channelName: channelName,
		state: RoomState{
			Size:  maxSlots,
			Slots: make([]Slot, maxSlots),
		},
		userIDs: make(map[string]int64),
		events:  make(chan Event, 64),
	}
}

func (ch *ircChannel) ID() int64 { return ch.id }

func (ch *ircChannel) Name() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.state.Name
}

func (ch *ircChannel) State() RoomState {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	snapshot := ch.state
	snapshot.Slots = make([]Slot, len(ch.state.Slots))
	copy(snapshot.Slots, ch.state.Slots)
	return snapshot
}

func (ch *ircChannel) RefreshSettings() error {
	return ch.command("!mp settings")
}

func (ch *ircChannel) SetHost(playerID int64) error {
	return ch.command(fmt.Sprintf("!mp host #%d", playerID))
}

func (ch *ircChannel) SetMap(beatmapID int64) error {
	return ch.command(fmt.Sprintf("!mp map %d", beatmapID))
}

func (ch *ircChannel) SetSettings(teamMode TeamMode, winCondition WinCondition, size int) error {
	return ch.command(fmt.Sprintf("!mp set %d %d %d", teamMode, winCondition, size))
}

func (ch *ircChannel) SetMods(mods Mods, freemod bool) error {
	text := mods.String()
	if freemod {
		text += " Freemod"
	}
	return ch.command("!mp mods " + text)
}

func (ch *ircChannel) SetName(name string) error {
	return ch.command("!mp name " + name)
}

func (ch *ircChannel) StartMatch(delay time.Duration) error {
	if seconds := int(delay.Seconds()); seconds > 0 {
		return ch.command(fmt.Sprintf("!mp start %d", seconds))
	}
	return ch.command("!mp start")
}

func (ch *ircChannel) AbortMatch() error {
	return ch.command("!mp abort")
}

func (ch *ircChannel) Close() error {
	if err := ch.command("!mp close"); err != nil {
		return err
	}
	ch.client.removeChannel(ch.channelName)
	return nil
}

func (ch *ircChannel) SendMessage(text string) error {
	return ch.client.privmsg(ch.channelName, text)
}

func (ch *ircChannel) Events() <-chan Event {
	return ch.events
}

func (ch *ircChannel) command(text string) error {
	ch.mu.RLock()
	closed := ch.closed
	ch.mu.RUnlock()
	if closed {
		return ErrLobbyClosed
	}
	return ch.client.privmsg(ch.channelName, text)
}

// emit delivers an event without blocking the read loop. When the
// buffer is full the event is dropped.
func (ch *ircChannel) emit(ev Event) {
	ch.mu.RLock()
	closed := ch.closed
	ch.mu.RUnlock()
	if closed {
		return
	}
	select {
	case ch.events <- ev:
	default:
	}
}

func (ch *ircChannel) shutdown() {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true
	ch.mu.Unlock()
	close(ch.events)
}

// resolveUser fills in the player id for a username, preferring ids
// already learned from "!mp settings" output over an API round trip.
func (ch *ircChannel) resolveUser(username string) Player {
	ch.mu.RLock()
	id, ok := ch.userIDs[username]
	ch.mu.RUnlock()
	if ok {
		return Player{ID: id, Username: username}
	}
	if ch.client.resolver != nil {
		if id, err := ch.client.resolver.UserID(username); err == nil {
			ch.mu.Lock()
			ch.userIDs[username] = id
			ch.mu.Unlock()
			return Player{ID: id, Username: username}
		}
	}
	return Player{Username: username}
}

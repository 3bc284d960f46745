// bancho/parse.go
package bancho

import (
	"regexp"
	"strconv"
	"strings"
)

// BanchoBot room message patterns. These are the only lines the bot
// depends on; everything else from BanchoBot is ignored.
var (
	reCreatedLobby   = regexp.MustCompile(`^Created the tournament match https://osu\.ppy\.sh/mp/(\d+) (.+)$`)
	rePlayerJoined   = regexp.MustCompile(`^(.+) joined in slot (\d+)(?: for team \w+)?\.$`)
	rePlayerLeft     = regexp.MustCompile(`^(.+) left the game\.$`)
	reBecameHost     = regexp.MustCompile(`^(.+) became the host\.$`)
	reChangedHost    = regexp.MustCompile(`^Changed match host to (.+)$`)
	reBeatmapChanged = regexp.MustCompile(`^Beatmap changed to: .+ \(https://osu\.ppy\.sh/b/(\d+)\)$`)
	reBeatmapSet     = regexp.MustCompile(`^Changed beatmap to https://osu\.ppy\.sh/b/(\d+) .+$`)
	reRoomName       = regexp.MustCompile(`^Room name: (.+), History: .+$`)
	reBeatmapLine    = regexp.MustCompile(`^Beatmap: https://osu\.ppy\.sh/b/(\d+) .+$`)
	reTeamMode       = regexp.MustCompile(`^Team mode: (\w+), Win condition: (\w+)$`)
	reActiveMods     = regexp.MustCompile(`^Active mods: (.+)$`)
	rePlayersCount   = regexp.MustCompile(`^Players: (\d+)$`)
	reSlotLine       = regexp.MustCompile(`^Slot (\d+)\s+(?:Not Ready|Ready|No Map)\s+https://osu\.ppy\.sh/u/(\d+)\s+(.+?)\s*(?:\[(.+)\])?$`)
)

func parseCreatedLobby(text string) (int64, bool) {
	m := reCreatedLobby.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

var teamModeNames = map[string]TeamMode{
	"HeadToHead": TeamModeHeadToHead,
	"TagCoop":    TeamModeTagCoop,
	"TeamVs":     TeamModeTeamVs,
	"TagTeamVs":  TeamModeTagTeamVs,
}

var winConditionNames = map[string]WinCondition{
	"Score":    WinConditionScore,
	"Accuracy": WinConditionAccuracy,
	"Combo":    WinConditionCombo,
	"ScoreV2":  WinConditionScoreV2,
}

var modLongNames = map[string]Mods{
	"NoFail":      ModNoFail,
	"Easy":        ModEasy,
	"Hidden":      ModHidden,
	"HardRock":    ModHardRock,
	"SuddenDeath": ModSuddenDeath,
	"DoubleTime":  ModDoubleTime,
	"Nightcore":   ModNightcore | ModDoubleTime,
	"Relax":       ModRelax,
	"HalfTime":    ModHalfTime,
	"Flashlight":  ModFlashlight,
	"SpunOut":     ModSpunOut,
}

// handleBanchoBotMessage updates the room state from one BanchoBot line
// and emits the matching typed events.
func (ch *ircChannel) handleBanchoBotMessage(text string) {
	switch {
	case text == "The match has started!":
		ch.mu.Lock()
		ch.state.Playing = true
		ch.mu.Unlock()
		ch.emit(PlayingChangedEvent{Playing: true})
		ch.emit(MatchStartedEvent{})

	case text == "The match has finished!":
		ch.mu.Lock()
		ch.state.Playing = false
		ch.mu.Unlock()
		ch.emit(MatchFinishedEvent{})
		ch.emit(PlayingChangedEvent{Playing: false})

	case text == "Aborted the match" || text == "Match Aborted":
		ch.mu.Lock()
		wasPlaying := ch.state.Playing
		ch.state.Playing = false
		ch.mu.Unlock()
		if wasPlaying {
			ch.emit(PlayingChangedEvent{Playing: false})
		}

	case text == "All players are ready":
		ch.emit(AllPlayersReadyEvent{})

	case text == "Cleared match host":
		ch.mu.Lock()
		ch.state.HostID = 0
		ch.mu.Unlock()

	default:
		ch.handleBanchoBotPattern(text)
	}
}

func (ch *ircChannel) handleBanchoBotPattern(text string) {
	if m := rePlayerJoined.FindStringSubmatch(text); m != nil {
		player := ch.resolveUser(m[1])
		slot, _ := strconv.Atoi(m[2])
		ch.mu.Lock()
		ch.placeInSlot(player, slot-1)
		ch.mu.Unlock()
		ch.emit(PlayerJoinedEvent{Player: player, Slot: slot})
		return
	}

	if m := rePlayerLeft.FindStringSubmatch(text); m != nil {
		player := ch.resolveUser(m[1])
		ch.mu.Lock()
		ch.removeFromSlots(player.Username)
		if ch.state.HostID != 0 && ch.state.HostID == player.ID {
			ch.state.HostID = 0
		}
		ch.mu.Unlock()
		ch.emit(PlayerLeftEvent{Player: player})
		return
	}

	if m := reBecameHost.FindStringSubmatch(text); m != nil {
		ch.hostChanged(m[1])
		return
	}
	if m := reChangedHost.FindStringSubmatch(text); m != nil {
		ch.hostChanged(m[1])
		return
	}

	if m := reBeatmapChanged.FindStringSubmatch(text); m != nil {
		ch.beatmapChanged(m[1])
		return
	}
	if m := reBeatmapSet.FindStringSubmatch(text); m != nil {
		ch.beatmapChanged(m[1])
		return
	}

	ch.handleSettingsLine(text)
}

func (ch *ircChannel) hostChanged(username string) {
	player := ch.resolveUser(username)
	ch.mu.Lock()
	ch.state.HostID = player.ID
	ch.mu.Unlock()
	ch.emit(HostChangedEvent{Player: player})
}

func (ch *ircChannel) beatmapChanged(idText string) {
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return
	}
	ch.mu.Lock()
	ch.state.BeatmapID = id
	ch.mu.Unlock()
	ch.emit(BeatmapChangedEvent{BeatmapID: id})
}

// handleSettingsLine consumes the "!mp settings" response lines.
func (ch *ircChannel) handleSettingsLine(text string) {
	if m := reRoomName.FindStringSubmatch(text); m != nil {
		ch.mu.Lock()
		ch.state.Name = m[1]
		ch.mu.Unlock()
		return
	}

	if m := reBeatmapLine.FindStringSubmatch(text); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			ch.mu.Lock()
			ch.state.BeatmapID = id
			ch.mu.Unlock()
		}
		return
	}

	if m := reTeamMode.FindStringSubmatch(text); m != nil {
		ch.mu.Lock()
		if tm, ok := teamModeNames[m[1]]; ok {
			ch.state.TeamMode = tm
		}
		if wc, ok := winConditionNames[m[2]]; ok {
			ch.state.WinCondition = wc
		}
		ch.mu.Unlock()
		return
	}

	if m := reActiveMods.FindStringSubmatch(text); m != nil {
		ch.mu.Lock()
		ch.state.Mods = 0
		ch.state.Freemod = false
		for _, name := range strings.Split(m[1], ", ") {
			if name == "Freemod" {
				ch.state.Freemod = true
				continue
			}
			if mod, ok := modLongNames[name]; ok {
				ch.state.Mods |= mod
			}
		}
		ch.mu.Unlock()
		return
	}

	if rePlayersCount.MatchString(text) {
		// A fresh settings dump follows; rebuild the slot list from it.
		ch.mu.Lock()
		ch.state.Slots = make([]Slot, maxSlots)
		ch.mu.Unlock()
		return
	}

	if m := reSlotLine.FindStringSubmatch(text); m != nil {
		slot, _ := strconv.Atoi(m[1])
		id, _ := strconv.ParseInt(m[2], 10, 64)
		username := strings.TrimSpace(m[3])
		player := Player{ID: id, Username: username}

		ch.mu.Lock()
		ch.userIDs[username] = id
		ch.placeInSlot(player, slot-1)
		if m[4] != "" && strings.Contains(m[4], "Host") {
			ch.state.HostID = id
		}
		ch.mu.Unlock()
		return
	}
}

// placeInSlot requires ch.mu to be held.
func (ch *ircChannel) placeInSlot(player Player, idx int) {
	if idx < 0 || idx >= len(ch.state.Slots) {
		return
	}
	// A player can only occupy one slot.
	ch.removeFromSlots(player.Username)
	ch.state.Slots[idx] = Slot{Occupied: true, Player: player}
}

// removeFromSlots requires ch.mu to be held.
func (ch *ircChannel) removeFromSlots(username string) {
	for i, s := range ch.state.Slots {
		if s.Occupied && s.Player.Username == username {
			ch.state.Slots[i] = Slot{}
		}
	}
}

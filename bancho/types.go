// bancho/types.go
package bancho

import "strings"

// TeamMode mirrors the multiplayer team modes of the room protocol.
type TeamMode int

const (
	TeamModeHeadToHead TeamMode = iota
	TeamModeTagCoop
	TeamModeTeamVs
	TeamModeTagTeamVs
)

// WinCondition mirrors the multiplayer win conditions.
type WinCondition int

const (
	WinConditionScore WinCondition = iota
	WinConditionAccuracy
	WinConditionCombo
	WinConditionScoreV2
)

// Mods is the osu! mod bitmask.
type Mods int64

const (
	ModNoFail      Mods = 1 << 0
	ModEasy        Mods = 1 << 1
	ModTouch       Mods = 1 << 2
	ModHidden      Mods = 1 << 3
	ModHardRock    Mods = 1 << 4
	ModSuddenDeath Mods = 1 << 5
	ModDoubleTime  Mods = 1 << 6
	ModRelax       Mods = 1 << 7
	ModHalfTime    Mods = 1 << 8
	ModNightcore   Mods = 1 << 9
	ModFlashlight  Mods = 1 << 10
	ModSpunOut     Mods = 1 << 12
)

var modShortNames = []struct {
	mod  Mods
	name string
}{
	{ModNoFail, "NF"},
	{ModEasy, "EZ"},
	{ModHidden, "HD"},
	{ModHardRock, "HR"},
	{ModSuddenDeath, "SD"},
	{ModNightcore, "NC"},
	{ModDoubleTime, "DT"},
	{ModRelax, "RX"},
	{ModHalfTime, "HT"},
	{ModFlashlight, "FL"},
	{ModSpunOut, "SO"},
}

// String renders the bitmask as the space-separated short mod names the
// "!mp mods" command expects. Nightcore implies DoubleTime in the mask,
// so DT is suppressed when NC is set.
func (m Mods) String() string {
	if m == 0 {
		return "None"
	}
	var parts []string
	for _, e := range modShortNames {
		if m&e.mod == 0 {
			continue
		}
		if e.mod == ModDoubleTime && m&ModNightcore != 0 {
			continue
		}
		parts = append(parts, e.name)
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, " ")
}

// ParseModNames converts short mod names back into a bitmask. Unknown
// names are ignored.
func ParseModNames(names []string) Mods {
	var m Mods
	for _, n := range names {
		for _, e := range modShortNames {
			if strings.EqualFold(n, e.name) {
				m |= e.mod
			}
		}
	}
	return m
}

// Player is a stable identity occupying a lobby slot.
type Player struct {
	ID       int64
	Username string
}

// Slot is an explicit occupied/empty variant so occupancy counting is a
// total function rather than a nil check.
type Slot struct {
	Occupied bool
	Player   Player
}

// OccupiedCount returns how many slots hold a player.
func OccupiedCount(slots []Slot) int {
	count := 0
	for _, s := range slots {
		if s.Occupied {
			count++
		}
	}
	return count
}

// RoomState is a point-in-time snapshot of the live room settings and
// slot list. The channel implementation is the source of truth; the
// session never invents players.
type RoomState struct {
	Name         string
	Size         int
	TeamMode     TeamMode
	WinCondition WinCondition
	Mods         Mods
	Freemod      bool
	HostID       int64 // 0 when no host is assigned
	Playing      bool
	BeatmapID    int64
	Slots        []Slot
}

// Players returns the players currently occupying a slot, in slot order.
func (s RoomState) Players() []Player {
	players := make([]Player, 0, len(s.Slots))
	for _, slot := range s.Slots {
		if slot.Occupied {
			players = append(players, slot.Player)
		}
	}
	return players
}

// PlayerCount is the number of occupied slots.
func (s RoomState) PlayerCount() int {
	return OccupiedCount(s.Slots)
}

package lobby

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/iWeeti/bancho-autohost/bancho"
	"github.com/iWeeti/bancho-autohost/models"
)

// MockChannel is a test double for the bancho.Channel interface. It
// records issued commands and lets tests mutate the room state
// directly.
type MockChannel struct {
	id       int64
	state    bancho.RoomState
	events   chan bancho.Event
	messages []string
	hostSet  []int64
	mapSet   []int64
	started  int
	startErr error
	aborted  int
	closed   bool
	modsSet  int
	nameSet  []string
}

func NewMockChannel(id int64) *MockChannel {
	return &MockChannel{
		id:     id,
		events: make(chan bancho.Event, 16),
		state:  bancho.RoomState{Size: 16},
	}
}

func (c *MockChannel) ID() int64               { return c.id }
func (c *MockChannel) Name() string            { return c.state.Name }
func (c *MockChannel) State() bancho.RoomState { return c.state }
func (c *MockChannel) RefreshSettings() error  { return nil }

func (c *MockChannel) SetHost(playerID int64) error {
	c.hostSet = append(c.hostSet, playerID)
	c.state.HostID = playerID
	return nil
}

func (c *MockChannel) SetMap(beatmapID int64) error {
	c.mapSet = append(c.mapSet, beatmapID)
	c.state.BeatmapID = beatmapID
	return nil
}

func (c *MockChannel) SetSettings(teamMode bancho.TeamMode, winCondition bancho.WinCondition, size int) error {
	c.state.TeamMode = teamMode
	c.state.WinCondition = winCondition
	c.state.Size = size
	return nil
}

func (c *MockChannel) SetMods(mods bancho.Mods, freemod bool) error {
	c.modsSet++
	c.state.Mods = mods
	c.state.Freemod = freemod
	return nil
}

func (c *MockChannel) SetName(name string) error {
	c.nameSet = append(c.nameSet, name)
	c.state.Name = name
	return nil
}

func (c *MockChannel) StartMatch(delay time.Duration) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.started++
	return nil
}

func (c *MockChannel) AbortMatch() error {
	c.aborted++
	c.state.Playing = false
	return nil
}

func (c *MockChannel) Close() error {
	c.closed = true
	return nil
}

func (c *MockChannel) SendMessage(text string) error {
	c.messages = append(c.messages, text)
	return nil
}

func (c *MockChannel) Events() <-chan bancho.Event { return c.events }

func (c *MockChannel) addPlayer(p bancho.Player) {
	c.state.Slots = append(c.state.Slots, bancho.Slot{Occupied: true, Player: p})
}

func (c *MockChannel) removePlayer(p bancho.Player) {
	for i, slot := range c.state.Slots {
		if slot.Occupied && slot.Player.ID == p.ID {
			c.state.Slots[i] = bancho.Slot{}
			return
		}
	}
}

func (c *MockChannel) lastMessage() string {
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[len(c.messages)-1]
}

// MockStore records persistence calls.
type MockStore struct {
	users  []models.User
	games  []models.GameRecord
	gameID int64
}

func (s *MockStore) UpsertUsers(ctx context.Context, users []models.User) error {
	s.users = append(s.users, users...)
	return nil
}

func (s *MockStore) SaveGame(ctx context.Context, record models.GameRecord) (int64, error) {
	s.games = append(s.games, record)
	s.gameID++
	return s.gameID, nil
}

// MockScores records score persistence requests.
type MockScores struct {
	calls []int64 // game ids
}

func (s *MockScores) SaveMatchScores(players []bancho.Player, lobbyID, gameID int64, elapsedSeconds float64) {
	s.calls = append(s.calls, gameID)
}

// MockMaps serves beatmaps from a fixed table.
type MockMaps struct {
	maps map[int64]models.Beatmap
}

func (m *MockMaps) Beatmap(ctx context.Context, id int64) (models.Beatmap, error) {
	return m.maps[id], nil
}

// MockMetrics counts sink calls.
type MockMetrics struct {
	started      int
	aborted      int
	startFailed  int
	lobbyPlayers int
}

func (m *MockMetrics) SetLobbyPlayers(lobbyID int64, name string, count int) {
	m.lobbyPlayers = count
}
func (m *MockMetrics) SetActiveLobbies(count int) {}
func (m *MockMetrics) MatchStarted()              { m.started++ }
func (m *MockMetrics) MatchAborted()              { m.aborted++ }
func (m *MockMetrics) StartFailed()               { m.startFailed++ }

type testLobby struct {
	manager *Manager
	channel *MockChannel
	store   *MockStore
	scores  *MockScores
	maps    *MockMaps
	metrics *MockMetrics
}

func newTestLobby(config models.LobbyConfig) *testLobby {
	channel := NewMockChannel(config.ID)
	store := &MockStore{}
	scores := &MockScores{}
	maps := &MockMaps{maps: make(map[int64]models.Beatmap)}
	metrics := &MockMetrics{}

	manager := NewManager(config, Deps{
		Channel: channel,
		Store:   store,
		Scores:  scores,
		Maps:    maps,
		Metrics: metrics,
	})
	return &testLobby{
		manager: manager,
		channel: channel,
		store:   store,
		scores:  scores,
		maps:    maps,
		metrics: metrics,
	}
}

func TestManager_FirstJoinBecomesHost(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Name: "test", Size: 16})
	alice := bancho.Player{ID: 1, Username: "alice"}

	tl.channel.addPlayer(alice)
	tl.manager.handleEvent(bancho.PlayerJoinedEvent{Player: alice})

	if len(tl.channel.hostSet) != 1 || tl.channel.hostSet[0] != alice.ID {
		t.Fatalf("Expected alice to be made host, got %v", tl.channel.hostSet)
	}
	if tl.manager.HostID() != alice.ID {
		t.Errorf("Expected host id %d, got %d", alice.ID, tl.manager.HostID())
	}
	// Rotation requeues the promoted player, so they stay in the queue.
	if !tl.manager.queue.Contains(alice) {
		t.Error("Promoted host should remain in the rotation")
	}
}

func TestManager_HostLeaveRotates(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16})
	alice := bancho.Player{ID: 1, Username: "alice"}
	bob := bancho.Player{ID: 2, Username: "bob"}

	tl.channel.addPlayer(alice)
	tl.manager.handleEvent(bancho.PlayerJoinedEvent{Player: alice})
	tl.channel.addPlayer(bob)
	tl.manager.handleEvent(bancho.PlayerJoinedEvent{Player: bob})
	tl.manager.handleEvent(bancho.HostChangedEvent{Player: alice})

	tl.channel.removePlayer(alice)
	tl.manager.handleEvent(bancho.PlayerLeftEvent{Player: alice})

	last := tl.channel.hostSet[len(tl.channel.hostSet)-1]
	if last != bob.ID {
		t.Errorf("Expected host to rotate to bob, got %d", last)
	}
	if tl.manager.queue.Contains(alice) {
		t.Error("Departed player should leave the rotation")
	}
}

func TestManager_InvalidMapReverted(t *testing.T) {
	maxLen := 300
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16, MaxLengthSeconds: &maxLen})
	tl.maps.maps[10] = models.Beatmap{ID: 10, TotalLength: 120, Title: "ok"}
	tl.maps.maps[20] = models.Beatmap{ID: 20, TotalLength: 999, Title: "marathon"}

	tl.manager.handleEvent(bancho.BeatmapChangedEvent{BeatmapID: 10})
	if current := tl.manager.CurrentBeatmap(); current == nil || current.ID != 10 {
		t.Fatal("Valid map should become the current map")
	}

	tl.manager.handleEvent(bancho.BeatmapChangedEvent{BeatmapID: 20})

	if current := tl.manager.CurrentBeatmap(); current.ID != 10 {
		t.Errorf("Invalid map should not replace the current map, got %d", current.ID)
	}
	if len(tl.channel.mapSet) == 0 || tl.channel.mapSet[len(tl.channel.mapSet)-1] != 10 {
		t.Errorf("Expected revert to map 10, got %v", tl.channel.mapSet)
	}
	found := false
	for _, msg := range tl.channel.messages {
		if strings.Contains(msg, "too long") {
			found = true
		}
	}
	if !found {
		t.Error("Expected a rejection message naming the reason")
	}
}

func TestManager_ValidMapStartsCountdown(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16})
	tl.maps.maps[10] = models.Beatmap{ID: 10, TotalLength: 120, Artist: "a", Title: "b"}

	tl.manager.handleEvent(bancho.BeatmapChangedEvent{BeatmapID: 10})

	if !tl.manager.CountdownActive() {
		t.Error("A valid map selection should arm the start countdown")
	}
	if tl.manager.State() != StateCountdownActive {
		t.Errorf("Expected countdown state, got %s", tl.manager.State())
	}
}

func TestManager_MatchCounters(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16})
	players := []bancho.Player{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
		{ID: 4, Username: "dave"},
	}
	for _, p := range players {
		tl.channel.addPlayer(p)
		tl.manager.handleEvent(bancho.PlayerJoinedEvent{Player: p})
	}
	tl.maps.maps[10] = models.Beatmap{ID: 10, TotalLength: 120}
	tl.manager.handleEvent(bancho.BeatmapChangedEvent{BeatmapID: 10})

	tl.channel.state.Playing = true
	tl.manager.handleEvent(bancho.PlayingChangedEvent{Playing: true})
	tl.manager.handleEvent(bancho.MatchStartedEvent{})

	if tl.metrics.started != 1 {
		t.Errorf("Expected 1 started metric, got %d", tl.metrics.started)
	}

	// One player bails mid-match.
	tl.channel.removePlayer(players[3])
	tl.manager.handleEvent(bancho.PlayerLeftEvent{Player: players[3]})

	tl.manager.handleEvent(bancho.MatchFinishedEvent{})
	tl.channel.state.Playing = false
	tl.manager.handleEvent(bancho.PlayingChangedEvent{Playing: false})

	if len(tl.store.games) != 1 {
		t.Fatalf("Expected one game record, got %d", len(tl.store.games))
	}
	game := tl.store.games[0]
	if game.CountStarted != 4 {
		t.Errorf("Expected 4 starters, got %d", game.CountStarted)
	}
	if game.CountLeft != 1 {
		t.Errorf("Expected 1 leaver, got %d", game.CountLeft)
	}
	if game.CountFinished != 3 {
		t.Errorf("Expected 3 finishers, got %d", game.CountFinished)
	}
	if game.BeatmapID != 10 {
		t.Errorf("Expected beatmap 10 on the record, got %d", game.BeatmapID)
	}
	if len(tl.scores.calls) != 1 {
		t.Errorf("Expected one score persistence call, got %d", len(tl.scores.calls))
	}

	// The host rotated after the match resolved.
	if tl.manager.State() != StateIdle {
		t.Errorf("Expected idle state after resolution, got %s", tl.manager.State())
	}
}

func TestManager_StartedMapGoneInvalidAborts(t *testing.T) {
	maxLen := 300
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16, MaxLengthSeconds: &maxLen})
	alice := bancho.Player{ID: 1, Username: "alice"}
	tl.channel.addPlayer(alice)
	tl.manager.handleEvent(bancho.PlayerJoinedEvent{Player: alice})

	tl.maps.maps[10] = models.Beatmap{ID: 10, TotalLength: 120}
	tl.manager.handleEvent(bancho.BeatmapChangedEvent{BeatmapID: 10})

	// Constraints tightened after selection.
	shorter := 60
	tl.manager.mu.Lock()
	tl.manager.config.MaxLengthSeconds = &shorter
	tl.manager.mu.Unlock()

	tl.channel.state.Playing = true
	tl.manager.handleEvent(bancho.PlayingChangedEvent{Playing: true})

	if tl.channel.aborted != 1 {
		t.Errorf("Expected one abort, got %d", tl.channel.aborted)
	}
	if tl.metrics.aborted != 1 {
		t.Errorf("Expected one aborted metric, got %d", tl.metrics.aborted)
	}
	found := false
	for _, msg := range tl.channel.messages {
		if msg == "Tried to start an invalid match, aborting." {
			found = true
		}
	}
	if !found {
		t.Error("Expected the abort announcement")
	}
	if tl.manager.State() != StateIdle {
		t.Errorf("Expected idle state after abort, got %s", tl.manager.State())
	}
}

func TestManager_StartRetriesBounded(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16})
	tl.channel.startErr = bancho.ErrNotConnected

	tl.manager.handleEvent(bancho.AllPlayersReadyEvent{})

	if tl.metrics.startFailed != maxStartAttempts {
		t.Errorf("Expected %d failed attempts, got %d", maxStartAttempts, tl.metrics.startFailed)
	}
	if tl.channel.lastMessage() != "Failed to start the match." {
		t.Errorf("Expected failure announcement, got %q", tl.channel.lastMessage())
	}
}

func TestManager_CountdownExpiredStaleWhilePlaying(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16})
	tl.channel.state.Playing = true

	tl.manager.onCountdownExpired()

	if tl.channel.started != 0 {
		t.Error("An expired timer must not start a match that is already running")
	}
	if len(tl.channel.messages) != 0 {
		t.Errorf("Expected no announcement, got %v", tl.channel.messages)
	}
}

func TestManager_ConfigDeleteClosesLobby(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16})

	stop := tl.manager.handleConfigUpdate(models.ConfigUpdate{Deleted: true})

	if !stop {
		t.Fatal("A deleted config should stop the session")
	}
	if !tl.channel.closed {
		t.Error("A deleted config should close the room")
	}
}

func TestManager_ForcedModsAbortDuringReconcile(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16, Mods: int64(bancho.ModDoubleTime)})
	tl.channel.state.Playing = true
	tl.channel.state.Mods = 0

	forced := tl.manager.reconcileConfig()

	if !forced {
		t.Fatal("Drifted mods should force a reconcile")
	}
	if tl.channel.modsSet != 1 {
		t.Errorf("Expected one mods command, got %d", tl.channel.modsSet)
	}
	if tl.channel.aborted != 1 {
		t.Errorf("Expected the running match to be aborted, got %d aborts", tl.channel.aborted)
	}
}

func TestManager_EmptyPlayingRoomAborts(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16})
	alice := bancho.Player{ID: 1, Username: "alice"}
	tl.channel.addPlayer(alice)
	tl.manager.handleEvent(bancho.PlayerJoinedEvent{Player: alice})

	tl.channel.state.Playing = true
	tl.manager.handleEvent(bancho.PlayingChangedEvent{Playing: true})

	tl.channel.removePlayer(alice)
	tl.manager.handleEvent(bancho.PlayerLeftEvent{Player: alice})

	if tl.channel.aborted != 1 {
		t.Errorf("Expected the abandoned match to be aborted, got %d", tl.channel.aborted)
	}
}

func TestManager_VoteQuorumRotatesOnlyOnce(t *testing.T) {
	tl := newTestLobby(models.LobbyConfig{ID: 1, Size: 16})
	players := []bancho.Player{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
		{ID: 4, Username: "dave"},
	}
	for _, p := range players {
		tl.channel.addPlayer(p)
		tl.manager.handleEvent(bancho.PlayerJoinedEvent{Player: p})
	}

	_, _, reached, err := tl.manager.RegisterSkipVote(players[1])
	if err != nil || reached {
		t.Fatalf("First vote of quorum 2 should not pass (reached=%v err=%v)", reached, err)
	}
	_, _, reached, err = tl.manager.RegisterSkipVote(players[2])
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reached {
		t.Fatal("Second vote should reach the quorum of 2")
	}
	if tl.manager.skipVotes.Len() != 0 {
		t.Error("Reached vote should clear the tracker")
	}
}

// lobby/lobby.go
package lobby

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/iWeeti/bancho-autohost/bancho"
	"github.com/iWeeti/bancho-autohost/logger"
	"github.com/iWeeti/bancho-autohost/models"
)

// State is the session's position in the match lifecycle.
type State int

const (
	StateIdle State = iota
	StateMapPending
	StateCountdownActive
	StatePlaying
	StateResolving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMapPending:
		return "map_pending"
	case StateCountdownActive:
		return "countdown"
	case StatePlaying:
		return "playing"
	case StateResolving:
		return "resolving"
	default:
		return "unknown"
	}
}

const (
	countdownSeconds = 60
	startGraceDelay  = 5 * time.Second
	maxStartAttempts = 5
)

// Deps are the collaborators a session needs. Channel, Store, Scores,
// Maps and Metrics are required; the rest may be nil.
type Deps struct {
	Channel      bancho.Channel
	Store        Store
	Scores       ScoreRecorder
	Maps         BeatmapSource
	Performance  PerformanceSource
	Metrics      MetricSink
	Commands     CommandHandler
	Subscription Subscription
}

// Manager is the per-lobby session: the sole writer of lobby state.
// Every input (room events, chat commands, config updates, the start
// timer) is funneled into one event loop and processed to completion
// before the next, so no two inputs for the same lobby interleave.
type Manager struct {
	deps Deps

	mu               sync.RWMutex
	config           models.LobbyConfig
	state            State
	hostID           int64
	currentMap       *models.Beatmap
	previousMap      *models.Beatmap
	startedPlayingAt time.Time
	countStarted     int
	countLeft        int

	// Only touched from the event loop.
	queue      *RotationQueue
	skipVotes  *VoteTracker
	stopVotes  *VoteTracker
	startVotes *VoteTracker

	startTimer *StartTimer
	timerFired chan struct{}

	ctx context.Context
}

// NewManager builds a session around an already-joined channel.
func NewManager(config models.LobbyConfig, deps Deps) *Manager {
	return &Manager{
		deps:       deps,
		config:     config,
		state:      StateIdle,
		queue:      NewRotationQueue(),
		skipVotes:  NewVoteTracker("skip"),
		stopVotes:  NewVoteTracker("stop"),
		startVotes: NewVoteTracker("start"),
		startTimer: NewStartTimer(),
		timerFired: make(chan struct{}, 1),
		ctx:        context.Background(),
	}
}

// Run drives the session until the channel closes, the config row is
// deleted or the context is cancelled. It owns all state mutation.
func (m *Manager) Run(ctx context.Context) {
	m.ctx = ctx
	defer m.Destroy()

	// Mirror of the construction path: reconcile once against the
	// stored config and seed the rotation from the current slots.
	m.reconcileConfig()
	m.queue.Sync(m.deps.Channel.State().Players())
	if m.deps.Channel.State().HostID == 0 && m.queue.Len() > 0 {
		m.rotateHost()
	}
	m.updatePlayerGauge()

	updates := m.updates()
	for {
		select {
		case ev, ok := <-m.deps.Channel.Events():
			if !ok {
				return
			}
			m.handleEvent(ev)
		case up, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if stop := m.handleConfigUpdate(up); stop {
				return
			}
		case <-m.timerFired:
			m.onCountdownExpired()
		case <-ctx.Done():
			return
		}
	}
}

// Destroy tears down the config subscription and any pending timer.
// Safe to call more than once.
func (m *Manager) Destroy() {
	m.startTimer.Cancel()
	if m.deps.Subscription != nil {
		if err := m.deps.Subscription.Close(); err != nil {
			logger.Log.Warnf("%s: closing config subscription: %v", m.logName(), err)
		}
	}
}

func (m *Manager) updates() <-chan models.ConfigUpdate {
	if m.deps.Subscription == nil {
		return nil
	}
	return m.deps.Subscription.Updates()
}

func (m *Manager) handleEvent(ev bancho.Event) {
	switch e := ev.(type) {
	case bancho.PlayerJoinedEvent:
		m.onPlayerJoined(e.Player)
	case bancho.PlayerLeftEvent:
		m.onPlayerLeft(e.Player)
	case bancho.HostChangedEvent:
		m.onHostChanged(e.Player)
	case bancho.BeatmapChangedEvent:
		m.onBeatmapChanged(e.BeatmapID)
	case bancho.PlayingChangedEvent:
		m.onPlayingChanged(e.Playing)
	case bancho.MatchStartedEvent:
		m.onMatchStarted()
	case bancho.MatchFinishedEvent:
		m.onMatchFinished()
	case bancho.AllPlayersReadyEvent:
		m.onAllPlayersReady()
	case bancho.MessageEvent:
		m.onMessage(e)
	}
}

// --- event handlers ---

func (m *Manager) onPlayerJoined(player bancho.Player) {
	m.queue.Enqueue(player)
	if m.deps.Channel.State().HostID == 0 {
		m.rotateHost()
	}
	m.updatePlayerGauge()
}

func (m *Manager) onPlayerLeft(player bancho.Player) {
	m.mu.Lock()
	playing := m.state == StatePlaying
	if playing {
		m.countLeft++
	}
	wasHost := m.hostID != 0 && m.hostID == player.ID
	m.mu.Unlock()

	m.queue.Remove(player)
	if wasHost {
		m.rotateHost()
	}
	m.skipVotes.Remove(player)
	m.stopVotes.Remove(player)
	m.startVotes.Remove(player)

	state := m.deps.Channel.State()
	if state.PlayerCount() == 0 && state.Playing {
		if err := m.deps.Channel.AbortMatch(); err != nil {
			logger.Log.Errorf("%s: aborting empty match: %v", m.logName(), err)
		}
		m.deps.Metrics.MatchAborted()
	}
	m.updatePlayerGauge()
}

func (m *Manager) onHostChanged(player bancho.Player) {
	m.mu.Lock()
	m.hostID = player.ID
	m.mu.Unlock()
	// Host authority moved; pending votes no longer apply.
	m.resetVotes()
}

func (m *Manager) onBeatmapChanged(beatmapID int64) {
	m.startTimer.Cancel()

	if beatmapID == 0 || m.deps.Channel.State().Playing {
		return
	}

	beatmap, err := m.deps.Maps.Beatmap(m.ctx, beatmapID)
	if err != nil {
		logger.Log.Errorf("%s: fetching beatmap %d: %v", m.logName(), beatmapID, err)
		return
	}

	if err := CheckBeatmap(beatmap, m.Config()); err != nil {
		m.sendMessage(capitalize(err.Error()))
		m.mu.RLock()
		previous := m.previousMap
		m.mu.RUnlock()
		if previous != nil {
			if err := m.deps.Channel.SetMap(previous.ID); err != nil {
				logger.Log.Errorf("%s: reverting to previous map: %v", m.logName(), err)
			}
		}
		return
	}

	m.mu.Lock()
	m.previousMap = &beatmap
	m.currentMap = &beatmap
	m.mu.Unlock()

	m.announceBeatmap(beatmap)
	m.StartCountdown(countdownSeconds)
}

func (m *Manager) onPlayingChanged(playing bool) {
	m.resetVotes()

	if playing {
		m.startTimer.Cancel()

		if forced := m.reconcileConfig(); forced {
			m.setState(StateIdle)
			return
		}

		m.mu.RLock()
		current := m.currentMap
		m.mu.RUnlock()
		if current != nil {
			if err := CheckBeatmap(*current, m.Config()); err != nil {
				m.abortInvalidMatch()
				return
			}
		}

		state := m.deps.Channel.State()
		m.mu.Lock()
		m.state = StatePlaying
		m.countStarted = state.PlayerCount()
		m.countLeft = 0
		m.mu.Unlock()
		m.deps.Metrics.MatchStarted()
		return
	}

	m.setState(StateResolving)
	m.rotateHost()
	m.setState(StateIdle)
}

func (m *Manager) onMatchStarted() {
	m.mu.Lock()
	m.startedPlayingAt = time.Now()
	m.mu.Unlock()
}

func (m *Manager) onMatchFinished() {
	m.mu.Lock()
	var elapsed float64
	if !m.startedPlayingAt.IsZero() {
		elapsed = time.Since(m.startedPlayingAt).Seconds()
	}
	m.startedPlayingAt = time.Time{}
	started := m.countStarted
	left := m.countLeft
	current := m.currentMap
	m.mu.Unlock()

	finished := started - left
	if finished < 0 {
		finished = 0
	}

	var beatmapID int64
	if current != nil {
		beatmapID = current.ID
	}

	record := models.GameRecord{
		LobbyID:       m.Config().ID,
		BeatmapID:     beatmapID,
		Duration:      elapsed,
		CountStarted:  started,
		CountLeft:     left,
		CountFinished: finished,
	}
	gameID, err := m.deps.Store.SaveGame(m.ctx, record)
	if err != nil {
		logger.Log.Errorf("%s: saving game record: %v", m.logName(), err)
	}

	// Score persistence is deferred and per-player so a slow or failing
	// score source never blocks the lobby.
	m.deps.Scores.SaveMatchScores(m.deps.Channel.State().Players(), m.Config().ID, gameID, elapsed)
}

func (m *Manager) onAllPlayersReady() {
	var lastErr error
	for attempt := 1; attempt <= maxStartAttempts; attempt++ {
		if err := m.deps.Channel.StartMatch(startGraceDelay); err != nil {
			lastErr = err
			m.deps.Metrics.StartFailed()
			logger.Log.Errorf("%s: failed to start match (attempt %d/%d): %v", m.logName(), attempt, maxStartAttempts, err)
			continue
		}
		return
	}
	logger.Log.Errorf("%s: giving up starting the match after %d attempts: %v", m.logName(), maxStartAttempts, lastErr)
	m.sendMessage("Failed to start the match.")
}

func (m *Manager) onMessage(e bancho.MessageEvent) {
	if m.deps.Commands == nil {
		return
	}
	m.deps.Commands.Handle(m, e.From, e.Content)
}

// onCountdownExpired fires on the event loop when the start timer runs
// out. A match already in progress makes the timer stale.
func (m *Manager) onCountdownExpired() {
	if m.deps.Channel.State().Playing {
		return
	}
	m.sendMessage("Starting match.")
	if err := m.deps.Channel.StartMatch(0); err != nil {
		logger.Log.Errorf("%s: starting match from timer: %v", m.logName(), err)
	}
	m.setState(StateMapPending)
}

func (m *Manager) handleConfigUpdate(up models.ConfigUpdate) bool {
	if up.Deleted {
		logger.Log.Infof("%s: config deleted, closing lobby", m.logName())
		if err := m.deps.Channel.Close(); err != nil {
			logger.Log.Errorf("%s: closing lobby: %v", m.logName(), err)
		}
		return true
	}
	if up.Config != nil {
		logger.Log.Infof("%s: received config update", m.logName())
		m.mu.Lock()
		m.config = *up.Config
		m.mu.Unlock()
		m.reconcileConfig()
	}
	return false
}

// --- operations shared with the command layer ---

// RotateHost pops the front of the rotation, makes that player host and
// requeues them at the back. No-op when the queue is empty.
func (m *Manager) RotateHost() {
	m.rotateHost()
}

func (m *Manager) rotateHost() {
	next, ok := m.queue.Rotate()
	if !ok {
		return
	}
	if err := m.deps.Channel.SetHost(next.ID); err != nil {
		logger.Log.Errorf("%s: setting host to %s: %v", m.logName(), next.Username, err)
	}
	m.mu.Lock()
	m.hostID = next.ID
	m.mu.Unlock()
	m.resetVotes()
}

// StartCountdown announces and arms the deferred start.
func (m *Manager) StartCountdown(seconds int) {
	m.sendMessage(fmt.Sprintf("Starting match in %d seconds, use !stop to cancel the timer.", seconds))
	m.startTimer.Schedule(time.Duration(seconds)*time.Second, func() {
		select {
		case m.timerFired <- struct{}{}:
		default:
		}
	})
	m.setState(StateCountdownActive)
}

// CancelCountdown stops the pending start timer, reporting whether one
// was active.
func (m *Manager) CancelCountdown() bool {
	cancelled := m.startTimer.Cancel()
	if cancelled {
		m.setState(StateMapPending)
	}
	return cancelled
}

// CountdownActive reports whether a start timer is pending.
func (m *Manager) CountdownActive() bool {
	return m.startTimer.Active()
}

// StartMatchNow issues an immediate start.
func (m *Manager) StartMatchNow() error {
	return m.deps.Channel.StartMatch(0)
}

func (m *Manager) RegisterSkipVote(voter bancho.Player) (tally, quorum int, reached bool, err error) {
	return m.skipVotes.Register(voter, m.PresentCount())
}

func (m *Manager) RegisterStopVote(voter bancho.Player) (tally, quorum int, reached bool, err error) {
	return m.stopVotes.Register(voter, m.PresentCount())
}

func (m *Manager) RegisterStartVote(voter bancho.Player) (tally, quorum int, reached bool, err error) {
	return m.startVotes.Register(voter, m.PresentCount())
}

// --- accessors ---

func (m *Manager) ID() int64 {
	return m.Config().ID
}

func (m *Manager) Config() models.LobbyConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *Manager) HostID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hostID
}

func (m *Manager) Playing() bool {
	m.mu.RLock()
	playing := m.state == StatePlaying
	m.mu.RUnlock()
	return playing || m.deps.Channel.State().Playing
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) PresentCount() int {
	return m.deps.Channel.State().PlayerCount()
}

func (m *Manager) QueuePlayers() []bancho.Player {
	return m.queue.Players()
}

func (m *Manager) QueuePosition(p bancho.Player) int {
	return m.queue.Position(p)
}

func (m *Manager) CurrentBeatmap() *models.Beatmap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.currentMap == nil {
		return nil
	}
	beatmap := *m.currentMap
	return &beatmap
}

// MatchStartedAt returns the in-progress match start time, if any.
func (m *Manager) MatchStartedAt() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.startedPlayingAt, !m.startedPlayingAt.IsZero()
}

// SendMessage sends chat to the room, logging failures.
func (m *Manager) SendMessage(text string) {
	m.sendMessage(text)
}

// --- internals ---

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) resetVotes() {
	m.skipVotes.Reset()
	m.stopVotes.Reset()
	m.startVotes.Reset()
}

func (m *Manager) abortInvalidMatch() {
	if m.deps.Channel.State().Playing {
		if err := m.deps.Channel.AbortMatch(); err != nil {
			logger.Log.Errorf("%s: aborting match: %v", m.logName(), err)
		}
	}
	m.rotateHost()
	m.sendMessage("Tried to start an invalid match, aborting.")
	m.deps.Metrics.MatchAborted()
	m.setState(StateIdle)
}

func (m *Manager) announceBeatmap(beatmap models.Beatmap) {
	m.sendMessage(fmt.Sprintf(
		"[https://osu.ppy.sh/b/%d %s - %s] - ([https://beatconnect.io/b/%d BeatConnect Mirror] - [https://osu.direct/d/%d osu.direct Mirror])",
		beatmap.ID, beatmap.Artist, beatmap.Title, beatmap.ID, beatmap.ID,
	))
	m.sendMessage(fmt.Sprintf(
		"(Star Rating: %.2f | %s | Length: %s | BPM: %.0f)",
		beatmap.Stars, beatmap.RankedStatus, FormatLength(beatmap.TotalLength), beatmap.BPM,
	))

	line := fmt.Sprintf("(AR: %.1f | CS: %.1f | OD: %.1f | HP: %.1f", beatmap.AR, beatmap.CS, beatmap.OD, beatmap.HP)
	if m.deps.Performance != nil {
		if figures, err := m.deps.Performance.ForBeatmap(m.ctx, beatmap.ID); err == nil {
			line += fmt.Sprintf(" | 100%%: %dpp | 98%%: %dpp | 95%%: %dpp",
				int(math.Round(figures.PP100)), int(math.Round(figures.PP98)), int(math.Round(figures.PP95)))
		} else {
			logger.Log.Warnf("%s: performance lookup for %d: %v", m.logName(), beatmap.ID, err)
		}
	}
	m.sendMessage(line + ")")
}

func (m *Manager) updatePlayerGauge() {
	state := m.deps.Channel.State()
	name := state.Name
	if name == "" {
		name = m.Config().Name
	}
	m.deps.Metrics.SetLobbyPlayers(m.Config().ID, name, state.PlayerCount())
}

func (m *Manager) sendMessage(text string) {
	if err := m.deps.Channel.SendMessage(text); err != nil && !errors.Is(err, bancho.ErrLobbyClosed) {
		logger.Log.Errorf("%s: sending message: %v", m.logName(), err)
	}
}

func (m *Manager) logName() string {
	return fmt.Sprintf("#mp_%d", m.Config().ID)
}

// FormatLength renders seconds as mm:ss.
func FormatLength(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// lobby/registry.go
package lobby

import (
	"sync"
)

// PlayerStatus is one occupied slot in a status snapshot.
type PlayerStatus struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"is_host"`
}

// BeatmapStatus is the current map in a status snapshot.
type BeatmapStatus struct {
	ID      int64   `json:"id"`
	SetID   int64   `json:"set_id"`
	Artist  string  `json:"artist"`
	Title   string  `json:"title"`
	Version string  `json:"version"`
	Stars   float64 `json:"stars"`
}

// Status is a read-only snapshot of one lobby, safe to serve from other
// goroutines.
type Status struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Size          int            `json:"size"`
	SlotsOccupied int            `json:"slots_occupied"`
	Playing       bool           `json:"playing"`
	State         string         `json:"state"`
	Players       []PlayerStatus `json:"players"`
	Beatmap       *BeatmapStatus `json:"beatmap,omitempty"`
}

// Status builds a point-in-time snapshot of the lobby.
func (m *Manager) Status() Status {
	state := m.deps.Channel.State()
	cfg := m.Config()

	name := state.Name
	if name == "" {
		name = cfg.Name
	}

	players := make([]PlayerStatus, 0, state.PlayerCount())
	for _, p := range state.Players() {
		players = append(players, PlayerStatus{
			ID:       p.ID,
			Username: p.Username,
			IsHost:   state.HostID != 0 && p.ID == state.HostID,
		})
	}

	var beatmap *BeatmapStatus
	if current := m.CurrentBeatmap(); current != nil {
		beatmap = &BeatmapStatus{
			ID:      current.ID,
			SetID:   current.SetID,
			Artist:  current.Artist,
			Title:   current.Title,
			Version: current.Version,
			Stars:   current.Stars,
		}
	}

	return Status{
		ID:            cfg.ID,
		Name:          name,
		Size:          cfg.Size,
		SlotsOccupied: state.PlayerCount(),
		Playing:       state.Playing,
		State:         m.State().String(),
		Players:       players,
		Beatmap:       beatmap,
	}
}

// Registry tracks every live lobby session.
type Registry struct {
	mu      sync.RWMutex
	lobbies map[int64]*Manager
	metrics MetricSink
}

func NewRegistry(metrics MetricSink) *Registry {
	return &Registry{
		lobbies: make(map[int64]*Manager),
		metrics: metrics,
	}
}

func (r *Registry) Add(m *Manager) {
	r.mu.Lock()
	r.lobbies[m.ID()] = m
	count := len(r.lobbies)
	r.mu.Unlock()
	r.metrics.SetActiveLobbies(count)
}

func (r *Registry) Remove(id int64) {
	r.mu.Lock()
	delete(r.lobbies, id)
	count := len(r.lobbies)
	r.mu.Unlock()
	r.metrics.SetActiveLobbies(count)
}

func (r *Registry) Get(id int64) (*Manager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.lobbies[id]
	return m, ok
}

func (r *Registry) All() []*Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Manager, 0, len(r.lobbies))
	for _, m := range r.lobbies {
		out = append(out, m)
	}
	return out
}

// Statuses snapshots every lobby for the status endpoints.
func (r *Registry) Statuses() []Status {
	managers := r.All()
	statuses := make([]Status, 0, len(managers))
	for _, m := range managers {
		statuses = append(statuses, m.Status())
	}
	return statuses
}

// lobby/interfaces.go
package lobby

import (
	"context"

	"github.com/iWeeti/bancho-autohost/bancho"
	"github.com/iWeeti/bancho-autohost/models"
)

// Store is the slice of persistence the session needs. Defined here to
// keep the lobby package free of storage imports.
type Store interface {
	UpsertUsers(ctx context.Context, users []models.User) error
	SaveGame(ctx context.Context, record models.GameRecord) (int64, error)
}

// ScoreRecorder persists the match results for every present player,
// decoupled from the event loop. Implementations must isolate failures
// per player.
type ScoreRecorder interface {
	SaveMatchScores(players []bancho.Player, lobbyID, gameID int64, elapsedSeconds float64)
}

// BeatmapSource looks up map metadata by id.
type BeatmapSource interface {
	Beatmap(ctx context.Context, id int64) (models.Beatmap, error)
}

// PerformanceSource computes pp figures for a map; used only to format
// announcement text.
type PerformanceSource interface {
	ForBeatmap(ctx context.Context, id int64) (models.PerformanceFigures, error)
}

// MetricSink receives per-lobby metrics. It must tolerate concurrent
// writes from different lobbies.
type MetricSink interface {
	SetLobbyPlayers(lobbyID int64, name string, count int)
	SetActiveLobbies(count int)
	MatchStarted()
	MatchAborted()
	StartFailed()
}

// Subscription delivers external configuration updates for one lobby.
// Injected at construction and torn down on destroy.
type Subscription interface {
	Updates() <-chan models.ConfigUpdate
	Close() error
}

// CommandHandler processes chat messages. Invoked from inside the event
// loop, so handlers may call back into the Manager freely.
type CommandHandler interface {
	Handle(m *Manager, from bancho.Player, content string)
}

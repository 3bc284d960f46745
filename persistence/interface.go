// persistence/interface.go
package persistence

import (
	"context"
	"fmt"

	"github.com/iWeeti/bancho-autohost/models"
)

// Database is the full storage surface. The lobby and commands packages
// each depend on their own narrow slice of it.
type Database interface {
	Lobbies(ctx context.Context) ([]models.LobbyConfig, error)
	Lobby(ctx context.Context, lobbyID int64) (models.LobbyConfig, error)
	UpdateLobby(ctx context.Context, cfg models.LobbyConfig) error
	UpsertUsers(ctx context.Context, users []models.User) error
	SaveGame(ctx context.Context, record models.GameRecord) (int64, error)
	SaveScore(ctx context.Context, score models.Score) error
	PlaytimeSeconds(ctx context.Context, userID int64) (int64, error)
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)

// services/score_service.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/iWeeti/bancho-autohost/bancho"
	"github.com/iWeeti/bancho-autohost/logger"
	"github.com/iWeeti/bancho-autohost/models"
	"github.com/iWeeti/bancho-autohost/osuapi"
	"github.com/iWeeti/bancho-autohost/persistence"
)

// scoreFetchDelay gives the osu! API time to index the scores after the
// match finishes.
const scoreFetchDelay = 5 * time.Second

// ScoreService persists each present player's most recent score after a
// match, off the lobby event loop. One player failing never blocks the
// others.
type ScoreService struct {
	db  persistence.Database
	api *osuapi.Client
	wg  sync.WaitGroup
}

func NewScoreService(db persistence.Database, api *osuapi.Client) *ScoreService {
	return &ScoreService{db: db, api: api}
}

// SaveMatchScores implements lobby.ScoreRecorder.
func (s *ScoreService) SaveMatchScores(players []bancho.Player, lobbyID, gameID int64, elapsedSeconds float64) {
	for _, player := range players {
		if player.ID == 0 {
			continue
		}
		s.wg.Add(1)
		go func(p bancho.Player) {
			defer s.wg.Done()
			s.saveScore(p, lobbyID, gameID, elapsedSeconds)
		}(player)
	}
}

func (s *ScoreService) saveScore(player bancho.Player, lobbyID, gameID int64, elapsedSeconds float64) {
	time.Sleep(scoreFetchDelay)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recent, err := s.api.UserRecent(ctx, player.ID)
	if err != nil {
		logger.Log.Warnf("score service: recent score for %s (%d): %v", player.Username, player.ID, err)
		return
	}

	// A stale score means the player sat the match out.
	if time.Since(recent.PlayedAt) > 10*time.Minute {
		return
	}

	score := models.Score{
		OsuUserID:  player.ID,
		OsuScoreID: recent.ScoreID,
		BeatmapID:  recent.BeatmapID,
		LobbyID:    lobbyID,
		GameID:     gameID,
		TotalScore: recent.Score,
		MaxCombo:   recent.MaxCombo,
		Count300:   recent.Count300,
		Count100:   recent.Count100,
		Count50:    recent.Count50,
		CountMiss:  recent.CountMiss,
		Mods:       recent.Mods,
		Rank:       recent.Rank,
		Time:       elapsedSeconds,
		PlayedAt:   recent.PlayedAt,
	}
	if err := s.db.SaveScore(ctx, score); err != nil {
		logger.Log.Errorf("score service: save score for %s (%d): %v", player.Username, player.ID, err)
	}
}

// Wait blocks until in-flight score saves are done. Called on shutdown.
func (s *ScoreService) Wait() {
	s.wg.Wait()
}

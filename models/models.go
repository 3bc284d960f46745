// models/models.go
package models

import (
	"time"
)

// LobbyConfig is the full per-lobby configuration snapshot. It is only
// ever replaced as a whole unit; partial patches are not supported.
type LobbyConfig struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Size             int      `json:"size"`
	TeamMode         int      `json:"team_mode"`
	WinCondition     int      `json:"win_condition"`
	Mods             int64    `json:"mods"`
	Freemod          bool     `json:"free_mod"`
	MinLengthSeconds *int     `json:"min_length_seconds"`
	MaxLengthSeconds *int     `json:"max_length_seconds"`
	StarRatingMin    *float64 `json:"star_rating_min"`
	StarRatingMax    *float64 `json:"star_rating_max"`
	StarRatingError  float64  `json:"star_rating_error"`
}

// ConfigUpdate is delivered on a lobby's config subscription channel.
// Either Config is set (full replace) or Deleted is true.
type ConfigUpdate struct {
	Config  *LobbyConfig
	Deleted bool
}

// User is an osu! account seen in one of the lobbies.
type User struct {
	OsuID    int64  `json:"osu_id"`
	Username string `json:"username"`
}

// Beatmap carries the map metadata the bot cares about. Only length and
// star rating matter for validation; the rest is display material.
type Beatmap struct {
	ID           int64   `json:"id"`
	SetID        int64   `json:"set_id"`
	Artist       string  `json:"artist"`
	Title        string  `json:"title"`
	Version      string  `json:"version"`
	TotalLength  int     `json:"total_length"` // seconds
	Stars        float64 `json:"stars"`
	BPM          float64 `json:"bpm"`
	AR           float64 `json:"ar"`
	CS           float64 `json:"cs"`
	OD           float64 `json:"od"`
	HP           float64 `json:"hp"`
	MaxCombo     int     `json:"max_combo"`
	RankedStatus string  `json:"ranked_status"`
}

// GameRecord is one finished (or aborted) match.
type GameRecord struct {
	LobbyID       int64   `json:"lobby_id"`
	BeatmapID     int64   `json:"beatmap_id"`
	Duration      float64 `json:"duration"` // seconds of actual play time
	CountStarted  int     `json:"count_started"`
	CountLeft     int     `json:"count_left"`
	CountFinished int     `json:"count_finished"`
}

// UserScore is a single score as returned by the osu! API recent-scores
// endpoint.
type UserScore struct {
	ScoreID   int64     `json:"score_id"`
	BeatmapID int64     `json:"beatmap_id"`
	Score     int64     `json:"score"`
	MaxCombo  int       `json:"max_combo"`
	Count300  int       `json:"count_300"`
	Count100  int       `json:"count_100"`
	Count50   int       `json:"count_50"`
	CountMiss int       `json:"count_miss"`
	CountGeki int       `json:"count_geki"`
	CountKatu int       `json:"count_katu"`
	Perfect   bool      `json:"perfect"`
	Mods      int64     `json:"mods"`
	Rank      string    `json:"rank"`
	PlayedAt  time.Time `json:"played_at"`
}

// Score is the persisted form of a player's score for one game.
type Score struct {
	OsuUserID  int64     `json:"osu_user_id"`
	OsuScoreID int64     `json:"osu_score_id"`
	BeatmapID  int64     `json:"beatmap_id"`
	LobbyID    int64     `json:"lobby_id"`
	GameID     int64     `json:"game_id"`
	TotalScore int64     `json:"total_score"`
	MaxCombo   int       `json:"max_combo"`
	Count300   int       `json:"count_300"`
	Count100   int       `json:"count_100"`
	Count50    int       `json:"count_50"`
	CountMiss  int       `json:"count_miss"`
	Mods       int64     `json:"mods"`
	Rank       string    `json:"rank"`
	Time       float64   `json:"time"`
	PlayedAt   time.Time `json:"played_at"`
}

// PerformanceFigures are pp values at the fixed accuracy reference
// points, plus the figure for a concrete score when one was supplied.
type PerformanceFigures struct {
	PP100   float64  `json:"pp_100"`
	PP98    float64  `json:"pp_98"`
	PP95    float64  `json:"pp_95"`
	ScorePP *float64 `json:"score_pp,omitempty"`
}

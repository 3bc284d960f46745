// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormLobby is the stored lobby configuration row.
type GormLobby struct {
	gorm.Model
	LobbyID          int64  `gorm:"uniqueIndex;not null"`
	Name             string `gorm:"not null"`
	Size             int    `gorm:"default:16"`
	TeamMode         int    `gorm:"default:0"`
	WinCondition     int    `gorm:"default:0"`
	Mods             int64  `gorm:"default:0"`
	Freemod          bool   `gorm:"default:false"`
	MinLengthSeconds *int
	MaxLengthSeconds *int
	StarRatingMin    *float64
	StarRatingMax    *float64
	StarRatingError  float64 `gorm:"default:0"`
}

func (GormLobby) TableName() string { return "lobbies" }

// GormUser is an osu! account, upserted whenever a player is seen in a
// lobby slot.
type GormUser struct {
	gorm.Model
	OsuID    int64  `gorm:"uniqueIndex;not null"`
	Username string `gorm:"not null"`
}

func (GormUser) TableName() string { return "users" }

// GormGame is one finished match.
type GormGame struct {
	gorm.Model
	LobbyID       int64   `gorm:"index;not null"`
	BeatmapID     int64   `gorm:"not null"`
	Duration      float64 `gorm:"default:0"` // play time in seconds
	CountStarted  int     `gorm:"default:0"`
	CountLeft     int     `gorm:"default:0"`
	CountFinished int     `gorm:"default:0"`
}

func (GormGame) TableName() string { return "games" }

// GormScore is a player's persisted score for one game.
type GormScore struct {
	gorm.Model
	OsuUserID  int64 `gorm:"index;not null"`
	OsuScoreID int64 `gorm:"default:0"`
	BeatmapID  int64 `gorm:"not null"`
	LobbyID    int64 `gorm:"index;not null"`
	GameID     int64 `gorm:"index;default:0"`
	TotalScore int64 `gorm:"default:0"`
	MaxCombo   int   `gorm:"default:0"`
	Count300   int   `gorm:"default:0"`
	Count100   int   `gorm:"default:0"`
	Count50    int   `gorm:"default:0"`
	CountMiss  int   `gorm:"default:0"`
	Mods       int64 `gorm:"default:0"`
	Rank       string
	Time       float64 `gorm:"default:0"` // seconds of play time credited
	PlayedAt   time.Time
}

func (GormScore) TableName() string { return "scores" }

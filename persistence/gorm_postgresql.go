// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/iWeeti/bancho-autohost/models"
)

// GormPostgreSQL implements Database on top of GORM.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := pqDSN(host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}
	if err := installNotifyTriggers(sqlDB); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormLobby{},
		&models.GormUser{},
		&models.GormGame{},
		&models.GormScore{},
	)
}

// Lobbies returns every stored lobby configuration.
func (p *GormPostgreSQL) Lobbies(ctx context.Context) ([]models.LobbyConfig, error) {
	var rows []models.GormLobby
	if err := p.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	configs := make([]models.LobbyConfig, 0, len(rows))
	for _, row := range rows {
		configs = append(configs, lobbyFromRow(row))
	}
	return configs, nil
}

func (p *GormPostgreSQL) Lobby(ctx context.Context, lobbyID int64) (models.LobbyConfig, error) {
	var row models.GormLobby
	err := p.db.WithContext(ctx).Where("lobby_id = ?", lobbyID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LobbyConfig{}, ErrRecordNotFound
	}
	if err != nil {
		return models.LobbyConfig{}, err
	}
	return lobbyFromRow(row), nil
}

// UpdateLobby upserts a lobby configuration row, keyed by lobby id.
// Used at startup to record the multiplayer id of a freshly created
// lobby.
func (p *GormPostgreSQL) UpdateLobby(ctx context.Context, cfg models.LobbyConfig) error {
	row := models.GormLobby{
		LobbyID:          cfg.ID,
		Name:             cfg.Name,
		Size:             cfg.Size,
		TeamMode:         cfg.TeamMode,
		WinCondition:     cfg.WinCondition,
		Mods:             cfg.Mods,
		Freemod:          cfg.Freemod,
		MinLengthSeconds: cfg.MinLengthSeconds,
		MaxLengthSeconds: cfg.MaxLengthSeconds,
		StarRatingMin:    cfg.StarRatingMin,
		StarRatingMax:    cfg.StarRatingMax,
		StarRatingError:  cfg.StarRatingError,
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "lobby_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "size", "team_mode", "win_condition", "mods", "freemod",
			"min_length_seconds", "max_length_seconds",
			"star_rating_min", "star_rating_max", "star_rating_error",
			"updated_at",
		}),
	}).Create(&row).Error
}

func (p *GormPostgreSQL) UpsertUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}

	rows := make([]models.GormUser, 0, len(users))
	for _, u := range users {
		rows = append(rows, models.GormUser{OsuID: u.OsuID, Username: u.Username})
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "osu_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
	}).Create(&rows).Error
}

func (p *GormPostgreSQL) SaveGame(ctx context.Context, record models.GameRecord) (int64, error) {
	row := models.GormGame{
		LobbyID:       record.LobbyID,
		BeatmapID:     record.BeatmapID,
		Duration:      record.Duration,
		CountStarted:  record.CountStarted,
		CountLeft:     record.CountLeft,
		CountFinished: record.CountFinished,
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return int64(row.ID), nil
}

func (p *GormPostgreSQL) SaveScore(ctx context.Context, score models.Score) error {
	row := models.GormScore{
		OsuUserID:  score.OsuUserID,
		OsuScoreID: score.OsuScoreID,
		BeatmapID:  score.BeatmapID,
		LobbyID:    score.LobbyID,
		GameID:     score.GameID,
		TotalScore: score.TotalScore,
		MaxCombo:   score.MaxCombo,
		Count300:   score.Count300,
		Count100:   score.Count100,
		Count50:    score.Count50,
		CountMiss:  score.CountMiss,
		Mods:       score.Mods,
		Rank:       score.Rank,
		Time:       score.Time,
		PlayedAt:   score.PlayedAt,
	}
	return p.db.WithContext(ctx).Create(&row).Error
}

// PlaytimeSeconds sums the play time credited to a player across all
// of their persisted scores.
func (p *GormPostgreSQL) PlaytimeSeconds(ctx context.Context, userID int64) (int64, error) {
	var total float64
	err := p.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(time), 0) FROM scores WHERE osu_user_id = ?`,
		userID,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int64(total), nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func lobbyFromRow(row models.GormLobby) models.LobbyConfig {
	return models.LobbyConfig{
		ID:               row.LobbyID,
		Name:             row.Name,
		Size:             row.Size,
		TeamMode:         row.TeamMode,
		WinCondition:     row.WinCondition,
		Mods:             row.Mods,
		Freemod:          row.Freemod,
		MinLengthSeconds: row.MinLengthSeconds,
		MaxLengthSeconds: row.MaxLengthSeconds,
		StarRatingMin:    row.StarRatingMin,
		StarRatingMax:    row.StarRatingMax,
		StarRatingError:  row.StarRatingError,
	}
}

// osuapi/types.go
package osuapi

import (
	"strconv"
	"time"

	"github.com/iWeeti/bancho-autohost/models"
)

// The v1 API serializes every field as a string.

type beatmapDTO struct {
	BeatmapID    string `json:"beatmap_id"`
	BeatmapsetID string `json:"beatmapset_id"`
	Artist       string `json:"artist"`
	Title        string `json:"title"`
	Version      string `json:"version"`
	TotalLength  string `json:"total_length"`
	Difficulty   string `json:"difficultyrating"`
	BPM          string `json:"bpm"`
	DiffApproach string `json:"diff_approach"`
	DiffSize     string `json:"diff_size"`
	DiffOverall  string `json:"diff_overall"`
	DiffDrain    string `json:"diff_drain"`
	MaxCombo     string `json:"max_combo"`
	Approved     string `json:"approved"`
}

type recentScoreDTO struct {
	BeatmapID   string `json:"beatmap_id"`
	Score       string `json:"score"`
	MaxCombo    string `json:"maxcombo"`
	Count300    string `json:"count300"`
	Count100    string `json:"count100"`
	Count50     string `json:"count50"`
	CountMiss   string `json:"countmiss"`
	CountKatu   string `json:"countkatu"`
	CountGeki   string `json:"countgeki"`
	Perfect     string `json:"perfect"`
	EnabledMods string `json:"enabled_mods"`
	UserID      string `json:"user_id"`
	Date        string `json:"date"`
	Rank        string `json:"rank"`
	ScoreID     string `json:"score_id"`
}

type userDTO struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

var rankedStatusNames = map[int64]string{
	-2: "graveyard",
	-1: "wip",
	0:  "pending",
	1:  "ranked",
	2:  "approved",
	3:  "qualified",
	4:  "loved",
}

func (d beatmapDTO) toModel() models.Beatmap {
	status, ok := rankedStatusNames[parseInt(d.Approved)]
	if !ok {
		status = "unknown"
	}
	return models.Beatmap{
		ID:           parseInt(d.BeatmapID),
		SetID:        parseInt(d.BeatmapsetID),
		Artist:       d.Artist,
		Title:        d.Title,
		Version:      d.Version,
		TotalLength:  int(parseInt(d.TotalLength)),
		Stars:        parseFloat(d.Difficulty),
		BPM:          parseFloat(d.BPM),
		AR:           parseFloat(d.DiffApproach),
		CS:           parseFloat(d.DiffSize),
		OD:           parseFloat(d.DiffOverall),
		HP:           parseFloat(d.DiffDrain),
		MaxCombo:     int(parseInt(d.MaxCombo)),
		RankedStatus: status,
	}
}

func (d recentScoreDTO) toModel() models.UserScore {
	playedAt, _ := time.Parse("2006-01-02 15:04:05", d.Date)
	return models.UserScore{
		ScoreID:   parseInt(d.ScoreID),
		BeatmapID: parseInt(d.BeatmapID),
		Score:     parseInt(d.Score),
		MaxCombo:  int(parseInt(d.MaxCombo)),
		Count300:  int(parseInt(d.Count300)),
		Count100:  int(parseInt(d.Count100)),
		Count50:   int(parseInt(d.Count50)),
		CountMiss: int(parseInt(d.CountMiss)),
		CountGeki: int(parseInt(d.CountGeki)),
		CountKatu: int(parseInt(d.CountKatu)),
		Perfect:   d.Perfect == "1",
		Mods:      parseInt(d.EnabledMods),
		Rank:      d.Rank,
		PlayedAt:  playedAt,
	}
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

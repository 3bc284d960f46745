package osuapi

import (
	"testing"
)

func TestBeatmapDTOToModel(t *testing.T) {
	dto := beatmapDTO{
		BeatmapID:    "129891",
		BeatmapsetID: "39804",
		Artist:       "xi",
		Title:        "FREEDOM DiVE",
		Version:      "FOUR DIMENSIONS",
		TotalLength:  "258",
		Difficulty:   "7.0281",
		BPM:          "222.22",
		DiffApproach: "9",
		DiffSize:     "4",
		DiffOverall:  "8",
		DiffDrain:    "7",
		MaxCombo:     "2385",
		Approved:     "2",
	}

	beatmap := dto.toModel()
	if beatmap.ID != 129891 {
		t.Errorf("Expected id 129891, got %d", beatmap.ID)
	}
	if beatmap.TotalLength != 258 {
		t.Errorf("Expected length 258, got %d", beatmap.TotalLength)
	}
	if beatmap.Stars < 7.02 || beatmap.Stars > 7.03 {
		t.Errorf("Unexpected star rating %f", beatmap.Stars)
	}
	if beatmap.RankedStatus != "approved" {
		t.Errorf("Expected approved status, got %q", beatmap.RankedStatus)
	}
}

func TestBeatmapDTOUnknownStatus(t *testing.T) {
	dto := beatmapDTO{BeatmapID: "1", Approved: "99"}
	if got := dto.toModel().RankedStatus; got != "unknown" {
		t.Errorf("Expected unknown status, got %q", got)
	}
}

func TestRecentScoreDTOToModel(t *testing.T) {
	dto := recentScoreDTO{
		BeatmapID:   "129891",
		Score:       "132408001",
		MaxCombo:    "2385",
		Count300:    "1978",
		Count100:    "5",
		Count50:     "0",
		CountMiss:   "0",
		Perfect:     "1",
		EnabledMods: "72", // HD + DT
		Rank:        "SH",
		Date:        "2023-01-02 15:04:05",
	}

	score := dto.toModel()
	if score.Score != 132408001 {
		t.Errorf("Unexpected score %d", score.Score)
	}
	if !score.Perfect {
		t.Error("Perfect flag should be set")
	}
	if score.Mods != 72 {
		t.Errorf("Expected mods 72, got %d", score.Mods)
	}
	if score.PlayedAt.IsZero() {
		t.Error("Played-at timestamp should parse")
	}
	if score.PlayedAt.Hour() != 15 {
		t.Errorf("Unexpected played-at hour %d", score.PlayedAt.Hour())
	}
}

package lobby

import (
	"errors"
	"testing"

	"github.com/iWeeti/bancho-autohost/models"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestCheckBeatmap_NoBounds(t *testing.T) {
	beatmap := models.Beatmap{TotalLength: 10, Stars: 9.9}
	if err := CheckBeatmap(beatmap, models.LobbyConfig{}); err != nil {
		t.Errorf("Unset bounds should accept any map, got %v", err)
	}
}

func TestCheckBeatmap_Length(t *testing.T) {
	config := models.LobbyConfig{
		MinLengthSeconds: intPtr(60),
		MaxLengthSeconds: intPtr(300),
	}

	if err := CheckBeatmap(models.Beatmap{TotalLength: 30}, config); !errors.Is(err, ErrBeatmapTooShort) {
		t.Errorf("Expected ErrBeatmapTooShort, got %v", err)
	}
	if err := CheckBeatmap(models.Beatmap{TotalLength: 400}, config); !errors.Is(err, ErrBeatmapTooLong) {
		t.Errorf("Expected ErrBeatmapTooLong, got %v", err)
	}
	if err := CheckBeatmap(models.Beatmap{TotalLength: 120}, config); err != nil {
		t.Errorf("In-range length should pass, got %v", err)
	}
}

func TestCheckBeatmap_Stars(t *testing.T) {
	config := models.LobbyConfig{
		StarRatingMin: floatPtr(4.0),
		StarRatingMax: floatPtr(6.0),
	}

	if err := CheckBeatmap(models.Beatmap{TotalLength: 120, Stars: 3.5}, config); !errors.Is(err, ErrBeatmapTooEasy) {
		t.Errorf("Expected ErrBeatmapTooEasy, got %v", err)
	}
	if err := CheckBeatmap(models.Beatmap{TotalLength: 120, Stars: 6.5}, config); !errors.Is(err, ErrBeatmapTooHard) {
		t.Errorf("Expected ErrBeatmapTooHard, got %v", err)
	}
	if err := CheckBeatmap(models.Beatmap{TotalLength: 120, Stars: 5.0}, config); err != nil {
		t.Errorf("In-range stars should pass, got %v", err)
	}
}

func TestCheckBeatmap_StarErrorMargin(t *testing.T) {
	config := models.LobbyConfig{
		StarRatingMin:   floatPtr(4.0),
		StarRatingMax:   floatPtr(6.0),
		StarRatingError: 0.2,
	}

	// Within the tolerance on either side.
	if err := CheckBeatmap(models.Beatmap{TotalLength: 120, Stars: 3.85}, config); err != nil {
		t.Errorf("Star rating within the tolerance should pass, got %v", err)
	}
	if err := CheckBeatmap(models.Beatmap{TotalLength: 120, Stars: 6.15}, config); err != nil {
		t.Errorf("Star rating within the tolerance should pass, got %v", err)
	}
	// Outside the tolerance.
	if err := CheckBeatmap(models.Beatmap{TotalLength: 120, Stars: 3.7}, config); !errors.Is(err, ErrBeatmapTooEasy) {
		t.Errorf("Expected ErrBeatmapTooEasy outside the tolerance, got %v", err)
	}
}

func TestCheckBeatmap_CheckOrder(t *testing.T) {
	config := models.LobbyConfig{
		MinLengthSeconds: intPtr(60),
		StarRatingMin:    floatPtr(4.0),
	}

	// Both length and stars fail; the length check runs first.
	err := CheckBeatmap(models.Beatmap{TotalLength: 30, Stars: 2.0}, config)
	if !errors.Is(err, ErrBeatmapTooShort) {
		t.Errorf("Length check should fire before star checks, got %v", err)
	}
}

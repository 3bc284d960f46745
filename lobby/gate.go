// lobby/gate.go
package lobby

import (
	"errors"
	"fmt"

	"github.com/iWeeti/bancho-autohost/models"
)

// Beatmap rejection reasons, in check order.
var (
	ErrBeatmapTooShort = errors.New("this beatmap is too short")
	ErrBeatmapTooLong  = errors.New("this beatmap is too long")
	ErrBeatmapTooEasy  = errors.New("this beatmap is too easy")
	ErrBeatmapTooHard  = errors.New("this beatmap is too hard")
)

// CheckBeatmap validates a candidate map against the lobby constraints.
// Checks run in fixed order and short-circuit on the first failure;
// unset bounds are skipped. Pure function.
func CheckBeatmap(beatmap models.Beatmap, config models.LobbyConfig) error {
	if config.MinLengthSeconds != nil && beatmap.TotalLength < *config.MinLengthSeconds {
		return fmt.Errorf("%w, %d < %d", ErrBeatmapTooShort, beatmap.TotalLength, *config.MinLengthSeconds)
	}
	if config.MaxLengthSeconds != nil && beatmap.TotalLength > *config.MaxLengthSeconds {
		return fmt.Errorf("%w, %d > %d", ErrBeatmapTooLong, beatmap.TotalLength, *config.MaxLengthSeconds)
	}
	if config.StarRatingMin != nil && beatmap.Stars+config.StarRatingError < *config.StarRatingMin {
		return fmt.Errorf("%w, %.2f < %.2f", ErrBeatmapTooEasy, beatmap.Stars, *config.StarRatingMin)
	}
	if config.StarRatingMax != nil && beatmap.Stars-config.StarRatingError > *config.StarRatingMax {
		return fmt.Errorf("%w, %.2f > %.2f", ErrBeatmapTooHard, beatmap.Stars, *config.StarRatingMax)
	}
	return nil
}

// commands/recentscore.go
package commands

import (
	"fmt"

	"github.com/iWeeti/bancho-autohost/bancho"
	"github.com/iWeeti/bancho-autohost/models"
)

func recentScoreCommand() *Command {
	return &Command{
		Name:    "recentscore",
		Help:    "Shows your most recent score.",
		Syntax:  "recentscore",
		Aliases: []string{"rs"},
		Execute: func(ctx *Context) error {
			cctx, cancel := commandContext()
			defer cancel()

			score, err := ctx.Deps.Scores.UserRecent(cctx, ctx.From.ID)
			if err != nil {
				ctx.Lobby.SendMessage("Failed to get the recent score.")
				return err
			}

			beatmap, err := ctx.Deps.Maps.Beatmap(cctx, score.BeatmapID)
			if err != nil {
				ctx.Lobby.SendMessage("Failed to get the recent score.")
				return err
			}

			line := fmt.Sprintf(
				"Recent score for %s: %s - %s [%s] | %s | x%d/%d | %s",
				ctx.From.Username,
				beatmap.Artist, beatmap.Title, beatmap.Version,
				score.Rank,
				score.MaxCombo, beatmap.MaxCombo,
				scoreAccuracy(score),
			)
			if score.Mods != 0 {
				line += " +" + bancho.Mods(score.Mods).String()
			}

			if ctx.Deps.Performance != nil {
				figures, err := ctx.Deps.Performance.ForScore(cctx, score.BeatmapID, score)
				if err == nil && figures.ScorePP != nil {
					line += fmt.Sprintf(" | %.2fpp", *figures.ScorePP)
				}
			}

			ctx.Lobby.SendMessage(line)
			return nil
		},
	}
}

func scoreAccuracy(s models.UserScore) string {
	total := s.Count300 + s.Count100 + s.Count50 + s.CountMiss
	if total == 0 {
		return "0.00%"
	}
	weighted := float64(s.Count300)*300 + float64(s.Count100)*100 + float64(s.Count50)*50
	return fmt.Sprintf("%.2f%%", weighted/(float64(total)*300)*100)
}

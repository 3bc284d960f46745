// commands/info.go
package commands

import (
	"fmt"
	"time"

	"github.com/iWeeti/bancho-autohost/lobby"
)

func regulationsCommand() *Command {
	return &Command{
		Name:    "regulations",
		Help:    "Shows the regulations for the lobby.",
		Syntax:  "regulations",
		Aliases: []string{"r"},
		Execute: func(ctx *Context) error {
			cfg := ctx.Lobby.Config()

			stars := func(v *float64) string {
				if v == nil {
					return "any"
				}
				return fmt.Sprintf("%.2f*", *v)
			}
			length := func(v *int) string {
				if v == nil {
					return "any"
				}
				return lobby.FormatLength(*v)
			}

			ctx.Lobby.SendMessage(fmt.Sprintf(
				"Regulations: %s - %s | Length: %s - %s",
				stars(cfg.StarRatingMin), stars(cfg.StarRatingMax),
				length(cfg.MinLengthSeconds), length(cfg.MaxLengthSeconds),
			))
			return nil
		},
	}
}

func timeLeftCommand() *Command {
	return &Command{
		Name:    "timeleft",
		Help:    "Shows the estimated time left for the current map.",
		Syntax:  "timeleft",
		Aliases: []string{"tl"},
		Execute: func(ctx *Context) error {
			startedAt, ok := ctx.Lobby.MatchStartedAt()
			if !ok || !ctx.Lobby.Playing() {
				ctx.Lobby.SendMessage("Not playing.")
				return nil
			}

			remaining := 0
			if current := ctx.Lobby.CurrentBeatmap(); current != nil {
				remaining = current.TotalLength - int(time.Since(startedAt).Seconds())
				if remaining < 0 {
					remaining = 0
				}
			}
			ctx.Lobby.SendMessage("Estimated time left: " + lobby.FormatLength(remaining))
			return nil
		},
	}
}

func playTimeCommand() *Command {
	return &Command{
		Name:    "playtime",
		Help:    "Shows your playtime stats.",
		Syntax:  "playtime",
		Aliases: []string{"pt"},
		Execute: func(ctx *Context) error {
			cctx, cancel := commandContext()
			defer cancel()

			seconds, err := ctx.Deps.Store.PlaytimeSeconds(cctx, ctx.From.ID)
			if err != nil {
				ctx.Lobby.SendMessage("Failed to get playtime stats.")
				return err
			}

			d := time.Duration(seconds) * time.Second
			ctx.Lobby.SendMessage(fmt.Sprintf(
				"Playtime stats for %s : %d hours %d minutes %d seconds",
				ctx.From.Username,
				int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60,
			))
			return nil
		},
	}
}

func versionCommand() *Command {
	return &Command{
		Name:   "version",
		Help:   "Shows the version of the bot.",
		Syntax: "version",
		Execute: func(ctx *Context) error {
			ctx.Lobby.SendMessage("Bot Version: " + Version)
			return nil
		},
	}
}

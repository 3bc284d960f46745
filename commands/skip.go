// commands/skip.go
package commands

import (
	"errors"
	"fmt"

	"github.com/iWeeti/bancho-autohost/lobby"
)

func skipCommand() *Command {
	return &Command{
		Name:    "skip",
		Help:    "Skips the current host if you are the host or starts a vote to skip the host.",
		Syntax:  "skip",
		Aliases: []string{"s"},
		Execute: func(ctx *Context) error {
			m := ctx.Lobby

			if isHost(ctx) {
				m.RotateHost()
				m.SendMessage("Skipped host.")
				return nil
			}

			tally, quorum, reached, err := m.RegisterSkipVote(ctx.From)
			if errors.Is(err, lobby.ErrAlreadyVoted) {
				m.SendMessage(fmt.Sprintf("[%d/%d] %s, You already voted to skip the host.", tally, quorum, ctx.From.Username))
				return nil
			}
			if err != nil {
				return err
			}

			if reached {
				m.RotateHost()
				m.SendMessage("Skipped host.")
				return nil
			}
			m.SendMessage(fmt.Sprintf("[%d/%d] %s, Voted to skip the host.", tally, quorum, ctx.From.Username))
			return nil
		},
	}
}

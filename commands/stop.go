// commands/stop.go
package commands

import (
	"errors"
	"fmt"

	"github.com/iWeeti/bancho-autohost/lobby"
)

const stopMessage = "Canceled the start timer, use !start or use the Start Match button to start the match."

func stopCommand() *Command {
	return &Command{
		Name:   "stop",
		Help:   "Stops the timer if you are the host or starts a vote to stop the timer.",
		Syntax: "stop",
		Execute: func(ctx *Context) error {
			m := ctx.Lobby

			if !m.CountdownActive() {
				m.SendMessage("There's no timer to stop.")
				return nil
			}

			if isHost(ctx) {
				m.CancelCountdown()
				m.SendMessage(stopMessage)
				return nil
			}

			tally, quorum, reached, err := m.RegisterStopVote(ctx.From)
			if errors.Is(err, lobby.ErrAlreadyVoted) {
				m.SendMessage(fmt.Sprintf("[%d/%d] %s, You already voted to stop the timer.", tally, quorum, ctx.From.Username))
				return nil
			}
			if err != nil {
				return err
			}

			if reached {
				m.CancelCountdown()
				m.SendMessage(stopMessage)
				return nil
			}
			m.SendMessage(fmt.Sprintf("[%d/%d] %s, Voted to stop the timer.", tally, quorum, ctx.From.Username))
			return nil
		},
	}
}

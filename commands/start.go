// commands/start.go
package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/iWeeti/bancho-autohost/lobby"
)

func startCommand() *Command {
	return &Command{
		Name:   "start",
		Help:   "Starts the match if you are the host or starts a vote to start the match.",
		Syntax: "start [seconds]",
		Execute: func(ctx *Context) error {
			m := ctx.Lobby

			if m.Playing() {
				m.SendMessage("Already playing...")
				return nil
			}

			if len(ctx.Args) > 0 {
				if !isHost(ctx) {
					m.SendMessage(fmt.Sprintf("%s, Only the host can start a timer.", ctx.From.Username))
					return nil
				}
				seconds, err := strconv.Atoi(ctx.Args[0])
				if err != nil || seconds < 0 {
					m.SendMessage(fmt.Sprintf("%s, Invalid seconds %q passed to start command.", ctx.From.Username, ctx.Args[0]))
					return nil
				}
				if m.CountdownActive() {
					m.SendMessage("There's a start timer already.")
					return nil
				}
				m.StartCountdown(seconds)
				return nil
			}

			if isHost(ctx) {
				m.CancelCountdown()
				m.SendMessage("Starting match.")
				return m.StartMatchNow()
			}

			tally, quorum, reached, err := m.RegisterStartVote(ctx.From)
			if errors.Is(err, lobby.ErrAlreadyVoted) {
				m.SendMessage(fmt.Sprintf("[%d/%d] %s, You already voted to start the match.", tally, quorum, ctx.From.Username))
				return nil
			}
			if err != nil {
				return err
			}

			if reached {
				m.CancelCountdown()
				m.SendMessage("Starting match.")
				return m.StartMatchNow()
			}
			m.SendMessage(fmt.Sprintf("[%d/%d] %s, Voted to start the match.", tally, quorum, ctx.From.Username))
			return nil
		},
	}
}

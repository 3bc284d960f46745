// commands/queue.go
package commands

import (
	"fmt"
	"strings"
)

func queueCommand() *Command {
	return &Command{
		Name:    "queue",
		Help:    "Shows the host rotation queue.",
		Syntax:  "queue",
		Aliases: []string{"q"},
		Execute: func(ctx *Context) error {
			names := make([]string, 0)
			for _, p := range ctx.Lobby.QueuePlayers() {
				names = append(names, softenUsername(p.Username))
			}
			ctx.Lobby.SendMessage("Queue: " + strings.Join(names, ", "))
			return nil
		},
	}
}

func queuePositionCommand() *Command {
	return &Command{
		Name:    "queueposition",
		Help:    "Shows your queue position.",
		Syntax:  "queueposition",
		Aliases: []string{"qp", "queuepos"},
		Execute: func(ctx *Context) error {
			pos := ctx.Lobby.QueuePosition(ctx.From)
			if pos == -1 {
				ctx.Lobby.SendMessage(fmt.Sprintf("%s, You are not in the queue!", ctx.From.Username))
				return nil
			}
			ctx.Lobby.SendMessage(fmt.Sprintf("Queue Position for %s: %d", ctx.From.Username, pos+1))
			return nil
		},
	}
}

// softenUsername inserts a zero-width space so listing the queue does
// not highlight every player in their client.
func softenUsername(name string) string {
	runes := []rune(name)
	if len(runes) < 2 {
		return name
	}
	return string(runes[0]) + "​" + string(runes[1:])
}

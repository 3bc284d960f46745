// commands/command.go
package commands

import (
	"context"
	"strings"
	"time"

	"github.com/iWeeti/bancho-autohost/bancho"
	"github.com/iWeeti/bancho-autohost/lobby"
	"github.com/iWeeti/bancho-autohost/logger"
	"github.com/iWeeti/bancho-autohost/models"
)

// Version is announced by the version command.
const Version = "0.1.0"

// Store is the slice of persistence the commands need.
type Store interface {
	PlaytimeSeconds(ctx context.Context, userID int64) (int64, error)
}

// RecentScoreSource fetches a player's most recent score.
type RecentScoreSource interface {
	UserRecent(ctx context.Context, userID int64) (models.UserScore, error)
}

// PerformanceSource computes pp figures for a concrete score.
type PerformanceSource interface {
	ForScore(ctx context.Context, beatmapID int64, score models.UserScore) (models.PerformanceFigures, error)
}

// MetricSink counts executed commands.
type MetricSink interface {
	CommandExecuted(name string)
}

// Deps are the collaborators shared by all commands.
type Deps struct {
	Store       Store
	Scores      RecentScoreSource
	Maps        lobby.BeatmapSource
	Performance PerformanceSource
	Metrics     MetricSink
}

// Context carries one command invocation.
type Context struct {
	Lobby *lobby.Manager
	From  bancho.Player
	Args  []string
	Deps  *Deps
}

// Command is one chat command.
type Command struct {
	Name    string
	Help    string
	Syntax  string
	Aliases []string
	Execute func(ctx *Context) error
}

// Dispatcher routes prefixed chat messages to commands. It implements
// lobby.CommandHandler and runs inside each lobby's event loop.
type Dispatcher struct {
	prefix   string
	deps     Deps
	commands map[string]*Command
}

func NewDispatcher(prefix string, deps Deps) *Dispatcher {
	d := &Dispatcher{
		prefix:   prefix,
		deps:     deps,
		commands: make(map[string]*Command),
	}
	d.register(
		skipCommand(),
		stopCommand(),
		startCommand(),
		queueCommand(),
		queuePositionCommand(),
		regulationsCommand(),
		timeLeftCommand(),
		playTimeCommand(),
		recentScoreCommand(),
		versionCommand(),
	)
	return d
}

func (d *Dispatcher) register(cmds ...*Command) {
	for _, cmd := range cmds {
		d.commands[cmd.Name] = cmd
	}
}

func (d *Dispatcher) lookup(name string) *Command {
	if cmd, ok := d.commands[name]; ok {
		return cmd
	}
	for _, cmd := range d.commands {
		for _, alias := range cmd.Aliases {
			if alias == name {
				return cmd
			}
		}
	}
	return nil
}

// Handle implements lobby.CommandHandler.
func (d *Dispatcher) Handle(m *lobby.Manager, from bancho.Player, content string) {
	if !strings.HasPrefix(content, d.prefix) {
		return
	}

	args := strings.Fields(content[len(d.prefix):])
	if len(args) == 0 {
		return
	}
	name := strings.ToLower(args[0])
	args = args[1:]

	cmd := d.lookup(name)
	if cmd == nil {
		return
	}

	logger.Log.Infof("#mp_%d -> executing command %s", m.ID(), cmd.Name)
	if d.deps.Metrics != nil {
		d.deps.Metrics.CommandExecuted(cmd.Name)
	}

	if err := cmd.Execute(&Context{Lobby: m, From: from, Args: args, Deps: &d.deps}); err != nil {
		logger.Log.Errorf("#mp_%d -> command %s failed: %v", m.ID(), cmd.Name, err)
		m.SendMessage("Failed to run the command.")
	}
}

// timeout for command-initiated lookups (API, database).
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func isHost(ctx *Context) bool {
	return ctx.From.ID != 0 && ctx.From.ID == ctx.Lobby.HostID()
}

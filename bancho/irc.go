// bancho/irc.go
package bancho

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/iWeeti/bancho-autohost/logger"
)

const banchoBotNick = "BanchoBot"

var (
	ErrNotConnected = errors.New("not connected to bancho")
	ErrLobbyClosed  = errors.New("lobby channel is closed")
)

// ClientConfig holds the IRC credentials for osu!Bancho.
type ClientConfig struct {
	Server     string // e.g. irc.ppy.sh:6667
	Username   string
	Password   string
	BotAccount bool
}

// UserResolver maps a chat username to the stable osu! user id. The IRC
// protocol only carries usernames; ids come from the API service.
type UserResolver interface {
	UserID(username string) (int64, error)
}

// IRCClient talks to osu!Bancho over plain IRC and hands out one
// Channel per joined multiplayer room.
type IRCClient struct {
	cfg      ClientConfig
	resolver UserResolver

	conn     net.Conn
	writer   *bufio.Writer
	writeMu  sync.Mutex
	lastSend time.Time

	channels  map[string]*ircChannel // "#mp_<id>" -> channel
	createReq chan int64             // fulfilled by "Created the tournament match" PMs
	welcome   chan struct{}
	done      chan struct{}
	mu        sync.RWMutex
}

// Dial connects, authenticates and starts the read loop.
func Dial(cfg ClientConfig, resolver UserResolver) (*IRCClient, error) {
	conn, err := net.DialTimeout("tcp", cfg.Server, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial bancho: %w", err)
	}

	c := &IRCClient{
		cfg:       cfg,
		resolver:  resolver,
		conn:      conn,
		writer:    bufio.NewWriter(conn),
		channels:  make(map[string]*ircChannel),
		createReq: make(chan int64, 1),
		welcome:   make(chan struct{}),
		done:      make(chan struct{}),
	}

	if err := c.writeLine("PASS " + cfg.Password); err != nil {
		conn.Close()
		return nil, err
	}
	if err := c.writeLine("USER " + cfg.Username + " 0 * :" + cfg.Username); err != nil {
		conn.Close()
		return nil, err
	}
	if err := c.writeLine("NICK " + cfg.Username); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()

	select {
	case <-c.welcome:
	case <-time.After(30 * time.Second):
		conn.Close()
		return nil, errors.New("timed out waiting for bancho welcome")
	}
	return c, nil
}

// JoinLobby joins an existing multiplayer channel and refreshes its
// settings so the first State call is populated.
func (c *IRCClient) JoinLobby(id int64) (Channel, error) {
	channelName := fmt.Sprintf("#mp_%d", id)

	ch := newIRCChannel(c, id, channelName)
	c.mu.Lock()
	c.channels[channelName] = ch
	c.mu.Unlock()

	if err := c.writeLine("JOIN " + channelName); err != nil {
		c.removeChannel(channelName)
		return nil, err
	}
	if err := ch.RefreshSettings(); err != nil {
		c.removeChannel(channelName)
		return nil, err
	}
	return ch, nil
}

// CreateLobby asks BanchoBot for a new tournament match and joins it.
func (c *IRCClient) CreateLobby(name string) (Channel, error) {
	if err := c.privmsg(banchoBotNick, "!mp make "+name); err != nil {
		return nil, err
	}

	select {
	case id := <-c.createReq:
		return c.JoinLobby(id)
	case <-time.After(30 * time.Second):
		return nil, errors.New("timed out waiting for lobby creation")
	case <-c.done:
		return nil, ErrNotConnected
	}
}

// Disconnect quits and closes every channel's event stream.
func (c *IRCClient) Disconnect() error {
	c.mu.Lock()
	for name, ch := range c.channels {
		ch.shutdown()
		delete(c.channels, name)
	}
	c.mu.Unlock()

	_ = c.writeLine("QUIT :bye")
	close(c.done)
	return c.conn.Close()
}

func (c *IRCClient) removeChannel(name string) {
	c.mu.Lock()
	if ch, ok := c.channels[name]; ok {
		ch.shutdown()
		delete(c.channels, name)
	}
	c.mu.Unlock()
}

// writeLine sends one raw IRC line, spacing sends out to stay under the
// chat rate limit.
func (c *IRCClient) writeLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	minGap := time.Second
	if c.cfg.BotAccount {
		minGap = 500 * time.Millisecond
	}
	if wait := minGap - time.Since(c.lastSend); wait > 0 && strings.HasPrefix(line, "PRIVMSG") {
		time.Sleep(wait)
	}

	if _, err := c.writer.WriteString(line + "\r\n"); err != nil {
		return err
	}
	c.lastSend = time.Now()
	return c.writer.Flush()
}

func (c *IRCClient) privmsg(target, text string) error {
	return c.writeLine("PRIVMSG " + target + " :" + text)
}

func (c *IRCClient) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		select {
		case <-c.done:
			return
		default:
		}
		c.handleLine(strings.TrimRight(scanner.Text(), "\r\n"))
	}
	if err := scanner.Err(); err != nil {
		logger.Log.Errorf("bancho read loop ended: %v", err)
	}
}

func (c *IRCClient) handleLine(line string) {
	if strings.HasPrefix(line, "PING") {
		_ = c.writeLine("PONG" + strings.TrimPrefix(line, "PING"))
		return
	}

	prefix, command, params, trailing := splitIRCLine(line)

	switch command {
	case "001":
		select {
		case <-c.welcome:
		default:
			close(c.welcome)
		}
	case "PRIVMSG":
		if len(params) == 0 {
			return
		}
		sender := nickFromPrefix(prefix)
		target := params[0]
		c.handleMessage(sender, target, trailing)
	}
}

func (c *IRCClient) handleMessage(sender, target, text string) {
	// Private messages from BanchoBot only matter for lobby creation.
	if !strings.HasPrefix(target, "#") {
		if sender == banchoBotNick {
			if id, ok := parseCreatedLobby(text); ok {
				select {
				case c.createReq <- id:
				default:
				}
			}
		}
		return
	}

	c.mu.RLock()
	ch := c.channels[target]
	c.mu.RUnlock()
	if ch == nil {
		return
	}

	if sender == banchoBotNick {
		ch.handleBanchoBotMessage(text)
		return
	}

	player := Player{Username: sender}
	if c.resolver != nil {
		if id, err := c.resolver.UserID(sender); err == nil {
			player.ID = id
		}
	}
	ch.emit(MessageEvent{From: player, Content: text})
}

// splitIRCLine breaks ":prefix COMMAND p1 p2 :trailing" apart.
func splitIRCLine(line string) (prefix, command string, params []string, trailing string) {
	rest := line
	if strings.HasPrefix(rest, ":") {
		if idx := strings.Index(rest, " "); idx >= 0 {
			prefix = rest[1:idx]
			rest = rest[idx+1:]
		}
	}
	if idx := strings.Index(rest, " :"); idx >= 0 {
		trailing = rest[idx+2:]
		rest = rest[:idx]
	}
	fields := strings.Fields(rest)
	if len(fields) > 0 {
		command = fields[0]
		params = fields[1:]
	}
	return
}

func nickFromPrefix(prefix string) string {
	if idx := strings.Index(prefix, "!"); idx >= 0 {
		return prefix[:idx]
	}
	return prefix
}

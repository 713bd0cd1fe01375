package chat

import (
	"coinbot/internal/providers"
	"coinbot/internal/structures"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
)

// A session that stayed up this long resets the reconnect backoff.
const stableSession = time.Minute

// TwitchClient speaks Twitch IRC over a websocket. It reconnects with
// exponential backoff and rejoins every channel it was in.
type TwitchClient struct {
	conf    *structures.Config
	secrets *structures.Secrets
	logger  providers.Logger
	dialer  *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	channels []string
	handler  Handler
}

func NewTwitchClient(conf *structures.Config, secrets *structures.Secrets, logger providers.Logger) *TwitchClient {
	channels := make([]string, 0, len(conf.Bot.Channels))
	for _, ch := range conf.Bot.Channels {
		ch = normalizeChannel(ch)
		if ch != "" && !slices.Contains(channels, ch) {
			channels = append(channels, ch)
		}
	}
	return &TwitchClient{
		conf:     conf,
		secrets:  secrets,
		logger:   logger,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		channels: channels,
	}
}

func normalizeChannel(ch string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ch), "#"))
}

// SetHandler must be called before Run.
func (c *TwitchClient) SetHandler(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// Channels lists the channels the bot is currently in.
func (c *TwitchClient) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.channels)
}

// Run keeps a session alive until ctx is cancelled.
func (c *TwitchClient) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 2 * time.Minute

	op := func() (struct{}, error) {
		started := time.Now()
		err := c.session(ctx)
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		if time.Since(started) > stableSession {
			b.Reset()
		}
		return struct{}{}, err
	}
	notify := func(err error, next time.Duration) {
		c.logger.Warnf(providers.TypeChat, "Chat connection lost: %s, reconnecting in %s", err, next)
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *TwitchClient) session(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.conf.Bot.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.conf.Bot.URL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	c.mu.Lock()
	c.conn = conn
	channels := slices.Clone(c.channels)
	handler := c.handler
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
	}()

	token := c.secrets.BotOAuthToken
	if !strings.HasPrefix(token, "oauth:") {
		token = "oauth:" + token
	}
	hello := []string{
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
		"PASS " + token,
		"NICK " + strings.ToLower(c.conf.Bot.Username),
	}
	for _, ch := range channels {
		hello = append(hello, "JOIN #"+ch)
	}
	for _, line := range hello {
		if err := c.send(line); err != nil {
			return err
		}
	}
	c.logger.Infof(providers.TypeChat, "Connected to %s as %s, joining %s", c.conf.Bot.URL, c.conf.Bot.Username, strings.Join(channels, ", "))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		for _, line := range strings.Split(string(data), "\r\n") {
			m, err := parseIRC(line)
			if err != nil {
				continue
			}
			if err := c.handle(m, handler); err != nil {
				return err
			}
		}
	}
}

func (c *TwitchClient) handle(m *ircMessage, h Handler) error {
	switch m.Command {
	case "PING":
		return c.send("PONG :" + m.trailing())
	case "RECONNECT":
		return fmt.Errorf("server requested reconnect")
	case "NOTICE":
		if strings.Contains(strings.ToLower(m.trailing()), "authentication failed") {
			return fmt.Errorf("login rejected: %s", m.trailing())
		}
		c.logger.Debugf(providers.TypeChat, "Notice in #%s: %s", m.channel(), m.trailing())
		return nil
	}
	if h == nil {
		return nil
	}
	if m.Command == "PRIVMSG" && m.nick() == strings.ToLower(c.conf.Bot.Username) {
		return nil
	}
	dispatch(m, h)
	return nil
}

func (c *TwitchClient) send(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line+"\r\n"))
}

// Action sends text as a "/me" line.
func (c *TwitchClient) Action(channel, text string) error {
	text = strings.NewReplacer("\r", " ", "\n", " ").Replace(text)
	return c.send(fmt.Sprintf("PRIVMSG #%s :\x01ACTION %s\x01", normalizeChannel(channel), text))
}

func (c *TwitchClient) Join(channel string) error {
	channel = normalizeChannel(channel)
	if channel == "" {
		return fmt.Errorf("empty channel name")
	}
	if err := c.send("JOIN #" + channel); err != nil {
		return err
	}
	c.mu.Lock()
	if !slices.Contains(c.channels, channel) {
		c.channels = append(c.channels, channel)
	}
	c.mu.Unlock()
	c.logger.Infof(providers.TypeChat, "Joined #%s", channel)
	return nil
}

func (c *TwitchClient) Part(channel string) error {
	channel = normalizeChannel(channel)
	if channel == "" {
		return fmt.Errorf("empty channel name")
	}
	if err := c.send("PART #" + channel); err != nil {
		return err
	}
	c.mu.Lock()
	c.channels = slices.DeleteFunc(c.channels, func(ch string) bool { return ch == channel })
	c.mu.Unlock()
	c.logger.Infof(providers.TypeChat, "Left #%s", channel)
	return nil
}

package chat

import (
	"coinbot/internal/structures"
	"coinbot/internal/testutil"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIRC is a minimal Twitch chat endpoint. It records every line the
// client writes and lets the test push lines back.
type fakeIRC struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu    sync.Mutex
	lines []string
	conns chan *websocket.Conn
}

func newFakeIRC(t *testing.T) *fakeIRC {
	f := &fakeIRC{conns: make(chan *websocket.Conn, 4)}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := f.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			f.mu.Lock()
			for _, l := range strings.Split(strings.TrimRight(string(data), "\r\n"), "\r\n") {
				f.lines = append(f.lines, l)
			}
			f.mu.Unlock()
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIRC) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *fakeIRC) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

func (f *fakeIRC) waitFor(t *testing.T, line string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, l := range f.received() {
			if l == line {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "never received %q", line)
}

func (f *fakeIRC) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-f.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("client never connected")
		return nil
	}
}

type syncHandler struct {
	mu       sync.Mutex
	messages []Message
}

func (h *syncHandler) OnMessage(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
}
func (h *syncHandler) OnSubscription(Subscription) {}
func (h *syncHandler) OnCheer(Cheer)               {}

func (h *syncHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func clientConfig(url string) *structures.Config {
	return &structures.Config{Bot: structures.BotConfig{
		Username: "CoinBot",
		Channels: []string{"#Alpha", "beta", "alpha"},
		URL:      url,
	}}
}

func startClient(t *testing.T, f *fakeIRC) (*TwitchClient, *syncHandler) {
	t.Helper()
	client := NewTwitchClient(clientConfig(f.url()), &structures.Secrets{BotOAuthToken: "secret"}, &testutil.MockLogger{})
	h := &syncHandler{}
	client.SetHandler(h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("client did not stop")
		}
	})
	return client, h
}

func TestTwitchClient_Handshake(t *testing.T) {
	f := newFakeIRC(t)
	client, _ := startClient(t, f)
	f.accept(t)

	f.waitFor(t, "JOIN #beta")
	assert.Equal(t, []string{
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
		"PASS oauth:secret",
		"NICK coinbot",
		"JOIN #alpha",
		"JOIN #beta",
	}, f.received())
	assert.Equal(t, []string{"alpha", "beta"}, client.Channels())
}

func TestTwitchClient_PingAndMessages(t *testing.T) {
	f := newFakeIRC(t)
	client, h := startClient(t, f)
	conn := f.accept(t)
	f.waitFor(t, "JOIN #beta")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(
		"PING :tmi.twitch.tv\r\n"+
			"@display-name=Alice :alice!a@a PRIVMSG #alpha :hello\r\n"+
			"@display-name=CoinBot :coinbot!c@c PRIVMSG #alpha :echo\r\n")))

	f.waitFor(t, "PONG :tmi.twitch.tv")
	require.Eventually(t, func() bool { return h.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, client.Action("#Alpha", "hi\nthere"))
	f.waitFor(t, "PRIVMSG #alpha :\x01ACTION hi there\x01")
}

func TestTwitchClient_JoinPartTrackChannels(t *testing.T) {
	f := newFakeIRC(t)
	client, _ := startClient(t, f)
	f.accept(t)
	f.waitFor(t, "JOIN #beta")

	require.NoError(t, client.Join("#Gamma"))
	f.waitFor(t, "JOIN #gamma")
	require.NoError(t, client.Part("alpha"))
	f.waitFor(t, "PART #alpha")

	assert.Equal(t, []string{"beta", "gamma"}, client.Channels())
}

func TestTwitchClient_ReconnectsAndRejoins(t *testing.T) {
	f := newFakeIRC(t)
	client, _ := startClient(t, f)
	conn := f.accept(t)
	f.waitFor(t, "JOIN #beta")
	require.NoError(t, client.Join("gamma"))
	f.waitFor(t, "JOIN #gamma")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("RECONNECT\r\n")))
	f.accept(t)

	require.Eventually(t, func() bool {
		n := 0
		for _, l := range f.received() {
			if l == "JOIN #gamma" {
				n++
			}
		}
		return n == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestTwitchClient_SendWithoutConnection(t *testing.T) {
	client := NewTwitchClient(clientConfig("ws://127.0.0.1:1"), &structures.Secrets{}, &testutil.MockLogger{})
	assert.ErrorIs(t, client.Action("alpha", "hi"), ErrNotConnected)
	assert.ErrorIs(t, client.Join("gamma"), ErrNotConnected)
	assert.Equal(t, []string{"alpha", "beta"}, client.Channels())
}

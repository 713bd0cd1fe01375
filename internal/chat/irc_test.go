package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	messages []Message
	subs     []Subscription
	cheers   []Cheer
}

func (h *recordingHandler) OnMessage(msg Message)           { h.messages = append(h.messages, msg) }
func (h *recordingHandler) OnSubscription(sub Subscription) { h.subs = append(h.subs, sub) }
func (h *recordingHandler) OnCheer(cheer Cheer)             { h.cheers = append(h.cheers, cheer) }

func TestParseIRC_FullLine(t *testing.T) {
	line := `@badge-info=;badges=broadcaster/1,subscriber/12;display-name=Alice;emotes=25:0-4;mod=0;system-msg=hello\sworld\:ok :alice!alice@alice.tmi.twitch.tv PRIVMSG #Chan :Kappa hello there`

	m, err := parseIRC(line)
	require.NoError(t, err)
	assert.Equal(t, "PRIVMSG", m.Command)
	assert.Equal(t, "alice", m.nick())
	assert.Equal(t, []string{"#Chan", "Kappa hello there"}, m.Params)
	assert.Equal(t, "hello world;ok", m.Tags["system-msg"])
	assert.Equal(t, "", m.Tags["badge-info"])
	assert.Equal(t, "chan", m.channel())
}

func TestParseIRC_NoTagsOrPrefix(t *testing.T) {
	m, err := parseIRC("PING :tmi.twitch.tv\r\n")
	require.NoError(t, err)
	assert.Equal(t, "PING", m.Command)
	assert.Equal(t, "tmi.twitch.tv", m.trailing())

	_, err = parseIRC("   ")
	assert.Error(t, err)
}

func TestParseEmotes(t *testing.T) {
	got := parseEmotes("25:0-4,12-16/1902:6-10/bad/7:x-2")
	assert.Equal(t, []EmoteRange{
		{ID: "25", Start: 0, End: 4},
		{ID: "25", Start: 12, End: 16},
		{ID: "1902", Start: 6, End: 10},
	}, got)
	assert.Nil(t, parseEmotes(""))
}

func TestParseBadges(t *testing.T) {
	assert.Equal(t, []Badge{{Name: "moderator", Version: "1"}, {Name: "subscriber", Version: "3012"}},
		parseBadges("moderator/1,subscriber/3012"))
}

func TestDispatch_Privmsg(t *testing.T) {
	h := &recordingHandler{}
	m, err := parseIRC("@badges=broadcaster/1;display-name=Streamer :streamer!s@s PRIVMSG #chan :\x01ACTION waves\x01")
	require.NoError(t, err)

	assert.True(t, dispatch(m, h))
	require.Len(t, h.messages, 1)
	msg := h.messages[0]
	assert.Equal(t, "streamer", msg.User)
	assert.Equal(t, "Streamer", msg.DisplayName)
	assert.Equal(t, "waves", msg.Text)
	assert.True(t, msg.Privileged)
}

func TestDispatch_ModeratorIsPrivileged(t *testing.T) {
	h := &recordingHandler{}
	m, _ := parseIRC("@mod=1;display-name=Mod :mod!m@m PRIVMSG #chan :hi")
	dispatch(m, h)
	require.Len(t, h.messages, 1)
	assert.True(t, h.messages[0].Privileged)

	m, _ = parseIRC("@mod=0;display-name=Pleb :pleb!p@p PRIVMSG #chan :hi")
	dispatch(m, h)
	assert.False(t, h.messages[1].Privileged)
}

func TestDispatch_CheerIsNotAMessage(t *testing.T) {
	h := &recordingHandler{}
	m, _ := parseIRC("@bits=100;display-name=Fan :fan!f@f PRIVMSG #chan :cheer100 great stream")
	dispatch(m, h)

	assert.Empty(t, h.messages)
	assert.Equal(t, []Cheer{{Channel: "chan", User: "fan", Bits: 100, Text: "cheer100 great stream"}}, h.cheers)
}

func TestDispatch_Subscriptions(t *testing.T) {
	h := &recordingHandler{}
	lines := []string{
		"@msg-id=sub;login=a :tmi.twitch.tv USERNOTICE #chan",
		"@msg-id=resub;login=b :tmi.twitch.tv USERNOTICE #chan :still here",
		"@msg-id=submysterygift;login=c;msg-param-mass-gift-count=5 :tmi.twitch.tv USERNOTICE #chan",
		"@msg-id=subgift;login=c;msg-param-community-gift-id=123 :tmi.twitch.tv USERNOTICE #chan",
		"@msg-id=subgift;login=d :tmi.twitch.tv USERNOTICE #chan",
		"@msg-id=raid;login=e :tmi.twitch.tv USERNOTICE #chan",
	}
	for _, line := range lines {
		m, err := parseIRC(line)
		require.NoError(t, err)
		dispatch(m, h)
	}

	require.Len(t, h.subs, 4)
	assert.Equal(t, KindSub, h.subs[0].Kind)
	assert.Equal(t, KindResub, h.subs[1].Kind)
	assert.Equal(t, Subscription{Channel: "chan", User: "c", Kind: KindMassGift, Count: 5}, h.subs[2])
	assert.Equal(t, Subscription{Channel: "chan", User: "d", Kind: KindSubGift, Count: 1}, h.subs[3])
}

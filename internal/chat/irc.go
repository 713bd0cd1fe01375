package chat

import (
	"errors"
	"strings"

	"github.com/spf13/cast"
)

var errEmptyLine = errors.New("chat: empty line")

// ircMessage is one line of the Twitch IRC dialect:
// [@tags] [:prefix] COMMAND [params...] [:trailing]
type ircMessage struct {
	Tags    map[string]string
	Prefix  string
	Command string
	Params  []string
}

var tagEscapes = strings.NewReplacer(`\:`, ";", `\s`, " ", `\\`, `\`, `\r`, "\r", `\n`, "\n")

func parseIRC(line string) (*ircMessage, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, errEmptyLine
	}
	m := &ircMessage{Tags: map[string]string{}}

	if strings.HasPrefix(line, "@") {
		raw, rest, _ := strings.Cut(line[1:], " ")
		for _, pair := range strings.Split(raw, ";") {
			k, v, _ := strings.Cut(pair, "=")
			if k != "" {
				m.Tags[k] = tagEscapes.Replace(v)
			}
		}
		line = strings.TrimLeft(rest, " ")
	}

	if strings.HasPrefix(line, ":") {
		m.Prefix, line, _ = strings.Cut(line[1:], " ")
		line = strings.TrimLeft(line, " ")
	}

	for line != "" {
		if strings.HasPrefix(line, ":") {
			m.Params = append(m.Params, line[1:])
			break
		}
		var p string
		p, line, _ = strings.Cut(line, " ")
		line = strings.TrimLeft(line, " ")
		if m.Command == "" {
			m.Command = strings.ToUpper(p)
			continue
		}
		m.Params = append(m.Params, p)
	}
	if m.Command == "" {
		return nil, errEmptyLine
	}
	return m, nil
}

func (m *ircMessage) param(i int) string {
	if i < len(m.Params) {
		return m.Params[i]
	}
	return ""
}

func (m *ircMessage) trailing() string {
	if len(m.Params) == 0 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

func (m *ircMessage) nick() string {
	nick, _, _ := strings.Cut(m.Prefix, "!")
	return nick
}

func (m *ircMessage) channel() string {
	return strings.TrimPrefix(strings.ToLower(m.param(0)), "#")
}

// user is the lower-cased display name, falling back to the login.
func (m *ircMessage) user() string {
	if name := m.Tags["display-name"]; name != "" {
		return strings.ToLower(name)
	}
	if login := m.Tags["login"]; login != "" {
		return strings.ToLower(login)
	}
	return strings.ToLower(m.nick())
}

// parseBadges reads "broadcaster/1,subscriber/12".
func parseBadges(raw string) []Badge {
	if raw == "" {
		return nil
	}
	var out []Badge
	for _, part := range strings.Split(raw, ",") {
		name, version, _ := strings.Cut(part, "/")
		if name != "" {
			out = append(out, Badge{Name: name, Version: version})
		}
	}
	return out
}

// parseEmotes reads "25:0-4,12-16/1902:6-10". Malformed ranges are skipped.
func parseEmotes(raw string) []EmoteRange {
	if raw == "" {
		return nil
	}
	var out []EmoteRange
	for _, group := range strings.Split(raw, "/") {
		id, ranges, ok := strings.Cut(group, ":")
		if !ok || id == "" {
			continue
		}
		for _, r := range strings.Split(ranges, ",") {
			from, to, ok := strings.Cut(r, "-")
			if !ok {
				continue
			}
			start, err1 := cast.ToIntE(from)
			end, err2 := cast.ToIntE(to)
			if err1 != nil || err2 != nil || start < 0 || end < start {
				continue
			}
			out = append(out, EmoteRange{ID: id, Start: start, End: end})
		}
	}
	return out
}

func hasBadge(badges []Badge, name string) bool {
	for _, b := range badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

// stripAction unwraps a "/me" line sent as CTCP ACTION.
func stripAction(text string) string {
	if strings.HasPrefix(text, "\x01ACTION ") && strings.HasSuffix(text, "\x01") {
		return text[len("\x01ACTION ") : len(text)-1]
	}
	return text
}

func (m *ircMessage) toMessage() Message {
	badges := parseBadges(m.Tags["badges"])
	return Message{
		Channel:     m.channel(),
		User:        m.user(),
		DisplayName: m.Tags["display-name"],
		Text:        stripAction(m.trailing()),
		Privileged:  m.Tags["mod"] == "1" || hasBadge(badges, "broadcaster"),
		Badges:      badges,
		Emotes:      parseEmotes(m.Tags["emotes"]),
	}
}

// dispatch routes a parsed line to h. Cheers are reported only as cheers.
// It reports whether the line carried a chat event.
func dispatch(m *ircMessage, h Handler) bool {
	switch m.Command {
	case "PRIVMSG":
		msg := m.toMessage()
		if msg.User == "" {
			return false
		}
		if bits := cast.ToInt64(m.Tags["bits"]); bits > 0 {
			h.OnCheer(Cheer{Channel: msg.Channel, User: msg.User, Bits: bits, Text: msg.Text})
			return true
		}
		h.OnMessage(msg)
		return true

	case "USERNOTICE":
		sub := Subscription{Channel: m.channel(), User: m.user(), Count: 1}
		switch kind := SubscriptionKind(m.Tags["msg-id"]); kind {
		case KindSub, KindResub:
			sub.Kind = kind
		case KindSubGift:
			// gifts that belong to a bundle are counted by the bundle notice
			if m.Tags["msg-param-community-gift-id"] != "" {
				return false
			}
			sub.Kind = kind
		case KindMassGift:
			sub.Kind = kind
			sub.Count = max(cast.ToInt64(m.Tags["msg-param-mass-gift-count"]), 1)
		default:
			return false
		}
		h.OnSubscription(sub)
		return true
	}
	return false
}

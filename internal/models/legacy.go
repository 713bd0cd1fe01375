package models

import (
	"sort"
	"time"
)

type legacyLastSeen struct {
	Ts      int64  `json:"ts"`
	Message string `json:"message"`
}

type legacyReminder struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	From  string `json:"from"`
	To    string `json:"to"`
	Msg   string `json:"msg"`
	DueTs int64  `json:"dueTs"`
}

type legacyToken struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

type legacyDay struct {
	Subs          int64            `json:"subs"`
	Follows       int64            `json:"follows"`
	BitsByUser    map[string]int64 `json:"bitsByUser"`
	PeakViewers   int64            `json:"peakViewers"`
	SumViewers    int64            `json:"sumViewers"`
	ViewerSamples int64            `json:"viewerSamples"`
}

// LegacyState is the flat document layout written by the first version of
// the bot, with millisecond timestamps.
type LegacyState struct {
	Coins                    map[string]int64                       `json:"coins"`
	LastClaim                map[string]int64                       `json:"lastClaim"`
	LastSeen                 map[string]legacyLastSeen              `json:"lastSeen"`
	BonusActive              bool                                   `json:"bonusActive"`
	BonusExpiresAt           int64                                  `json:"bonusExpiresAt"`
	LastBonusWinner          *string                                `json:"lastBonusWinner"`
	ChannelEmotes            map[string]map[string]bool             `json:"channelEmotes"`
	EmoteCountsByChannel     map[string]map[string]int64            `json:"emoteCountsByChannel"`
	UserEmoteCountsByChannel map[string]map[string]map[string]int64 `json:"userEmoteCountsByChannel"`
	MessageCounts            map[string]map[string]int64            `json:"messageCounts"`
	CurrentWord              *string                                `json:"currentWord"`
	LastFollowerID           *string                                `json:"lastFollowerId"`
	Reminders                []legacyReminder                       `json:"reminders"`
	SpotifyTokens            map[string]legacyToken                 `json:"spotifyTokens"`
	SpotifyVerifiers         map[string]string                      `json:"spotifyVerifiers"`
	DailyStats               map[string]legacyDay                   `json:"dailyStats"`
}

func (l *LegacyState) recognized() bool {
	return l.Coins != nil || l.LastClaim != nil || l.Reminders != nil || l.MessageCounts != nil
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func sortedTally(counts map[string]int64) *Tally {
	t := NewTally()
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.Add(k, counts[k])
	}
	return t
}

func (l *LegacyState) Migrate() *State {
	s := NewState()

	for user, balance := range l.Coins {
		acc := s.Account(user)
		if balance > 0 {
			acc.Balance = balance
		}
	}
	for user, ms := range l.LastClaim {
		s.Account(user).LastClaimAt = fromMillis(ms)
	}
	for user, seen := range l.LastSeen {
		if seen.Ts <= 0 {
			continue
		}
		s.LastSeen[NormalizeUser(user)] = &LastSeen{At: fromMillis(seen.Ts), Message: seen.Message}
	}

	s.Bonus.Active = l.BonusActive
	s.Bonus.ExpiresAt = fromMillis(l.BonusExpiresAt)
	if l.LastBonusWinner != nil {
		s.Bonus.Winner = *l.LastBonusWinner
	}

	for ch, known := range l.ChannelEmotes {
		emotes := s.Channel(ch)
		for token, ok := range known {
			if ok {
				emotes.Register(token)
			}
		}
	}
	for ch, counts := range l.EmoteCountsByChannel {
		emotes := s.Channel(ch)
		for token, n := range counts {
			emotes.Counts[token] = n
		}
	}
	for ch, users := range l.UserEmoteCountsByChannel {
		emotes := s.Channel(ch)
		for user, counts := range users {
			m := emotes.User(user)
			for token, n := range counts {
				m[token] = n
			}
		}
	}

	for day, counts := range l.MessageCounts {
		s.MessageCounts[day] = sortedTally(counts)
	}

	if l.CurrentWord != nil {
		s.CurrentWord = *l.CurrentWord
	}
	if l.LastFollowerID != nil {
		s.LastFollowerID = *l.LastFollowerID
	}

	for _, r := range l.Reminders {
		rem := &Reminder{
			ID:      r.ID,
			From:    NormalizeUser(r.From),
			To:      NormalizeUser(r.To),
			Message: r.Msg,
		}
		switch r.Type {
		case "timed":
			rem.Kind = ReminderTimed
			rem.DueAt = fromMillis(r.DueTs)
		case "onNextChat":
			rem.Kind = ReminderOnNextChat
		default:
			continue
		}
		s.Reminders = append(s.Reminders, rem)
	}

	for user, tok := range l.SpotifyTokens {
		s.MusicTokens[user] = &MusicToken{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiresAt:    fromMillis(tok.ExpiresAt),
		}
	}
	for user, v := range l.SpotifyVerifiers {
		s.MusicVerifiers[user] = v
	}

	for day, d := range l.DailyStats {
		s.DailyStats[day] = &DailyStats{
			Subscriptions:     d.Subs,
			Follows:           d.Follows,
			BitsByUser:        sortedTally(d.BitsByUser),
			PeakViewers:       d.PeakViewers,
			ViewerSampleSum:   d.SumViewers,
			ViewerSampleCount: d.ViewerSamples,
		}
	}

	s.Normalize()
	return s
}

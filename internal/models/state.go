package models

import (
	"math"
	"strings"
	"time"
)

type Account struct {
	Balance     int64     `json:"balance"`
	LastClaimAt time.Time `json:"last_claim_at"`
}

// CanCredit reports whether amount can be added without overflowing.
func (a *Account) CanCredit(amount int64) bool {
	return amount >= 0 && a.Balance <= math.MaxInt64-amount
}

// Credit adds amount to the balance. It refuses, leaving the balance
// untouched, when the sum would overflow.
func (a *Account) Credit(amount int64) bool {
	if !a.CanCredit(amount) {
		return false
	}
	a.Balance += amount
	return true
}

type LastSeen struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// BonusWindow is the single system-wide bonus claim window.
type BonusWindow struct {
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
	Winner    string    `json:"winner,omitempty"`
}

type ReminderKind string

const (
	ReminderTimed      ReminderKind = "timed"
	ReminderOnNextChat ReminderKind = "on_next_chat"
)

type Reminder struct {
	ID        string       `json:"id"`
	Kind      ReminderKind `json:"kind"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	Message   string       `json:"message"`
	DueAt     time.Time    `json:"due_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type DailyStats struct {
	Subscriptions     int64  `json:"subscriptions"`
	Follows           int64  `json:"follows"`
	BitsByUser        *Tally `json:"bits_by_user"`
	PeakViewers       int64  `json:"peak_viewers"`
	ViewerSampleSum   int64  `json:"viewer_sample_sum"`
	ViewerSampleCount int64  `json:"viewer_sample_count"`
}

// ChannelEmotes holds the emote registry of one channel. Only tokens present
// in Known are eligible for queries.
type ChannelEmotes struct {
	Known      map[string]bool             `json:"known"`
	Counts     map[string]int64            `json:"counts"`
	UserCounts map[string]map[string]int64 `json:"user_counts"`
}

type MusicToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type Track struct {
	Name      string
	Artists   string
	Album     string
	URL       string
	IsPlaying bool
}

// State is the whole persisted snapshot. Callers mutate it only through
// Store.Update.
type State struct {
	Accounts       map[string]*Account       `json:"accounts"`
	LastSeen       map[string]*LastSeen      `json:"last_seen"`
	Bonus          BonusWindow               `json:"bonus"`
	Reminders      []*Reminder               `json:"reminders"`
	DailyStats     map[string]*DailyStats    `json:"daily_stats"`
	MessageCounts  map[string]*Tally         `json:"message_counts"`
	Emotes         map[string]*ChannelEmotes `json:"emotes"`
	MusicTokens    map[string]*MusicToken    `json:"music_tokens"`
	MusicVerifiers map[string]string         `json:"music_verifiers"`
	CurrentWord    string                    `json:"current_word,omitempty"`
	LastFollowerID string                    `json:"last_follower_id,omitempty"`
}

func NewState() *State {
	s := &State{}
	s.Normalize()
	return s
}

// Normalize replaces missing collections with empty ones so that documents
// written by older versions load cleanly. Null entries are dropped.
func (s *State) Normalize() {
	if s.Accounts == nil {
		s.Accounts = make(map[string]*Account)
	}
	dropNil(s.Accounts)
	for _, acc := range s.Accounts {
		acc.Balance = max(0, acc.Balance)
	}
	if s.LastSeen == nil {
		s.LastSeen = make(map[string]*LastSeen)
	}
	dropNil(s.LastSeen)
	reminders := make([]*Reminder, 0, len(s.Reminders))
	for _, r := range s.Reminders {
		if r != nil {
			reminders = append(reminders, r)
		}
	}
	s.Reminders = reminders
	if s.DailyStats == nil {
		s.DailyStats = make(map[string]*DailyStats)
	}
	dropNil(s.DailyStats)
	for _, d := range s.DailyStats {
		if d.BitsByUser == nil {
			d.BitsByUser = NewTally()
		}
		d.BitsByUser.normalize()
	}
	if s.MessageCounts == nil {
		s.MessageCounts = make(map[string]*Tally)
	}
	dropNil(s.MessageCounts)
	for _, t := range s.MessageCounts {
		t.normalize()
	}
	if s.Emotes == nil {
		s.Emotes = make(map[string]*ChannelEmotes)
	}
	dropNil(s.Emotes)
	for _, ch := range s.Emotes {
		ch.normalize()
	}
	if s.MusicTokens == nil {
		s.MusicTokens = make(map[string]*MusicToken)
	}
	dropNil(s.MusicTokens)
	if s.MusicVerifiers == nil {
		s.MusicVerifiers = make(map[string]string)
	}
}

func dropNil[V any](m map[string]*V) {
	for k, v := range m {
		if v == nil {
			delete(m, k)
		}
	}
}

func NormalizeUser(user string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(user), "@"))
}

func NormalizeChannel(channel string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(channel), "#"))
}

// Account returns the account of user, creating it on first reference.
func (s *State) Account(user string) *Account {
	user = NormalizeUser(user)
	acc, ok := s.Accounts[user]
	if !ok || acc == nil {
		acc = &Account{}
		s.Accounts[user] = acc
	}
	return acc
}

func (s *State) Day(key string) *DailyStats {
	d, ok := s.DailyStats[key]
	if !ok || d == nil {
		d = &DailyStats{BitsByUser: NewTally()}
		s.DailyStats[key] = d
	}
	return d
}

func (s *State) DayMessages(key string) *Tally {
	t, ok := s.MessageCounts[key]
	if !ok || t == nil {
		t = NewTally()
		s.MessageCounts[key] = t
	}
	return t
}

func (s *State) Channel(channel string) *ChannelEmotes {
	channel = NormalizeChannel(channel)
	ch, ok := s.Emotes[channel]
	if !ok || ch == nil {
		ch = &ChannelEmotes{}
		ch.normalize()
		s.Emotes[channel] = ch
	}
	return ch
}

func (c *ChannelEmotes) normalize() {
	if c.Known == nil {
		c.Known = make(map[string]bool)
	}
	if c.Counts == nil {
		c.Counts = make(map[string]int64)
	}
	if c.UserCounts == nil {
		c.UserCounts = make(map[string]map[string]int64)
	}
	for user, m := range c.UserCounts {
		if m == nil {
			delete(c.UserCounts, user)
		}
	}
}

// User returns the per-user emote counters, creating them on first reference.
func (c *ChannelEmotes) User(user string) map[string]int64 {
	user = NormalizeUser(user)
	m, ok := c.UserCounts[user]
	if !ok {
		m = make(map[string]int64)
		c.UserCounts[user] = m
	}
	return m
}

// Register marks token as a known emote. It reports whether the token was new.
func (c *ChannelEmotes) Register(token string) bool {
	if token == "" || c.Known[token] {
		return false
	}
	c.Known[token] = true
	if _, ok := c.Counts[token]; !ok {
		c.Counts[token] = 0
	}
	return true
}

func (s *State) TotalCoins() int64 {
	var total int64
	for _, acc := range s.Accounts {
		total += acc.Balance
	}
	return total
}

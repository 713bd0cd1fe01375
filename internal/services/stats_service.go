package services

import (
	"coinbot/internal/chat"
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"coinbot/internal/structures"
	"sort"
	"strings"
	"time"
)

type StatsServiceInterface interface {
	DayKey(t time.Time) string
	RecordMessage(msg chat.Message)
	RecordSubscription(sub chat.Subscription)
	RecordCheer(cheer chat.Cheer)
	RecordFollower(id string) bool
	RecordViewers(count int64)
	LastSeen(user string) (models.LastSeen, bool)
	EmoteCount(channel, query string) (string, int64, bool)
	TopEmotes(channel string, limit int) []models.TallyEntry
	UserTopEmotes(channel, user string, limit int) []models.TallyEntry
	TopChatter() (models.TallyEntry, bool)
	TopChatters(limit int) []models.TallyEntry
	Summary() DaySummary
}

type DaySummary struct {
	Subscriptions int64
	Follows       int64
	TopChatter    *models.TallyEntry
	TopBits       *models.TallyEntry
	PeakViewers   int64
	AvgViewers    int64
	HasViewers    bool
}

type StatsService struct {
	store *models.Store
	clock providers.Clock
	loc   *time.Location
}

func NewStatsService(store *models.Store, conf *structures.Config, clock providers.Clock, logger providers.Logger) *StatsService {
	loc := time.Local
	if tz := conf.Stats.Timezone; tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			logger.Warnf(providers.TypeApp, "Unknown stats timezone %q, using local time: %s", tz, err)
		} else {
			loc = l
		}
	}
	return &StatsService{store: store, clock: clock, loc: loc}
}

// DayKey buckets t into a calendar day in the configured zone.
func (s *StatsService) DayKey(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

func (s *StatsService) today() string {
	return s.DayKey(s.clock.Now())
}

// emoteTokens cuts the emote substrings out of text. Offsets count
// characters, not bytes.
func emoteTokens(text string, emotes []chat.EmoteRange) []string {
	if len(emotes) == 0 {
		return nil
	}
	runes := []rune(text)
	tokens := make([]string, 0, len(emotes))
	for _, e := range emotes {
		if e.Start < 0 || e.End < e.Start || e.End >= len(runes) {
			continue
		}
		if token := strings.TrimSpace(string(runes[e.Start : e.End+1])); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// RecordMessage updates LastSeen, today's message tally and the channel's
// emote registry for one chat line.
func (s *StatsService) RecordMessage(msg chat.Message) {
	user := models.NormalizeUser(msg.User)
	if user == "" {
		return
	}
	tokens := emoteTokens(msg.Text, msg.Emotes)
	now := s.clock.Now()
	day := s.DayKey(now)

	s.store.Update(func(st *models.State) {
		st.LastSeen[user] = &models.LastSeen{At: now, Message: msg.Text}
		st.Account(user)
		st.DayMessages(day).Add(user, 1)

		if len(tokens) == 0 {
			return
		}
		ch := st.Channel(msg.Channel)
		userCounts := ch.User(user)
		for _, token := range tokens {
			ch.Register(token)
			ch.Counts[token]++
			userCounts[token]++
		}
	})
}

func (s *StatsService) RecordSubscription(sub chat.Subscription) {
	count := sub.Count
	if count <= 0 {
		count = 1
	}
	day := s.today()
	s.store.Update(func(st *models.State) {
		st.Day(day).Subscriptions += count
	})
}

func (s *StatsService) RecordCheer(cheer chat.Cheer) {
	user := models.NormalizeUser(cheer.User)
	if cheer.Bits <= 0 || user == "" {
		return
	}
	day := s.today()
	s.store.Update(func(st *models.State) {
		st.Day(day).BitsByUser.Add(user, cheer.Bits)
	})
}

// RecordFollower compares id with the last recorded follower. The first id
// ever seen is only remembered; a later different id counts as a follow.
func (s *StatsService) RecordFollower(id string) bool {
	if id == "" {
		return false
	}
	day := s.today()
	isNew := false
	s.store.Update(func(st *models.State) {
		switch st.LastFollowerID {
		case id:
		case "":
			st.LastFollowerID = id
		default:
			st.LastFollowerID = id
			st.Day(day).Follows++
			isNew = true
		}
	})
	return isNew
}

func (s *StatsService) RecordViewers(count int64) {
	if count < 0 {
		return
	}
	day := s.today()
	s.store.Update(func(st *models.State) {
		d := st.Day(day)
		d.PeakViewers = max(d.PeakViewers, count)
		d.ViewerSampleSum += count
		d.ViewerSampleCount++
	})
}

func (s *StatsService) LastSeen(user string) (models.LastSeen, bool) {
	user = models.NormalizeUser(user)
	var (
		seen models.LastSeen
		ok   bool
	)
	s.store.Update(func(st *models.State) {
		if rec, found := st.LastSeen[user]; found && !rec.At.IsZero() {
			seen, ok = *rec, true
		}
	})
	return seen, ok
}

// EmoteCount resolves query against the channel's known emotes, exact match
// first, then case-insensitively.
func (s *StatsService) EmoteCount(channel, query string) (string, int64, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", 0, false
	}
	var (
		key   string
		count int64
		found bool
	)
	s.store.Update(func(st *models.State) {
		ch, ok := st.Emotes[models.NormalizeChannel(channel)]
		if !ok {
			return
		}
		if ch.Known[query] {
			key, count, found = query, ch.Counts[query], true
			return
		}
		known := make([]string, 0, len(ch.Known))
		for k, v := range ch.Known {
			if v {
				known = append(known, k)
			}
		}
		sort.Strings(known)
		for _, k := range known {
			if strings.EqualFold(k, query) {
				key, count, found = k, ch.Counts[k], true
				return
			}
		}
	})
	return key, count, found
}

func rankKnown(counts map[string]int64, known map[string]bool, limit int) []models.TallyEntry {
	entries := make([]models.TallyEntry, 0, len(counts))
	for k, c := range counts {
		if known[k] && c > 0 {
			entries = append(entries, models.TallyEntry{Key: k, Count: c})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func (s *StatsService) TopEmotes(channel string, limit int) []models.TallyEntry {
	var out []models.TallyEntry
	s.store.Update(func(st *models.State) {
		if ch, ok := st.Emotes[models.NormalizeChannel(channel)]; ok {
			out = rankKnown(ch.Counts, ch.Known, limit)
		}
	})
	return out
}

func (s *StatsService) UserTopEmotes(channel, user string, limit int) []models.TallyEntry {
	user = models.NormalizeUser(user)
	var out []models.TallyEntry
	s.store.Update(func(st *models.State) {
		ch, ok := st.Emotes[models.NormalizeChannel(channel)]
		if !ok {
			return
		}
		if counts, ok := ch.UserCounts[user]; ok {
			out = rankKnown(counts, ch.Known, limit)
		}
	})
	return out
}

// TopChatter is today's most active user; ties go to whoever chatted first.
func (s *StatsService) TopChatter() (models.TallyEntry, bool) {
	day := s.today()
	var (
		top models.TallyEntry
		ok  bool
	)
	s.store.Update(func(st *models.State) {
		if t, found := st.MessageCounts[day]; found {
			top, ok = t.Top()
		}
	})
	return top, ok
}

func (s *StatsService) TopChatters(limit int) []models.TallyEntry {
	day := s.today()
	var out []models.TallyEntry
	s.store.Update(func(st *models.State) {
		if t, found := st.MessageCounts[day]; found {
			out = t.Ranked(limit)
		}
	})
	return out
}

func (s *StatsService) Summary() DaySummary {
	day := s.today()
	var sum DaySummary
	s.store.Update(func(st *models.State) {
		if t, found := st.MessageCounts[day]; found {
			if top, ok := t.Top(); ok {
				sum.TopChatter = &top
			}
		}
		d, found := st.DailyStats[day]
		if !found {
			return
		}
		sum.Subscriptions = d.Subscriptions
		sum.Follows = d.Follows
		if top, ok := d.BitsByUser.Top(); ok {
			sum.TopBits = &top
		}
		if d.ViewerSampleCount > 0 {
			sum.HasViewers = true
			sum.PeakViewers = d.PeakViewers
			sum.AvgViewers = (d.ViewerSampleSum + d.ViewerSampleCount/2) / d.ViewerSampleCount
		}
	})
	return sum
}

package services

import (
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ReminderServiceInterface interface {
	RemindMe(user, message string, delay time.Duration) (*models.Reminder, error)
	RemindAt(from, to, message string, delay time.Duration) (*models.Reminder, error)
	RemindOnNextChat(from, to, message string) (*models.Reminder, error)
	DispatchDue() int
	DeliverOnNextChat(user string) []string
}

type ReminderService struct {
	store       *models.Store
	clock       providers.Clock
	broadcaster Broadcaster
	persister   Persister
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface

	idMu    sync.Mutex
	entropy io.Reader
}

func NewReminderService(store *models.Store, clock providers.Clock, broadcaster Broadcaster, persister Persister, logger providers.Logger, metrics providers.MetricsProviderInterface) *ReminderService {
	return &ReminderService{
		store:       store,
		clock:       clock,
		broadcaster: broadcaster,
		persister:   persister,
		logger:      logger,
		metrics:     metrics,
		entropy:     ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *ReminderService) newID(now time.Time) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), s.entropy).String()
}

func ReminderText(r *models.Reminder) string {
	return fmt.Sprintf("@%s you have a reminder from @%s: %s", r.To, r.From, r.Message)
}

func (s *ReminderService) add(kind models.ReminderKind, from, to, message string, delay time.Duration) (*models.Reminder, error) {
	from = models.NormalizeUser(from)
	to = models.NormalizeUser(to)
	message = strings.TrimSpace(message)
	if to == "" {
		return nil, ErrInvalidTarget
	}
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if kind == models.ReminderTimed && delay < 0 {
		return nil, ErrInvalidDuration
	}

	now := s.clock.Now()
	r := &models.Reminder{
		ID:        s.newID(now),
		Kind:      kind,
		From:      from,
		To:        to,
		Message:   message,
		CreatedAt: now,
	}
	if kind == models.ReminderTimed {
		r.DueAt = now.Add(delay)
	}

	s.store.Update(func(st *models.State) {
		st.Reminders = append(st.Reminders, r)
	})
	s.logger.Debugf(providers.TypeCommand, "Reminder %s (%s) from %s to %s", r.ID, r.Kind, r.From, r.To)

	cp := *r
	return &cp, nil
}

// RemindMe schedules a timed reminder from user to user.
func (s *ReminderService) RemindMe(user, message string, delay time.Duration) (*models.Reminder, error) {
	return s.add(models.ReminderTimed, user, user, message, delay)
}

func (s *ReminderService) RemindAt(from, to, message string, delay time.Duration) (*models.Reminder, error) {
	return s.add(models.ReminderTimed, from, to, message, delay)
}

func (s *ReminderService) RemindOnNextChat(from, to, message string) (*models.Reminder, error) {
	return s.add(models.ReminderOnNextChat, from, to, message, 0)
}

// DispatchDue removes every timed reminder due at or before now and announces
// each on all configured channels. It returns the number delivered.
func (s *ReminderService) DispatchDue() int {
	var due []*models.Reminder
	s.store.Update(func(st *models.State) {
		now := s.clock.Now()
		kept := st.Reminders[:0]
		for _, r := range st.Reminders {
			if r.Kind == models.ReminderTimed && !r.DueAt.After(now) {
				due = append(due, r)
				continue
			}
			kept = append(kept, r)
		}
		clear(st.Reminders[len(kept):])
		st.Reminders = kept
	})
	if len(due) == 0 {
		return 0
	}

	for _, r := range due {
		s.broadcaster.Broadcast(ReminderText(r))
		s.metrics.IncBroadcasts("reminder")
	}
	s.logger.Infof(providers.TypeTimer, "Delivered %d timed reminder(s)", len(due))
	_ = s.persister.Persist()
	return len(due)
}

// DeliverOnNextChat removes the on-next-chat reminders addressed to user and
// returns their texts in creation order.
func (s *ReminderService) DeliverOnNextChat(user string) []string {
	user = models.NormalizeUser(user)
	var texts []string
	s.store.Update(func(st *models.State) {
		kept := st.Reminders[:0]
		for _, r := range st.Reminders {
			if r.Kind == models.ReminderOnNextChat && r.To == user {
				texts = append(texts, ReminderText(r))
				continue
			}
			kept = append(kept, r)
		}
		clear(st.Reminders[len(kept):])
		st.Reminders = kept
	})
	return texts
}

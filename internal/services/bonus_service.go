package services

import (
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"coinbot/internal/structures"
	"fmt"
	"sync"
	"time"
)

type BonusServiceInterface interface {
	Start()
	Stop()
	Claim(user string) (BonusResult, error)
}

type BonusResult struct {
	Amount  int64
	Balance int64
}

// BonusService drives the bonus window: closed, open, then claimed or
// expired, and back to closed with a fresh random delay. At most one delay
// timer and one expiry timer are armed at a time.
type BonusService struct {
	store       *models.Store
	conf        *structures.Config
	clock       providers.Clock
	timers      providers.TimerScheduler
	random      providers.Random
	broadcaster Broadcaster
	persister   Persister
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface

	// mu guards the fields below and is always taken before the store lock.
	mu      sync.Mutex
	next    providers.TimerHandle
	expiry  providers.TimerHandle
	gen     uint64
	started bool
}

func NewBonusService(store *models.Store, conf *structures.Config, clock providers.Clock, timers providers.TimerScheduler, random providers.Random, broadcaster Broadcaster, persister Persister, logger providers.Logger, metrics providers.MetricsProviderInterface) *BonusService {
	return &BonusService{
		store:       store,
		conf:        conf,
		clock:       clock,
		timers:      timers,
		random:      random,
		broadcaster: broadcaster,
		persister:   persister,
		logger:      logger,
		metrics:     metrics,
	}
}

// Start arms the cycle. A window left open by a previous run keeps its
// remaining time; one that ran out while the bot was down is closed quietly.
func (s *BonusService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	var remaining time.Duration
	resumed := false
	s.store.Update(func(st *models.State) {
		b := &st.Bonus
		if !b.Active {
			return
		}
		remaining = b.ExpiresAt.Sub(s.clock.Now())
		if remaining > 0 {
			resumed = true
			return
		}
		b.Active = false
		b.ExpiresAt = time.Time{}
	})

	if resumed {
		s.gen++
		gen := s.gen
		s.expiry = s.timers.AfterFunc(remaining, func() { s.expire(gen) })
		s.logger.Infof(providers.TypeTimer, "Resumed open bonus window, %s left", FormatDuration(remaining))
		return
	}
	s.scheduleNextLocked()
}

func (s *BonusService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	if s.next != nil {
		s.next.Stop()
		s.next = nil
	}
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
}

func (s *BonusService) scheduleNextLocked() {
	if s.next != nil {
		s.next.Stop()
	}
	delay := s.random.Between(s.conf.Bonus.MinInterval, s.conf.Bonus.MaxInterval)
	s.next = s.timers.AfterFunc(delay, s.open)
	s.logger.Debugf(providers.TypeTimer, "Next bonus window in %s", FormatDuration(delay))
}

func (s *BonusService) open() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.next = nil
	window := s.conf.Bonus.Window
	s.store.Update(func(st *models.State) {
		st.Bonus.Active = true
		st.Bonus.ExpiresAt = s.clock.Now().Add(window)
		st.Bonus.Winner = ""
	})
	s.gen++
	gen := s.gen
	s.expiry = s.timers.AfterFunc(window, func() { s.expire(gen) })
	s.mu.Unlock()

	s.logger.Infof(providers.TypeTimer, "Bonus window opened for %s", FormatDuration(window))
	s.metrics.IncBroadcasts("bonus_open")
	s.broadcaster.Broadcast(fmt.Sprintf("🎉 Bonus! First person to type %sbonus in chat within %s wins %s coins!",
		s.conf.Bot.Prefix, humanWindow(window), FormatNumber(s.conf.Bonus.Amount)))
	_ = s.persister.Persist()
}

// expire closes the window armed as generation gen. It re-checks the window
// under the lock, so a claim that won the race leaves it a no-op.
func (s *BonusService) expire(gen uint64) {
	s.mu.Lock()
	if !s.started || gen != s.gen {
		s.mu.Unlock()
		return
	}
	expired := false
	s.store.Update(func(st *models.State) {
		if !st.Bonus.Active {
			return
		}
		st.Bonus.Active = false
		st.Bonus.ExpiresAt = time.Time{}
		expired = true
	})
	if !expired {
		s.mu.Unlock()
		return
	}
	s.expiry = nil
	s.scheduleNextLocked()
	s.mu.Unlock()

	s.logger.Infof(providers.TypeTimer, "Bonus window expired unclaimed")
	s.metrics.IncBroadcasts("bonus_expired")
	s.broadcaster.Broadcast("Bonus expired, no one claimed it in time.")
	_ = s.persister.Persist()
}

// Claim awards the open window to user. Only the first claim of a window
// succeeds.
func (s *BonusService) Claim(user string) (BonusResult, error) {
	user = models.NormalizeUser(user)

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res BonusResult
		err error
	)
	s.store.Update(func(st *models.State) {
		b := &st.Bonus
		if b.Winner != "" {
			err = &BonusClaimedError{Winner: b.Winner}
			return
		}
		if !b.Active || !s.clock.Now().Before(b.ExpiresAt) {
			err = ErrNoActiveBonus
			return
		}
		acc := st.Account(user)
		if !acc.Credit(s.conf.Bonus.Amount) {
			err = ErrBalanceLimit
			return
		}
		b.Winner = user
		b.Active = false
		b.ExpiresAt = time.Time{}
		res = BonusResult{Amount: s.conf.Bonus.Amount, Balance: acc.Balance}
	})
	if err != nil {
		return res, err
	}

	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
	if s.started {
		s.scheduleNextLocked()
	}
	s.logger.Infof(providers.TypeTimer, "Bonus claimed by %s", user)
	return res, nil
}

func humanWindow(d time.Duration) string {
	if d > 0 && d%time.Minute == 0 {
		if d == time.Minute {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", int64(d/time.Minute))
	}
	return FormatDuration(d)
}

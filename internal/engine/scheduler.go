package engine

import (
	"coinbot/internal/engine/interfaces"
	"coinbot/internal/providers"
	"coinbot/internal/services"
	"coinbot/internal/structures"
	"context"
	"sync"

	"github.com/roylee0704/gron"
)

// Scheduler owns the periodic work: snapshot saves, timed reminder dispatch
// and follower polling. It also starts and stops the bonus cycle.
type Scheduler struct {
	config    *structures.Config
	logger    providers.Logger
	snapshots *SnapshotManager
	reminders services.ReminderServiceInterface
	followers services.FollowerServiceInterface
	bonus     services.BonusServiceInterface
	cron      *gron.Cron
	pollMu    sync.Mutex
}

// NewScheduler accepts a nil followers service when polling is disabled.
func NewScheduler(config *structures.Config, logger providers.Logger, snapshots *SnapshotManager, reminders services.ReminderServiceInterface, followers services.FollowerServiceInterface, bonus services.BonusServiceInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:    config,
		logger:    logger,
		snapshots: snapshots,
		reminders: reminders,
		followers: followers,
		bonus:     bonus,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		_ = s.snapshots.Persist()
	})

	s.cron.AddFunc(gron.Every(s.config.Reminders.CheckInterval), func() {
		s.reminders.DispatchDue()
	})

	if s.followers != nil && s.config.Followers.PollInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Followers.PollInterval), s.poll)
		s.logger.Infof(providers.TypeTimer, "Follower polling every %s", s.config.Followers.PollInterval)
	}

	s.cron.Start()
	s.bonus.Start()
	s.logger.Infof(providers.TypeTimer, "Scheduler started, saving every %s", s.config.Persistence.SaveInterval)
}

// poll skips a tick while the previous poll is still running.
func (s *Scheduler) poll() {
	if !s.pollMu.TryLock() {
		return
	}
	defer s.pollMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Followers.PollInterval)
	defer cancel()
	s.followers.Poll(ctx)
}

func (s *Scheduler) Stop() {
	s.bonus.Stop()
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.snapshots.Load()
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeStore, "Persisting state...")
	return s.snapshots.Persist()
}

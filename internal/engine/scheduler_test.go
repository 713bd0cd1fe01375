package engine

import (
	"coinbot/internal/models"
	"coinbot/internal/services"
	"coinbot/internal/structures"
	"coinbot/internal/testutil"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReminders struct{ dispatched atomic.Int32 }

func (r *countingReminders) RemindMe(string, string, time.Duration) (*models.Reminder, error) {
	return nil, nil
}
func (r *countingReminders) RemindAt(string, string, string, time.Duration) (*models.Reminder, error) {
	return nil, nil
}
func (r *countingReminders) RemindOnNextChat(string, string, string) (*models.Reminder, error) {
	return nil, nil
}
func (r *countingReminders) DispatchDue() int                  { r.dispatched.Add(1); return 0 }
func (r *countingReminders) DeliverOnNextChat(string) []string { return nil }

type countingFollowers struct{ polls atomic.Int32 }

func (f *countingFollowers) Poll(context.Context) { f.polls.Add(1) }

type recordingBonus struct{ started, stopped atomic.Int32 }

func (b *recordingBonus) Start() { b.started.Add(1) }
func (b *recordingBonus) Stop()  { b.stopped.Add(1) }
func (b *recordingBonus) Claim(string) (services.BonusResult, error) {
	return services.BonusResult{}, nil
}

func schedulerConfig() *structures.Config {
	return &structures.Config{
		Persistence: structures.Persistence{SaveInterval: time.Second},
		Reminders:   structures.RemindersConfig{CheckInterval: time.Second},
		Followers:   structures.FollowersConfig{PollInterval: time.Second},
	}
}

func TestScheduler_RunsJobsAndBonusCycle(t *testing.T) {
	backend := &testutil.MemoryBackend{}
	m, _, logger := newTestManager(backend)
	reminders := &countingReminders{}
	followers := &countingFollowers{}
	bonus := &recordingBonus{}

	s := NewScheduler(schedulerConfig(), logger, m, reminders, followers, bonus)
	s.Init()
	assert.Equal(t, int32(1), bonus.started.Load())

	require.Eventually(t, func() bool {
		return reminders.dispatched.Load() > 0 && followers.polls.Load() > 0 && backend.WriteCount() > 0
	}, 4*time.Second, 50*time.Millisecond)

	s.Stop()
	assert.Equal(t, int32(1), bonus.stopped.Load())
}

func TestScheduler_NoFollowerJobWhenDisabled(t *testing.T) {
	m, _, logger := newTestManager(&testutil.MemoryBackend{})
	s := NewScheduler(schedulerConfig(), logger, m, &countingReminders{}, nil, &recordingBonus{})

	s.Init()
	defer s.Stop()
	assert.Zero(t, logger.Count("info", "Follower polling"))
}

func TestScheduler_PersistAndRestore(t *testing.T) {
	backend := &testutil.MemoryBackend{}
	m, store, logger := newTestManager(backend)
	store.Update(func(st *models.State) { st.Account("alice").Balance = 5 })

	s := NewScheduler(schedulerConfig(), logger, m, &countingReminders{}, nil, &recordingBonus{})
	require.NoError(t, s.Persist())

	m2, store2, _ := newTestManager(backend)
	s2 := NewScheduler(schedulerConfig(), logger, m2, &countingReminders{}, nil, &recordingBonus{})
	require.NoError(t, s2.Restore())
	store2.Update(func(st *models.State) {
		assert.Equal(t, int64(5), st.Accounts["alice"].Balance)
	})
}

func TestScheduler_PersistFailureIsReturned(t *testing.T) {
	backend := &testutil.MemoryBackend{WriteErr: assert.AnError}
	m, _, logger := newTestManager(backend)
	s := NewScheduler(schedulerConfig(), logger, m, &countingReminders{}, nil, &recordingBonus{})

	assert.Error(t, s.Persist())
	assert.Equal(t, 1, logger.Count("error", "Error while persisting data"))
}

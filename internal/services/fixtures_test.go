package services

import (
	"coinbot/internal/models"
	"coinbot/internal/structures"
	"coinbot/internal/testutil"
	"time"
)

var epoch = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testConfig() *structures.Config {
	return &structures.Config{
		Bot: structures.BotConfig{
			Username: "coinbot",
			Channels: []string{"alpha", "beta"},
			Prefix:   "-",
		},
		Economy: structures.EconomyConfig{
			ClaimAmount:   1000,
			ClaimCooldown: 24 * time.Hour,
			WordReward:    1000,
		},
		Bonus: structures.BonusConfig{
			Amount:      20000,
			MinInterval: 30 * time.Minute,
			MaxInterval: 60 * time.Minute,
			Window:      10 * time.Minute,
		},
		Stats:     structures.StatsConfig{Timezone: "UTC", TopSize: 5},
		WebServer: structures.Server{PublicURL: "https://bot.example.com/"},
	}
}

func setBalance(store *models.Store, user string, balance int64) {
	store.Update(func(st *models.State) {
		st.Account(user).Balance = balance
	})
}

func balanceOf(store *models.Store, user string) int64 {
	var b int64
	store.Update(func(st *models.State) {
		if acc, ok := st.Accounts[user]; ok {
			b = acc.Balance
		}
	})
	return b
}

type harness struct {
	store       *models.Store
	conf        *structures.Config
	clock       *testutil.FakeClock
	timers      *testutil.ManualTimers
	random      *testutil.ScriptedRandom
	broadcaster *testutil.RecordingBroadcaster
	persister   *testutil.CountingPersister
	logger      *testutil.MockLogger
	metrics     *testutil.MockMetrics
}

func newHarness() *harness {
	clock := testutil.NewFakeClock(epoch)
	return &harness{
		store:       models.NewStore(),
		conf:        testConfig(),
		clock:       clock,
		timers:      testutil.NewManualTimers(clock),
		random:      &testutil.ScriptedRandom{},
		broadcaster: &testutil.RecordingBroadcaster{},
		persister:   &testutil.CountingPersister{},
		logger:      &testutil.MockLogger{},
		metrics:     testutil.NewMockMetrics(),
	}
}

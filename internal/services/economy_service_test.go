package services

import (
	"coinbot/internal/models"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEconomy(h *harness) *EconomyService {
	return NewEconomyService(h.store, h.conf, h.clock, h.random)
}

func TestBalance_UnknownUserStartsAtZero(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)

	assert.Equal(t, int64(0), svc.Balance("Ghost"))
	var exists bool
	h.store.Update(func(st *models.State) { _, exists = st.Accounts["ghost"] })
	assert.True(t, exists, "account is created lazily on first reference")
}

func TestClaim_FirstClaimPays(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)

	balance, err := svc.Claim("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)
}

func TestClaim_CooldownRejectsAndReportsRemaining(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)

	_, err := svc.Claim("alice")
	require.NoError(t, err)

	h.clock.Add(time.Hour)
	balance, err := svc.Claim("alice")
	var cd *CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, 23*time.Hour, cd.Remaining)
	assert.Equal(t, int64(1000), balance)
	assert.Equal(t, int64(1000), balanceOf(h.store, "alice"))
}

func TestClaim_ExactBoundarySucceeds(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)

	_, err := svc.Claim("alice")
	require.NoError(t, err)

	h.clock.Add(24*time.Hour - time.Second)
	_, err = svc.Claim("alice")
	require.Error(t, err)

	h.clock.Add(time.Second)
	balance, err := svc.Claim("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)
}

func TestGamble_WinAndLoss(t *testing.T) {
	h := newHarness()
	h.random.Flips = []bool{true, false}
	svc := newEconomy(h)
	setBalance(h.store, "alice", 500)

	res, err := svc.Gamble("alice", 500)
	require.NoError(t, err)
	assert.True(t, res.Won)
	assert.Equal(t, int64(1000), res.Balance)

	res, err = svc.Gamble("alice", 1000)
	require.NoError(t, err)
	assert.False(t, res.Won)
	assert.Equal(t, int64(0), res.Balance)
}

func TestGamble_Rejections(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)
	setBalance(h.store, "alice", 100)

	_, err := svc.Gamble("alice", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Gamble("alice", 101)
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(100), insufficient.Balance)
	assert.Equal(t, int64(100), balanceOf(h.store, "alice"))
}

func TestSteal_SuccessMovesCoinsToActor(t *testing.T) {
	h := newHarness()
	h.random.Flips = []bool{true}
	svc := newEconomy(h)
	setBalance(h.store, "alice", 300)
	setBalance(h.store, "bob", 500)

	res, err := svc.Steal("alice", "@Bob", 200)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "bob", res.Target)
	assert.Equal(t, int64(500), res.Balance)
	assert.Equal(t, int64(300), balanceOf(h.store, "bob"))
}

func TestSteal_FailurePaysTarget(t *testing.T) {
	h := newHarness()
	h.random.Flips = []bool{false}
	svc := newEconomy(h)
	setBalance(h.store, "alice", 300)
	setBalance(h.store, "bob", 500)

	res, err := svc.Steal("alice", "bob", 200)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, int64(100), balanceOf(h.store, "alice"))
	assert.Equal(t, int64(700), balanceOf(h.store, "bob"))
}

func TestSteal_Rejections(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)
	setBalance(h.store, "alice", 50)
	setBalance(h.store, "bob", 500)
	setBalance(h.store, "carol", 10)

	_, err := svc.Steal("alice", "", 10)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = svc.Steal("alice", "bob", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Steal("alice", "@ALICE", 10)
	assert.ErrorIs(t, err, ErrSelfTarget)

	_, err = svc.Steal("alice", "carol", 20)
	assert.ErrorIs(t, err, ErrTargetInsufficient)

	_, err = svc.Steal("alice", "bob", 100)
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(100), insufficient.Needed)

	assert.Equal(t, int64(50), balanceOf(h.store, "alice"))
	assert.Equal(t, int64(500), balanceOf(h.store, "bob"))
	assert.Equal(t, int64(10), balanceOf(h.store, "carol"))
}

func TestGrantAndRevoke(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)

	balance, err := svc.Grant("bob", 250)
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)

	balance, err = svc.Revoke("bob", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "revoke clamps at zero")

	_, err = svc.Grant("", 10)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = svc.Revoke("bob", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGuessWord(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)

	_, err := svc.GuessWord("alice", "apple")
	assert.ErrorIs(t, err, ErrNoWord)

	require.NoError(t, svc.SetWord("  Banana "))

	res, err := svc.GuessWord("alice", "apple")
	require.NoError(t, err)
	assert.False(t, res.Correct)

	res, err = svc.GuessWord("bob", "BANANA")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, int64(1000), res.Balance)

	_, err = svc.GuessWord("carol", "banana")
	assert.ErrorIs(t, err, ErrNoWord, "a guessed word is cleared")
}

func TestSetWord_RejectsEmpty(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)
	assert.ErrorIs(t, svc.SetWord("   "), ErrNoWord)
}

func TestRichest(t *testing.T) {
	h := newHarness()
	svc := NewEconomyService(h.store, h.conf, h.clock, h.random)
	setBalance(h.store, "carol", 50)
	setBalance(h.store, "alice", 300)
	setBalance(h.store, "bob", 50)
	setBalance(h.store, "dave", 0)

	assert.Equal(t, []models.TallyEntry{
		{Key: "alice", Count: 300},
		{Key: "bob", Count: 50},
		{Key: "carol", Count: 50},
	}, svc.Richest(5))
	assert.Len(t, svc.Richest(1), 1)
}

func TestPeek_DoesNotCreateAccount(t *testing.T) {
	h := newHarness()
	svc := newEconomy(h)
	h.store.Update(func(st *models.State) { st.Account("alice").Balance = 7 })

	balance, ok := svc.Peek("@Alice")
	assert.True(t, ok)
	assert.Equal(t, int64(7), balance)

	balance, ok = svc.Peek("ghost")
	assert.False(t, ok)
	assert.Equal(t, int64(0), balance)
	h.store.Update(func(st *models.State) { assert.Len(t, st.Accounts, 1) })
}

func TestCredits_RefuseToOverflow(t *testing.T) {
	t.Run("grant", func(t *testing.T) {
		h := newHarness()
		svc := newEconomy(h)

		balance, err := svc.Grant("bob", math.MaxInt64)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), balance)

		balance, err = svc.Grant("bob", 1)
		assert.ErrorIs(t, err, ErrBalanceLimit)
		assert.Equal(t, int64(math.MaxInt64), balance)
	})

	t.Run("gamble", func(t *testing.T) {
		h := newHarness()
		svc := newEconomy(h)
		start := int64(math.MaxInt64/2 + 10)
		h.store.Update(func(st *models.State) { st.Account("bob").Balance = start })
		h.random.Flips = []bool{true}

		_, err := svc.Gamble("bob", start)
		assert.ErrorIs(t, err, ErrBalanceLimit)
		assert.Equal(t, start, svc.Balance("bob"))
		assert.Len(t, h.random.Flips, 1, "no coin is flipped")
	})

	t.Run("steal", func(t *testing.T) {
		h := newHarness()
		svc := newEconomy(h)
		h.store.Update(func(st *models.State) {
			st.Account("alice").Balance = 100
			st.Account("bob").Balance = math.MaxInt64 - 5
		})

		_, err := svc.Steal("alice", "bob", 10)
		assert.ErrorIs(t, err, ErrBalanceLimit)
		assert.Equal(t, int64(100), svc.Balance("alice"))
		assert.Equal(t, int64(math.MaxInt64-5), svc.Balance("bob"))
	})

	t.Run("claim", func(t *testing.T) {
		h := newHarness()
		svc := newEconomy(h)
		h.store.Update(func(st *models.State) { st.Account("bob").Balance = math.MaxInt64 - 1 })

		balance, err := svc.Claim("bob")
		assert.ErrorIs(t, err, ErrBalanceLimit)
		assert.Equal(t, int64(math.MaxInt64-1), balance)

		var last time.Time
		h.store.Update(func(st *models.State) { last = st.Accounts["bob"].LastClaimAt })
		assert.True(t, last.IsZero(), "cooldown is not started")
	})

	t.Run("word", func(t *testing.T) {
		h := newHarness()
		svc := newEconomy(h)
		require.NoError(t, svc.SetWord("apple"))
		h.store.Update(func(st *models.State) { st.Account("bob").Balance = math.MaxInt64 })

		_, err := svc.GuessWord("bob", "apple")
		assert.ErrorIs(t, err, ErrBalanceLimit)
		h.store.Update(func(st *models.State) { assert.Equal(t, "apple", st.CurrentWord) })
	})
}

package services

import (
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"coinbot/internal/structures"
	"slices"
	"strings"
)

type EconomyServiceInterface interface {
	Balance(user string) int64
	Peek(user string) (int64, bool)
	Claim(user string) (int64, error)
	Gamble(user string, amount int64) (GambleResult, error)
	Steal(actor, target string, amount int64) (StealResult, error)
	Grant(user string, amount int64) (int64, error)
	Revoke(user string, amount int64) (int64, error)
	GuessWord(user, guess string) (WordResult, error)
	SetWord(word string) error
	Richest(limit int) []models.TallyEntry
}

type GambleResult struct {
	Won     bool
	Amount  int64
	Balance int64
}

type StealResult struct {
	Success bool
	Target  string
	Amount  int64
	Balance int64
}

type WordResult struct {
	Correct bool
	Reward  int64
	Balance int64
}

type EconomyService struct {
	store  *models.Store
	conf   *structures.Config
	clock  providers.Clock
	random providers.Random
}

func NewEconomyService(store *models.Store, conf *structures.Config, clock providers.Clock, random providers.Random) *EconomyService {
	return &EconomyService{store: store, conf: conf, clock: clock, random: random}
}

func (s *EconomyService) Balance(user string) int64 {
	var balance int64
	s.store.Update(func(st *models.State) {
		balance = st.Account(user).Balance
	})
	return balance
}

// Peek reads a balance without creating the account.
func (s *EconomyService) Peek(user string) (int64, bool) {
	var (
		balance int64
		found   bool
	)
	s.store.Update(func(st *models.State) {
		if acc, ok := st.Accounts[models.NormalizeUser(user)]; ok {
			balance, found = acc.Balance, true
		}
	})
	return balance, found
}

// Richest ranks accounts with a positive balance, highest first. Ties are
// ordered by name.
func (s *EconomyService) Richest(limit int) []models.TallyEntry {
	ranking := models.NewTally()
	s.store.Update(func(st *models.State) {
		users := make([]string, 0, len(st.Accounts))
		for user, acc := range st.Accounts {
			if acc.Balance > 0 {
				users = append(users, user)
			}
		}
		slices.Sort(users)
		for _, user := range users {
			ranking.Add(user, st.Accounts[user].Balance)
		}
	})
	return ranking.Ranked(limit)
}

// Claim pays the daily reward once the cooldown has fully elapsed. A claim at
// exactly the cooldown boundary succeeds.
func (s *EconomyService) Claim(user string) (int64, error) {
	var (
		balance int64
		err     error
	)
	s.store.Update(func(st *models.State) {
		acc := st.Account(user)
		now := s.clock.Now()
		cooldown := s.conf.Economy.ClaimCooldown
		if !acc.LastClaimAt.IsZero() {
			if elapsed := now.Sub(acc.LastClaimAt); elapsed < cooldown {
				err = &CooldownError{Remaining: cooldown - elapsed}
				balance = acc.Balance
				return
			}
		}
		if !acc.Credit(s.conf.Economy.ClaimAmount) {
			err = ErrBalanceLimit
			balance = acc.Balance
			return
		}
		acc.LastClaimAt = now
		balance = acc.Balance
	})
	return balance, err
}

// Gamble flips a fair coin against an implicit house: a win mints amount, a
// loss burns it.
func (s *EconomyService) Gamble(user string, amount int64) (GambleResult, error) {
	if amount <= 0 {
		return GambleResult{}, ErrInvalidAmount
	}
	var (
		res GambleResult
		err error
	)
	s.store.Update(func(st *models.State) {
		acc := st.Account(user)
		if acc.Balance < amount {
			err = &InsufficientFundsError{Balance: acc.Balance, Needed: amount}
			return
		}
		if !acc.CanCredit(amount) {
			err = ErrBalanceLimit
			return
		}
		res.Amount = amount
		res.Won = s.random.Flip()
		if res.Won {
			acc.Credit(amount)
		} else {
			acc.Balance -= amount
		}
		res.Balance = acc.Balance
	})
	return res, err
}

// Steal moves amount between actor and target on a fair coin. A failed
// attempt pays the target.
func (s *EconomyService) Steal(actor, target string, amount int64) (StealResult, error) {
	actor = models.NormalizeUser(actor)
	target = models.NormalizeUser(target)
	if target == "" {
		return StealResult{}, ErrInvalidTarget
	}
	if amount <= 0 {
		return StealResult{}, ErrInvalidAmount
	}
	if target == actor {
		return StealResult{}, ErrSelfTarget
	}

	res := StealResult{Target: target, Amount: amount}
	var err error
	s.store.Update(func(st *models.State) {
		victim := st.Account(target)
		thief := st.Account(actor)
		if victim.Balance < amount {
			err = ErrTargetInsufficient
			return
		}
		if thief.Balance < amount {
			err = &InsufficientFundsError{Balance: thief.Balance, Needed: amount}
			return
		}
		if !thief.CanCredit(amount) || !victim.CanCredit(amount) {
			err = ErrBalanceLimit
			return
		}
		res.Success = s.random.Flip()
		if res.Success {
			victim.Balance -= amount
			thief.Credit(amount)
		} else {
			thief.Balance -= amount
			victim.Credit(amount)
		}
		res.Balance = thief.Balance
	})
	return res, err
}

func (s *EconomyService) Grant(user string, amount int64) (int64, error) {
	if models.NormalizeUser(user) == "" {
		return 0, ErrInvalidTarget
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var (
		balance int64
		err     error
	)
	s.store.Update(func(st *models.State) {
		acc := st.Account(user)
		if !acc.Credit(amount) {
			err = ErrBalanceLimit
		}
		balance = acc.Balance
	})
	return balance, err
}

// Revoke subtracts amount, clamping the balance at zero.
func (s *EconomyService) Revoke(user string, amount int64) (int64, error) {
	if models.NormalizeUser(user) == "" {
		return 0, ErrInvalidTarget
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	var balance int64
	s.store.Update(func(st *models.State) {
		acc := st.Account(user)
		acc.Balance = max(0, acc.Balance-amount)
		balance = acc.Balance
	})
	return balance, nil
}

// GuessWord checks guess against the secret word. A correct guess pays the
// word reward and clears the word.
func (s *EconomyService) GuessWord(user, guess string) (WordResult, error) {
	guess = strings.ToLower(strings.TrimSpace(guess))
	var (
		res WordResult
		err error
	)
	s.store.Update(func(st *models.State) {
		acc := st.Account(user)
		if st.CurrentWord == "" {
			err = ErrNoWord
			return
		}
		if guess != strings.ToLower(st.CurrentWord) {
			res.Balance = acc.Balance
			return
		}
		if !acc.Credit(s.conf.Economy.WordReward) {
			err = ErrBalanceLimit
			res.Balance = acc.Balance
			return
		}
		st.CurrentWord = ""
		res = WordResult{Correct: true, Reward: s.conf.Economy.WordReward, Balance: acc.Balance}
	})
	return res, err
}

func (s *EconomyService) SetWord(word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return ErrNoWord
	}
	s.store.Update(func(st *models.State) {
		st.CurrentWord = word
	})
	return nil
}

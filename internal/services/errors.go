package services

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors. The dispatcher answers these with a usage hint.
var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrEmptyMessage    = errors.New("empty reminder message")
	ErrInvalidTarget   = errors.New("invalid target user")
)

// Business-rule rejections. State is left unchanged.
var (
	ErrSelfTarget         = errors.New("cannot target yourself")
	ErrTargetInsufficient = errors.New("target balance too low")
	ErrNoActiveBonus      = errors.New("no active bonus")
	ErrNoWord             = errors.New("no active word")
	ErrBalanceLimit       = errors.New("balance would exceed the maximum")
)

// External dependency failures around the music service.
var (
	ErrNotConnected           = errors.New("music account not connected")
	ErrRefreshFailed          = errors.New("music token refresh failed")
	ErrInvalidTicket          = errors.New("invalid or expired link")
	ErrNoPendingAuthorization = errors.New("no authorization request found for this user")
)

type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, %s remaining", FormatDuration(e.Remaining))
}

type InsufficientFundsError struct {
	Balance int64
	Needed  int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %d, need %d", e.Balance, e.Needed)
}

type BonusClaimedError struct {
	Winner string
}

func (e *BonusClaimedError) Error() string {
	return "bonus already claimed by " + e.Winner
}

package providers

import (
	"math/rand/v2"
	"time"
)

type Clock interface {
	Now() time.Time
}

// TimerHandle cancels a pending one-shot task. Stop reports whether the task
// was cancelled before it ran.
type TimerHandle interface {
	Stop() bool
}

type TimerScheduler interface {
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

type Random interface {
	// Flip is an unbiased coin.
	Flip() bool
	// Between returns a uniformly random duration in [min, max].
	Between(min, max time.Duration) time.Duration
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type SystemTimers struct{}

func (SystemTimers) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}

type SystemRandom struct{}

func (SystemRandom) Flip() bool { return rand.IntN(2) == 0 }

func (SystemRandom) Between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min+1)
}

func NewClockProvider() Clock { return SystemClock{} }

func NewTimerProvider() TimerScheduler { return SystemTimers{} }

func NewRandomProvider() Random { return SystemRandom{} }

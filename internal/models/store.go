package models

import (
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Store owns the single State snapshot. Every read or write of the snapshot
// runs inside Update, so tasks coming from chat events and timers never
// interleave.
type Store struct {
	mu    sync.Mutex
	state *State
}

func NewStore() *Store {
	return &Store{state: NewState()}
}

func (s *Store) Update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Replace swaps in a restored snapshot.
func (s *Store) Replace(st *State) {
	if st == nil {
		st = NewState()
	}
	st.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Encode serialises the whole snapshot while holding the lock so the result
// is never torn by a concurrent task.
func (s *Store) Encode(now time.Time) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(&Snapshot{
		Version: SnapshotVersion,
		SavedAt: now,
		State:   s.state,
	})
}

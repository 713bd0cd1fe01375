package models

import (
	"errors"
	"time"

	json "github.com/goccy/go-json"
)

const SnapshotVersion = 1

var ErrUnknownFormat = errors.New("unknown snapshot format")

// Snapshot is the persisted envelope around State.
type Snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	State   *State    `json:"state"`
}

// DecodeSnapshot parses a persisted document. It accepts the versioned
// envelope and the flat legacy layout; the second return value reports
// whether a legacy migration happened.
func DecodeSnapshot(data []byte) (*State, bool, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err == nil && snap.Version > 0 {
		if snap.State == nil {
			snap.State = NewState()
		}
		snap.State.Normalize()
		return snap.State, false, nil
	}

	var legacy LegacyState
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, false, err
	}
	if !legacy.recognized() {
		return nil, false, ErrUnknownFormat
	}
	return legacy.Migrate(), true, nil
}

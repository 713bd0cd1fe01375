package engine

import (
	"coinbot/internal/engine/interfaces"
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"context"
	"fmt"
	"sync"
	"time"
)

const ioTimeout = 10 * time.Second

// SnapshotManager moves the whole State between the Store and a backend.
type SnapshotManager struct {
	store      *models.Store
	backend    interfaces.BackendInterface
	compressor interfaces.CompressorInterface
	clock      providers.Clock
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	saveMu     sync.Mutex
}

func NewSnapshotManager(store *models.Store, backend interfaces.BackendInterface, compressor interfaces.CompressorInterface, clock providers.Clock, logger providers.Logger, metrics providers.MetricsProviderInterface) *SnapshotManager {
	return &SnapshotManager{
		store:      store,
		backend:    backend,
		compressor: compressor,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Save encodes and writes the snapshot. saveMu is taken before encoding so an
// older encoding can never overwrite a newer one.
func (m *SnapshotManager) Save() error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	start := time.Now()
	data, err := m.store.Encode(m.clock.Now())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	compressed, err := m.compressor.Compress(data)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()
	if err := m.backend.Write(ctx, compressed); err != nil {
		return fmt.Errorf("write snapshot to %s: %w", m.backend.Name(), err)
	}

	m.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

// Persist saves and logs failures. The in-memory state stays authoritative
// when a save fails.
func (m *SnapshotManager) Persist() error {
	if err := m.Save(); err != nil {
		m.logger.Errorf(providers.TypeStore, "Error while persisting data: %s", err)
		return err
	}
	m.logger.Debugf(providers.TypeStore, "Persisted snapshot to %s", m.backend.Name())
	return nil
}

// Load restores the snapshot. A missing snapshot leaves the Store untouched.
func (m *SnapshotManager) Load() error {
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	data, err := m.backend.Read(ctx)
	if err != nil {
		return fmt.Errorf("read snapshot from %s: %w", m.backend.Name(), err)
	}
	if data == nil {
		m.logger.Infof(providers.TypeStore, "No snapshot in %s, starting fresh", m.backend.Name())
		return nil
	}

	raw, err := m.compressor.Decompress(data)
	if err != nil {
		m.logger.Warnf(providers.TypeStore, "Snapshot is not compressed, reading it as plain JSON")
		raw = data
	}

	st, migrated, err := models.DecodeSnapshot(raw)
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if migrated {
		m.logger.Warnf(providers.TypeStore, "Migrated snapshot from the legacy layout")
	}

	m.store.Replace(st)
	return nil
}

func (m *SnapshotManager) Close() {
	m.compressor.Close()
}

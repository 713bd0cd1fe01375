package di

import (
	"coinbot/internal/clients"
	"coinbot/internal/engine"
	"coinbot/internal/engine/interfaces"
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"coinbot/internal/services"
	"coinbot/internal/structures"
)

func provideLogger(conf *structures.Config) (providers.Logger, func(), error) {
	logger, err := providers.NewLogProvider(conf)
	if err != nil {
		return nil, nil, err
	}
	return logger, logger.Close, nil
}

func provideSnapshotManager(store *models.Store, backend interfaces.BackendInterface, compressor interfaces.CompressorInterface, clock providers.Clock, logger providers.Logger, metrics providers.MetricsProviderInterface) (*engine.SnapshotManager, func()) {
	m := engine.NewSnapshotManager(store, backend, compressor, clock, logger, metrics)
	return m, m.Close
}

// provideFollowerService returns a nil interface when follower polling is
// switched off or Helix credentials are missing.
func provideFollowerService(conf *structures.Config, helix *clients.HelixClient, stats services.StatsServiceInterface, broadcaster services.Broadcaster, persister services.Persister, logger providers.Logger, metrics providers.MetricsProviderInterface) services.FollowerServiceInterface {
	if !conf.Followers.Enabled {
		return nil
	}
	if !helix.Configured() {
		logger.Warnf(providers.TypeApp, "Follower polling enabled but Helix credentials are missing, skipping")
		return nil
	}
	return services.NewFollowerService(helix, stats, broadcaster, persister, logger, metrics)
}

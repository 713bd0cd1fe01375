//go:build wireinject
// +build wireinject

package di

import (
	"coinbot/internal"
	"coinbot/internal/chat"
	"coinbot/internal/clients"
	"coinbot/internal/controllers"
	"coinbot/internal/engine"
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"coinbot/internal/services"
	"coinbot/internal/structures"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewSecretsProvider,
		provideLogger,
		providers.NewClockProvider,
		providers.NewTimerProvider,
		providers.NewRandomProvider,
		models.NewStore,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		engine.NewZstdCompressor,
		engine.NewBackend,
		provideSnapshotManager,
		wire.Bind(new(services.Persister), new(*engine.SnapshotManager)),

		chat.NewTwitchClient,
		wire.Bind(new(chat.Sender), new(*chat.TwitchClient)),
		chat.NewChannelBroadcaster,
		wire.Bind(new(services.Broadcaster), new(*chat.ChannelBroadcaster)),

		clients.NewHelixClient,
		clients.NewSpotifyClient,
		wire.Bind(new(services.MusicClient), new(*clients.SpotifyClient)),

		services.NewEconomyService,
		wire.Bind(new(services.EconomyServiceInterface), new(*services.EconomyService)),
		services.NewBonusService,
		wire.Bind(new(services.BonusServiceInterface), new(*services.BonusService)),
		services.NewReminderService,
		wire.Bind(new(services.ReminderServiceInterface), new(*services.ReminderService)),
		services.NewStatsService,
		wire.Bind(new(services.StatsServiceInterface), new(*services.StatsService)),
		services.NewSongService,
		wire.Bind(new(services.SongServiceInterface), new(*services.SongService)),
		provideFollowerService,

		engine.NewScheduler,
		controllers.NewChatController,
		controllers.NewHealthController,
		controllers.NewOAuthController,
		controllers.NewApiController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

package internal

import (
	"coinbot/internal/chat"
	"coinbot/internal/controllers"
	"coinbot/internal/engine/interfaces"
	"coinbot/internal/providers"
	"coinbot/internal/structures"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	WebServer *http.Server
	conf      *structures.Config
	logger    providers.Logger
	scheduler interfaces.SchedulerInterface
	twitch    *chat.TwitchClient
}

func NewApp(chatController *controllers.ChatController, healthController *controllers.HealthController, twitch *chat.TwitchClient, scheduler interfaces.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *App {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Get("/health", healthController.Health)
	if conf.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Group(func(api chi.Router) {
		api.Use(providers.MetricsMiddleware(metrics))
		router.Mount(api)
	})

	twitch.SetHandler(chatController)

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:      conf,
		logger:    logger,
		scheduler: scheduler,
		twitch:    twitch,
	}
}

// Run restores state, starts the chat session, the timers and the HTTP
// listener, and blocks until a shutdown signal or a fatal error.
func (a *App) Run() error {
	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)
	if err := a.scheduler.Restore(); err != nil {
		a.logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.scheduler.Init()

	chatErr := make(chan error, 1)
	go func() {
		chatErr <- a.twitch.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", a.conf.WebServer.Host, a.conf.WebServer.Port)
		if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	case err := <-chatErr:
		if err != nil {
			runErr = fmt.Errorf("chat error: %w", err)
		}
	}

	cancel()
	a.scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := a.WebServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	if err := a.scheduler.Persist(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/versecraft/versecraft/internal/api"
	"github.com/versecraft/versecraft/internal/cache"
	"github.com/versecraft/versecraft/internal/config"
	"github.com/versecraft/versecraft/internal/db"
	"github.com/versecraft/versecraft/internal/generation"
	"github.com/versecraft/versecraft/internal/notify"
	"github.com/versecraft/versecraft/internal/prompts"
	"github.com/versecraft/versecraft/internal/provider"
	"github.com/versecraft/versecraft/internal/settings"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	c := cache.New(cfg.Cache.SweepInterval)
	defer c.Close()

	// Notifications stay in-process unless NATS is configured, in
	// which case writes on one instance invalidate the others.
	bus := notify.NewBus()
	var publisher notify.Publisher = bus
	if cfg.NATSURL != "" {
		bc, err := notify.NewBroadcaster(cfg.NATSURL, bus)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("failed to connect to NATS")
		}
		defer bc.Close()
		publisher = bc
	}

	var (
		settingsStore settings.Store
		promptRepo    prompts.Repository
	)
	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		settingsStore = settings.NewPgStore(database.Pool())
		promptRepo = prompts.NewPgRepository(database.Pool())
	} else {
		log.Warn().Msg("no DATABASE_URL set, settings and prompts will not survive restarts")
		settingsStore = settings.NewMemoryStore(nil)
		promptRepo = prompts.NewMemoryRepository()
	}

	settingsSvc := settings.NewService(settingsStore, c, publisher, cfg.Cache.SettingsTTL)
	promptsSvc := prompts.NewService(promptRepo, c, publisher, cfg.Cache.PromptsTTL)

	resolver := generation.NewResolver(settingsSvc)
	resolver.SetEnvLookup(cfg.AI.Lookup)

	generator := generation.NewService(
		provider.NewRegistry(),
		resolver,
		promptsSvc,
		generation.NewComposer(nil),
	)

	// Cross-instance events land on the bus; drop the affected cache
	// entries so the next read refetches.
	bus.Subscribe(notify.TopicConfigChanged, func(notify.Event) { c.InvalidatePattern("settings") })
	bus.Subscribe(notify.TopicPromptsChanged, func(notify.Event) { c.InvalidatePattern("prompts") })

	srv := api.NewServer(generator, promptsSvc, settingsSvc)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not gracefully shutdown the server")
		}
		close(done)
	}()

	log.Info().Int("port", cfg.Port).Msg("starting API server")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("could not listen on port")
	}

	<-done
	log.Info().Msg("server stopped")
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/versecraft/versecraft/internal/cache"
	"github.com/versecraft/versecraft/internal/db"
	"github.com/versecraft/versecraft/internal/generation"
	"github.com/versecraft/versecraft/internal/notify"
	"github.com/versecraft/versecraft/internal/prompts"
	"github.com/versecraft/versecraft/internal/provider"
	"github.com/versecraft/versecraft/internal/settings"
)

// fileConfig is the optional YAML config file. Settings given here
// seed the in-memory store when no database is configured; with a
// database they are ignored in favor of the stored values.
type fileConfig struct {
	DatabaseURL string            `yaml:"database_url"`
	Settings    map[string]string `yaml:"settings"`
}

func loadFileConfig() (*fileConfig, error) {
	path := configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return &fileConfig{}, nil
		}
		path = filepath.Join(home, ".versecraft.yaml")
		if _, err := os.Stat(path); err != nil {
			return &fileConfig{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// app holds the wired services for a single CLI invocation.
type app struct {
	generator *generation.Service
	prompts   *prompts.Service
	settings  *settings.Service

	close func()
}

func buildApp(ctx context.Context) (*app, error) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := loadFileConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	c := cache.New(time.Minute)
	bus := notify.NewBus()

	var (
		settingsStore settings.Store
		promptRepo    prompts.Repository
		closers       []func()
	)
	closers = append(closers, c.Close)

	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, database.Close)

		if err := database.Migrate(ctx); err != nil {
			c.Close()
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		settingsStore = settings.NewPgStore(database.Pool())
		promptRepo = prompts.NewPgRepository(database.Pool())
	} else {
		settingsStore = settings.NewMemoryStore(cfg.Settings)
		promptRepo = prompts.NewMemoryRepository()
	}

	settingsSvc := settings.NewService(settingsStore, c, bus, time.Minute)
	promptsSvc := prompts.NewService(promptRepo, c, bus, time.Minute)

	generator := generation.NewService(
		provider.NewRegistry(),
		generation.NewResolver(settingsSvc),
		promptsSvc,
		generation.NewComposer(nil),
	)

	return &app{
		generator: generator,
		prompts:   promptsSvc,
		settings:  settingsSvc,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

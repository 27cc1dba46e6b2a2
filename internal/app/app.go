// Package app wires config, catalog, store, telemetry and engine together
// for the commands.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"zenith/internal/catalog"
	"zenith/internal/config"
	"zenith/internal/game"
	"zenith/internal/logx"
	"zenith/internal/progression"
	"zenith/internal/store"
	"zenith/internal/telemetry"
)

type App struct {
	Config    *config.Config
	Catalog   catalog.Catalog
	Store     store.Repository
	Telemetry *telemetry.MemoryRepository
	Engine    *progression.Engine
	Logger    *log.Logger
}

// Build opens the store and restores the saved state into a new engine.
// The store doubles as the quest claim ledger.
func Build(ctx context.Context, cfg *config.Config, clock game.Clock, logger *log.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if clock == nil {
		clock = game.RealClock{}
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		cat = loaded
	}

	repo, err := store.Open(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	st, found, err := repo.Load(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}

	seed := cfg.Runtime.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	events := telemetry.NewMemoryRepository().WithClock(clock.Now)
	engine := progression.NewEngine(progression.Options{
		Catalog:     cat,
		Balance:     *cfg.Balance,
		Goals:       cfg.Quests.Goals,
		QuestPeriod: cfg.Quests.ResetAfter,
		Clock:       clock,
		Rand:        game.NewRand(seed),
		Ledger:      repo,
		Telemetry:   events,
		Logger:      logger,
		State:       &st,
	})

	logx.Info(logger, "app_ready", map[string]any{
		"driver":   cfg.Storage.Driver,
		"restored": found,
		"level":    st.Level,
		"catalog":  len(cat.Standard) + len(cat.Prestige),
	})
	return &App{
		Config:    cfg,
		Catalog:   cat,
		Store:     repo,
		Telemetry: events,
		Engine:    engine,
		Logger:    logger,
	}, nil
}

// Save writes the engine's current state.
func (a *App) Save(ctx context.Context) error {
	s, _ := a.Engine.Snapshot()
	return a.Store.Save(ctx, s)
}

func (a *App) Close() error {
	return a.Store.Close()
}

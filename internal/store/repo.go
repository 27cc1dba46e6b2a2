// Package store persists the game state and the quest claim ledger.
package store

import (
	"context"
	"fmt"
	"log"

	"zenith/internal/config"
	"zenith/internal/game"
)

// Repository saves whole snapshots and doubles as the durable claim ledger.
type Repository interface {
	// Load returns the latest saved state. found is false when nothing has
	// been saved yet.
	Load(ctx context.Context) (s game.GameState, found bool, err error)
	Save(ctx context.Context, s game.GameState) error
	// Claim marks key and saves granted, the state carrying the reward, in
	// one write. It reports false and writes nothing when key is taken.
	Claim(ctx context.Context, key string, granted game.GameState) (bool, error)
	Close() error
}

// Open picks the backend named by cfg.Driver.
func Open(cfg config.Storage, logger *log.Logger) (Repository, error) {
	cfg.ApplyDefaults()
	switch cfg.Driver {
	case config.DriverFile:
		return NewFileRepo(cfg.Path)
	case config.DriverSQLite:
		return OpenSQL(DialectSQLite, cfg.Path, cfg.KeepSnapshots, logger)
	case config.DriverPostgres:
		return OpenSQL(DialectPostgres, cfg.DSN, cfg.KeepSnapshots, logger)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// Package scheduler drives the engine in the background: passive income
// ticks, autosaves and the cron-triggered daily quest rollover.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"zenith/internal/game"
	"zenith/internal/logx"
	"zenith/internal/progression"
)

// Saver persists a snapshot.
type Saver interface {
	Save(ctx context.Context, s game.GameState) error
}

type Options struct {
	Engine           *progression.Engine
	Store            Saver
	Clock            game.Clock
	TickInterval     time.Duration
	AutosaveInterval time.Duration
	RolloverCron     string
	Logger           *log.Logger
}

type Runner struct {
	engine   *progression.Engine
	store    Saver
	clock    game.Clock
	tick     time.Duration
	autosave time.Duration
	cron     *cron.Cron
	logger   *log.Logger

	saveMu sync.Mutex
	saved  uint64
}

func New(opts Options) (*Runner, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("scheduler: engine is required")
	}
	if opts.Clock == nil {
		opts.Clock = game.RealClock{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 50 * time.Millisecond
	}
	if opts.AutosaveInterval <= 0 {
		opts.AutosaveInterval = time.Minute
	}
	if opts.RolloverCron == "" {
		opts.RolloverCron = "0 * * * * *"
	}

	r := &Runner{
		engine:   opts.Engine,
		store:    opts.Store,
		clock:    opts.Clock,
		tick:     opts.TickInterval,
		autosave: opts.AutosaveInterval,
		cron:     cron.New(cron.WithSeconds()),
		logger:   opts.Logger,
		saved:    opts.Engine.Version(),
	}
	if _, err := r.cron.AddFunc(opts.RolloverCron, r.rollover); err != nil {
		return nil, fmt.Errorf("register rollover job: %w", err)
	}
	return r, nil
}

// Run ticks and autosaves until ctx is done, then writes a final save.
func (r *Runner) Run(ctx context.Context) error {
	r.cron.Start()
	logx.Info(r.logger, "scheduler_started", map[string]any{
		"tick_ms":     r.tick.Milliseconds(),
		"autosave_ms": r.autosave.Milliseconds(),
	})

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	saver := time.NewTicker(r.autosave)
	defer saver.Stop()

	r.engine.Tick(ctx, r.clock.Now())
	for {
		select {
		case <-ctx.Done():
			<-r.cron.Stop().Done()
			// The run context is gone; the last save gets its own.
			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_, err := r.SaveNow(saveCtx)
			logx.Info(r.logger, "scheduler_stopped", nil)
			return err
		case <-ticker.C:
			r.engine.Tick(ctx, r.clock.Now())
		case <-saver.C:
			if _, err := r.SaveNow(ctx); err != nil {
				logx.Error(r.logger, "autosave_failed", err, nil)
			}
		}
	}
}

// SaveNow writes a snapshot if the state changed since the last save and
// reports whether it wrote one.
func (r *Runner) SaveNow(ctx context.Context) (bool, error) {
	if r.store == nil {
		return false, nil
	}
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	s, v := r.engine.Snapshot()
	if v == r.saved {
		return false, nil
	}
	if err := r.store.Save(ctx, s); err != nil {
		return false, err
	}
	r.saved = v
	return true, nil
}

func (r *Runner) rollover() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if !r.engine.RolloverQuests(ctx, r.clock.Now()) {
		return
	}
	if _, err := r.SaveNow(ctx); err != nil {
		logx.Error(r.logger, "rollover_save_failed", err, nil)
	}
}

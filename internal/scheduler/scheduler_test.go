package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith/internal/game"
	"zenith/internal/progression"
	"zenith/internal/quest"
)

var start = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type memSaver struct {
	mu    sync.Mutex
	saves []game.GameState
	err   error
}

func (m *memSaver) Save(ctx context.Context, s game.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves = append(m.saves, s)
	return nil
}

func (m *memSaver) last() (game.GameState, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return game.GameState{}, 0
	}
	return m.saves[len(m.saves)-1], len(m.saves)
}

func newEngine(st *game.GameState) (*progression.Engine, *game.FakeClock) {
	clock := game.NewFakeClock(start)
	return progression.NewEngine(progression.Options{
		Clock: clock,
		Rand:  game.NewSequenceRand(),
		State: st,
	}), clock
}

func TestSaveNowOnlyWhenChanged(t *testing.T) {
	e, clock := newEngine(nil)
	saver := &memSaver{}
	r, err := New(Options{Engine: e, Store: saver, Clock: clock})
	require.NoError(t, err)
	ctx := context.Background()

	wrote, err := r.SaveNow(ctx)
	require.NoError(t, err)
	assert.False(t, wrote, "nothing changed since start")

	e.Click(ctx)
	wrote, err = r.SaveNow(ctx)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = r.SaveNow(ctx)
	require.NoError(t, err)
	assert.False(t, wrote)

	s, n := saver.last()
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.TotalClicks)
}

func TestSaveNowRetriesAfterFailure(t *testing.T) {
	e, clock := newEngine(nil)
	saver := &memSaver{err: errors.New("disk full")}
	r, err := New(Options{Engine: e, Store: saver, Clock: clock})
	require.NoError(t, err)
	ctx := context.Background()

	e.Click(ctx)
	_, err = r.SaveNow(ctx)
	require.Error(t, err)

	saver.mu.Lock()
	saver.err = nil
	saver.mu.Unlock()

	wrote, err := r.SaveNow(ctx)
	require.NoError(t, err)
	assert.True(t, wrote)
}

func TestRunTicksAndSavesOnShutdown(t *testing.T) {
	st := game.InitialState()
	st.Upgrades["auto_1"] = 10
	e, clock := newEngine(&st)
	saver := &memSaver{}
	r, err := New(Options{
		Engine:           e,
		Store:            saver,
		Clock:            clock,
		TickInterval:     time.Millisecond,
		AutosaveInterval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		clock.Advance(time.Second)
		s, _ := e.Snapshot()
		return s.Currency > 0
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}

	saved, n := saver.last()
	require.Equal(t, 1, n)
	current, _ := e.Snapshot()
	assert.Equal(t, current.Currency, saved.Currency)
	assert.Greater(t, saved.Currency, 0.0)
}

func TestRolloverJob(t *testing.T) {
	e, clock := newEngine(nil)
	saver := &memSaver{}
	r, err := New(Options{Engine: e, Store: saver, Clock: clock})
	require.NoError(t, err)
	ctx := context.Background()

	e.Click(ctx)
	_, err = r.SaveNow(ctx)
	require.NoError(t, err)

	r.rollover()
	_, n := saver.last()
	assert.Equal(t, 1, n, "nothing due yet")

	clock.Advance(25 * time.Hour)
	r.rollover()
	s, n := saver.last()
	assert.Equal(t, 2, n)
	assert.True(t, s.LastDailyReset.Equal(start.Add(25*time.Hour)))
	require.Len(t, s.DailyQuests, 3)
	cq, ok := quest.Find(s.DailyQuests, quest.IDClicks)
	require.True(t, ok)
	assert.Zero(t, cq.Current)
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	e, _ := newEngine(nil)
	_, err = New(Options{Engine: e, RolloverCron: "not a cron"})
	assert.Error(t, err)

	r, err := New(Options{Engine: e})
	require.NoError(t, err)
	wrote, err := r.SaveNow(context.Background())
	require.NoError(t, err)
	assert.False(t, wrote, "no store configured")
}

package progression

import (
	"context"
	"log"
	"sync"
	"time"

	"zenith/internal/catalog"
	"zenith/internal/config"
	"zenith/internal/console"
	"zenith/internal/cost"
	"zenith/internal/game"
	"zenith/internal/logx"
	"zenith/internal/prestige"
	"zenith/internal/quest"
	"zenith/internal/telemetry"
)

// Ledger records reward grants. Claim persists key together with granted, the
// state that carries the paid reward, and reports false when key was taken.
type Ledger interface {
	Claim(ctx context.Context, key string, granted game.GameState) (bool, error)
}

// KeyLedger adapts a key-only ledger. granted is not kept.
type KeyLedger struct {
	Keys quest.ClaimLedger
}

func (l KeyLedger) Claim(ctx context.Context, key string, _ game.GameState) (bool, error) {
	return l.Keys.Claim(ctx, key)
}

type Options struct {
	Catalog     catalog.Catalog
	Balance     config.Balance
	Goals       quest.Goals
	QuestPeriod time.Duration
	Clock       game.Clock
	Rand        game.Rand
	Ledger      Ledger
	Telemetry   telemetry.Repository
	Logger      *log.Logger
	State       *game.GameState
}

// Engine owns the game state. Every transition takes the lock, so clicks,
// ticks, purchases, console commands and Ascend never interleave.
//
// Each transition runs the daily rollover check, applies its change, pays
// any newly completed quest rewards and bumps the version.
type Engine struct {
	mu sync.Mutex

	state    game.GameState
	version  uint64
	lastTick time.Time
	claimed  map[string]bool

	catalog   catalog.Catalog
	balance   config.Balance
	goals     quest.Goals
	period    time.Duration
	clock     game.Clock
	rng       game.Rand
	ledger    Ledger
	telemetry telemetry.Repository
	logger    *log.Logger
}

func NewEngine(opts Options) *Engine {
	if len(opts.Catalog.Standard) == 0 && len(opts.Catalog.Prestige) == 0 {
		opts.Catalog = catalog.Default()
	}
	if opts.Balance.XPGrowth == 0 {
		opts.Balance = config.Default()
	}
	opts.Balance.ApplyDefaults()
	if opts.Goals == (quest.Goals{}) {
		opts.Goals = quest.DefaultGoals()
	}
	if opts.QuestPeriod <= 0 {
		opts.QuestPeriod = quest.DefaultPeriod
	}
	if opts.Clock == nil {
		opts.Clock = game.RealClock{}
	}
	if opts.Rand == nil {
		opts.Rand = game.NewRand(time.Now().UnixNano())
	}
	if opts.Ledger == nil {
		opts.Ledger = KeyLedger{Keys: quest.NewMemoryLedger()}
	}

	e := &Engine{
		claimed:   make(map[string]bool),
		catalog:   opts.Catalog,
		balance:   opts.Balance,
		goals:     opts.Goals,
		period:    opts.QuestPeriod,
		clock:     opts.Clock,
		rng:       opts.Rand,
		ledger:    opts.Ledger,
		telemetry: opts.Telemetry,
		logger:    opts.Logger,
	}
	s := game.InitialState()
	if opts.State != nil {
		s = *opts.State
	}
	e.state = e.settle(s)
	return e
}

// settle repairs a state coming from outside the engine: defaults for missing
// fields, counts within max level and XP below the current requirement.
func (e *Engine) settle(s game.GameState) game.GameState {
	out := game.ClampCounts(game.Normalize(s), e.catalog)
	levelUp(&out, e.balance)
	return out
}

func (e *Engine) Catalog() catalog.Catalog { return e.catalog }

func (e *Engine) Balance() config.Balance { return e.balance }

// Snapshot returns a copy of the state and its version. The version changes
// after every committed transition.
func (e *Engine) Snapshot() (game.GameState, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone(), e.version
}

func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Replace swaps in a whole state, as after an import.
func (e *Engine) Replace(ctx context.Context, s game.GameState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = e.settle(s)
	e.claimed = make(map[string]bool)
	e.finish(ctx, e.state.DailyQuests)
}

// Click is one manual action worth the current click power.
func (e *Engine) Click(ctx context.Context) Award {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.begin()
	power := Derive(e.state, e.catalog, e.balance).ClickPower
	next, award := AwardCurrency(e.state, e.catalog, e.balance, e.rng, power, true)
	e.state = next
	e.record(telemetry.EventClick, telemetry.EventMetadata{"amount": power, "doubled": award.Doubled})
	e.recordLevels(award, "click")
	e.finish(ctx, before)
	return award
}

// Tick credits passive income for the time elapsed since the previous tick.
// The first tick only records its time.
func (e *Engine) Tick(ctx context.Context, now time.Time) Award {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lastTick.IsZero() {
		e.lastTick = now
		return Award{}
	}
	elapsed := now.Sub(e.lastTick)
	e.lastTick = now
	if elapsed <= 0 {
		return Award{}
	}

	income := Derive(e.state, e.catalog, e.balance).AutoIncome * elapsed.Seconds()
	if income <= 0 {
		return Award{}
	}
	before := e.begin()
	next, award := AwardCurrency(e.state, e.catalog, e.balance, e.rng, income, false)
	e.state = next
	e.recordLevels(award, "tick")
	e.finish(ctx, before)
	return award
}

// Purchase buys a single level of id.
func (e *Engine) Purchase(ctx context.Context, id string) Purchase {
	return e.buy(ctx, id, false)
}

// PurchaseMax buys every affordable level of id.
func (e *Engine) PurchaseMax(ctx context.Context, id string) Purchase {
	return e.buy(ctx, id, true)
}

func (e *Engine) buy(ctx context.Context, id string, all bool) Purchase {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.begin()
	var (
		next game.GameState
		p    Purchase
	)
	if all {
		next, p = PurchaseMax(e.state, e.catalog, e.balance, id)
	} else {
		next, p = PurchaseSingle(e.state, e.catalog, e.balance, id)
	}
	if p.Applied() {
		e.state = next
		typ := telemetry.EventPurchase
		switch {
		case p.Prestige:
			typ = telemetry.EventPrestigePurchase
		case all:
			typ = telemetry.EventPurchaseMax
		}
		e.record(typ, telemetry.EventMetadata{"upgrade_id": p.UpgradeID, "levels": p.Levels, "cost": p.Cost})
	}
	e.finish(ctx, before)
	return p
}

// AscendResult reports a prestige reset.
type AscendResult struct {
	Applied bool    `json:"applied"`
	Points  float64 `json:"points"`
}

// Ascend banks claimable prestige points and resets the run.
func (e *Engine) Ascend(ctx context.Context) AscendResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.begin()
	claim := Derive(e.state, e.catalog, e.balance).ClaimablePoints
	next, ok := prestige.Ascend(e.state, claim)
	if !ok {
		e.finish(ctx, before)
		return AscendResult{}
	}
	e.state = next
	e.record(telemetry.EventAscend, telemetry.EventMetadata{"points": claim, "total_points": next.PrestigePoints})
	logx.Info(e.logger, "ascend", map[string]any{"points": claim, "total_points": next.PrestigePoints})
	e.finish(ctx, before)
	return AscendResult{Applied: true, Points: claim}
}

// Exec runs one console line against the state.
func (e *Engine) Exec(ctx context.Context, line string) console.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.begin()
	next, res := console.Execute(e.state, e.catalog, line)
	if res.Mutated {
		e.state = next
		if res.Reset {
			e.claimed = make(map[string]bool)
			before = e.begin()
		}
	}
	if cmd, ok := console.Parse(line); ok {
		e.record(telemetry.EventConsoleCommand, telemetry.EventMetadata{"verb": string(cmd.Verb), "mutated": res.Mutated})
	}
	e.finish(ctx, before)
	return res
}

// RolloverQuests replaces the daily set when it is due and reports whether it
// did.
func (e *Engine) RolloverQuests(ctx context.Context, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	rolled := e.rollover(now)
	if rolled {
		e.finish(ctx, e.state.DailyQuests)
	}
	return rolled
}

// begin runs the rollover check and returns the quest set the transition
// starts from, for completion tracking.
func (e *Engine) begin() []quest.Quest {
	e.rollover(e.clock.Now())
	return e.state.DailyQuests
}

func (e *Engine) rollover(now time.Time) bool {
	if !quest.NeedsRollover(now, e.state.LastDailyReset, e.state.DailyQuests, e.period) {
		return false
	}
	bonus := BonusesFor(e.state, e.catalog, e.balance).QuestReward
	next := e.state.Clone()
	next.DailyQuests = quest.Generate(next.Level, bonus, e.goals)
	next.LastDailyReset = now
	e.state = next
	e.claimed = make(map[string]bool)
	e.version++

	e.record(telemetry.EventDailyRollover, telemetry.EventMetadata{"level": next.Level, "reset_at": now.UTC().Format(time.RFC3339)})
	logx.Info(e.logger, "daily_rollover", map[string]any{"level": next.Level, "reset_at": now.UTC().Format(time.RFC3339)})
	return true
}

// finish pays rewards, reports newly completed quests and bumps the version.
func (e *Engine) finish(ctx context.Context, before []quest.Quest) {
	e.grantRewards(ctx)

	was := make(map[string]bool, len(before))
	for _, q := range before {
		was[q.ID] = q.Completed
	}
	for _, q := range e.state.DailyQuests {
		if q.Completed && !was[q.ID] {
			e.record(telemetry.EventQuestCompleted, telemetry.EventMetadata{"quest_id": q.ID, "kind": string(q.Kind)})
		}
	}
	e.version++
}

// grantRewards pays each completed quest once per daily epoch. The rewarded
// state is handed to the ledger with the key and adopted only once the claim
// is stored. A reward can level the player and complete the level quest, so
// it loops until nothing new is paid. Ledger failures leave the key unmarked
// for the next attempt.
func (e *Engine) grantRewards(ctx context.Context) {
	for {
		paid := false
		for _, q := range e.state.DailyQuests {
			if !q.Completed {
				continue
			}
			key := quest.ClaimKey(q.ID, e.state.LastDailyReset)
			if e.claimed[key] {
				continue
			}
			next, award := AwardCurrency(e.state, e.catalog, e.balance, e.rng, q.Reward, false)
			first, err := e.ledger.Claim(ctx, key, next)
			if err != nil {
				logx.Error(e.logger, "quest_claim_failed", err, map[string]any{"quest_id": q.ID, "key": key})
				continue
			}
			e.claimed[key] = true
			if !first {
				continue
			}
			e.state = next
			paid = true
			e.record(telemetry.EventQuestReward, telemetry.EventMetadata{"quest_id": q.ID, "reward": q.Reward})
			e.recordLevels(award, "quest_reward")
		}
		if !paid {
			return
		}
	}
}

func (e *Engine) recordLevels(a Award, source string) {
	if a.LevelsGained > 0 {
		e.record(telemetry.EventLevelUp, telemetry.EventMetadata{"levels": a.LevelsGained, "level": e.state.Level, "source": source})
	}
}

func (e *Engine) record(typ telemetry.EventType, meta telemetry.EventMetadata) {
	if e.telemetry == nil {
		return
	}
	if err := e.telemetry.RecordEvent(typ, meta); err != nil {
		logx.Error(e.logger, "telemetry_record_failed", err, map[string]any{"type": string(typ)})
	}
}

// UpgradeView is one catalog entry with its live price.
type UpgradeView struct {
	catalog.Upgrade
	Count      int        `json:"count"`
	NextCost   float64    `json:"nextCost"`
	Affordable bool       `json:"affordable"`
	Maxed      bool       `json:"maxed"`
	Max        cost.Quote `json:"max"`
}

// QuestView is a quest with its progress and claim status.
type QuestView struct {
	quest.Quest
	Progress float64 `json:"progress"`
	Claimed  bool    `json:"claimed"`
}

// Readout is everything a client needs to draw the game.
type Readout struct {
	State            game.GameState `json:"state"`
	Stats            Stats          `json:"stats"`
	Upgrades         []UpgradeView  `json:"upgrades"`
	PrestigeUpgrades []UpgradeView  `json:"prestigeUpgrades"`
	Quests           []QuestView    `json:"quests"`
	QuestsResetAt    time.Time      `json:"questsResetAt"`
	Version          uint64         `json:"version"`
}

func (e *Engine) Readout() Readout {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state.Clone()
	stats := Derive(s, e.catalog, e.balance)
	out := Readout{
		State:            s,
		Stats:            stats,
		Upgrades:         e.views(s, stats.Bonuses, e.catalog.Standard),
		PrestigeUpgrades: e.views(s, stats.Bonuses, e.catalog.Prestige),
		Quests:           make([]QuestView, 0, len(s.DailyQuests)),
		QuestsResetAt:    s.LastDailyReset.Add(e.period),
		Version:          e.version,
	}
	for _, q := range s.DailyQuests {
		out.Quests = append(out.Quests, QuestView{
			Quest:    q,
			Progress: q.Progress(),
			Claimed:  e.claimed[quest.ClaimKey(q.ID, s.LastDailyReset)],
		})
	}
	return out
}

func (e *Engine) views(s game.GameState, b Bonuses, list []catalog.Upgrade) []UpgradeView {
	out := make([]UpgradeView, 0, len(list))
	for _, u := range list {
		count := s.Count(u)
		v := UpgradeView{
			Upgrade:  u,
			Count:    count,
			NextCost: NextCost(s, u, b, e.balance),
			Maxed:    count >= u.MaxLevel,
			Max:      MaxQuote(s, u, b, e.balance),
		}
		v.Affordable = !v.Maxed && v.NextCost <= Budget(s, u)
		out = append(out, v)
	}
	return out
}

package progression

import (
	"math"

	"zenith/internal/catalog"
	"zenith/internal/config"
	"zenith/internal/cost"
	"zenith/internal/game"
	"zenith/internal/quest"
)

// Award describes what AwardCurrency did.
type Award struct {
	Amount       float64 `json:"amount"`
	XPGained     float64 `json:"xpGained"`
	Doubled      bool    `json:"doubled"`
	LevelsGained int     `json:"levelsGained"`
}

// AwardCurrency credits amount and converts a share of it into XP, leveling
// up as many times as the XP covers. Manual awards count as a click. Negative
// and non-finite amounts are refused and leave s unchanged.
func AwardCurrency(s game.GameState, cat catalog.Catalog, bal config.Balance, rng game.Rand, amount float64, manual bool) (game.GameState, Award) {
	if !(amount >= 0) || math.IsInf(amount, 0) {
		return s, Award{}
	}
	b := BonusesFor(s, cat, bal)
	out := s.Clone()

	out.Currency = capped(out.Currency + amount)
	out.TotalCurrencyEarned = capped(out.TotalCurrencyEarned + amount)

	rate := bal.PassiveXPRate
	if manual {
		rate = bal.ManualXPRate
	}
	gained := amount * rate * b.XP
	doubled := false
	if b.DoubleXPChance > 0 && rng != nil && rng.Float64() < b.DoubleXPChance {
		gained *= 2
		doubled = true
	}
	out.XP = capped(out.XP + gained)

	levels := levelUp(&out, bal)

	if manual {
		out.TotalClicks++
		out.DailyQuests = quest.UpdateProgress(out.DailyQuests, quest.KindClicks, 1, false)
	}
	out.DailyQuests = quest.UpdateProgress(out.DailyQuests, quest.KindLevel, float64(out.Level), true)

	return out, Award{
		Amount:       amount,
		XPGained:     gained,
		Doubled:      doubled,
		LevelsGained: levels,
	}
}

// levelUp spends XP on levels until the next requirement is out of reach and
// returns how many levels were gained.
func levelUp(s *game.GameState, bal config.Balance) int {
	start := s.Level
	for {
		req := XPRequirement(s.Level, bal)
		if !(s.XP >= req) || math.IsInf(req, 1) {
			break
		}
		s.XP -= req
		s.Level++
	}
	return s.Level - start
}

func capped(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}

// Refusal says why a purchase did nothing.
type Refusal string

const (
	RefusedUnknown  Refusal = "unknown_upgrade"
	RefusedMaxLevel Refusal = "max_level"
	RefusedFunds    Refusal = "insufficient_funds"
)

// Purchase describes a bought batch of levels, or the reason none were bought.
type Purchase struct {
	UpgradeID string  `json:"upgradeId"`
	Prestige  bool    `json:"prestige"`
	Levels    int     `json:"levels"`
	Cost      float64 `json:"cost"`
	Refused   Refusal `json:"refused,omitempty"`
}

func (p Purchase) Applied() bool { return p.Refused == "" && p.Levels > 0 }

// PurchaseSingle buys one level of id.
func PurchaseSingle(s game.GameState, cat catalog.Catalog, bal config.Balance, id string) (game.GameState, Purchase) {
	return purchase(s, cat, bal, id, func(budget, base, growth float64, count, remaining int) cost.Quote {
		c := cost.UnitCost(base, growth, count)
		if c > budget {
			return cost.Quote{}
		}
		return cost.Quote{Count: 1, Cost: c}
	})
}

// PurchaseMax buys as many levels of id as the budget allows.
func PurchaseMax(s game.GameState, cat catalog.Catalog, bal config.Balance, id string) (game.GameState, Purchase) {
	return purchase(s, cat, bal, id, cost.Max)
}

type quoteFunc func(budget, baseCost, growth float64, count, remaining int) cost.Quote

// purchase spends currency on standard upgrades and prestige points on
// prestige upgrades. Only standard purchases count toward
// totalUpgradesBought and the upgrades quest.
func purchase(s game.GameState, cat catalog.Catalog, bal config.Balance, id string, quote quoteFunc) (game.GameState, Purchase) {
	u, ok := cat.Get(id)
	if !ok {
		return s, Purchase{UpgradeID: id, Refused: RefusedUnknown}
	}
	p := Purchase{UpgradeID: id, Prestige: u.IsPrestige()}

	count := s.Count(u)
	remaining := u.MaxLevel - count
	if remaining <= 0 {
		p.Refused = RefusedMaxLevel
		return s, p
	}

	base, growth := UpgradePrice(u, BonusesFor(s, cat, bal), bal)
	q := quote(Budget(s, u), base, growth, count, remaining)
	if q.Count <= 0 || q.Cost > Budget(s, u) {
		p.Refused = RefusedFunds
		return s, p
	}

	out := s.Clone()
	if u.IsPrestige() {
		out.PrestigePoints -= q.Cost
		out.PrestigeUpgrades[u.ID] = count + q.Count
	} else {
		out.Currency -= q.Cost
		out.Upgrades[u.ID] = count + q.Count
		out.TotalUpgradesBought += q.Count
		out.DailyQuests = quest.UpdateProgress(out.DailyQuests, quest.KindUpgrades, float64(q.Count), false)
	}
	p.Levels = q.Count
	p.Cost = q.Cost
	return out, p
}

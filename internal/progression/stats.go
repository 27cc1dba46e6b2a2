// Package progression owns the economy: derived stats, currency awards,
// upgrade purchases and the serialized Engine that applies them.
package progression

import (
	"math"

	"zenith/internal/catalog"
	"zenith/internal/config"
	"zenith/internal/cost"
	"zenith/internal/game"
	"zenith/internal/prestige"
)

// Floors that keep reduction bonuses from zeroing out prices or the
// threshold, whatever a custom catalog says.
const (
	minCostGrowth = 1.01
	minReduction  = 0.01
)

// Bonuses are the derived effects of owned prestige upgrades.
type Bonuses struct {
	XP                 float64 `json:"xp"`
	CostGrowth         float64 `json:"costGrowth"`
	AutoYield          float64 `json:"autoYield"`
	ClickYield         float64 `json:"clickYield"`
	PrestigeEfficiency float64 `json:"prestigeEfficiency"`
	BaseCostReduction  float64 `json:"baseCostReduction"`
	QuestReward        float64 `json:"questReward"`
	DoubleXPChance     float64 `json:"doubleXpChance"`
	ThresholdReduction float64 `json:"thresholdReduction"`
	GlobalYield        float64 `json:"globalYield"`
}

// BonusesFor sums level*baseValue per effect over the prestige catalog and
// shapes each total as a multiplier, a reduction or a chance.
func BonusesFor(s game.GameState, cat catalog.Catalog, bal config.Balance) Bonuses {
	sum := map[catalog.Effect]float64{}
	for _, u := range cat.Prestige {
		if lvl := s.PrestigeUpgrades[u.ID]; lvl > 0 {
			sum[u.Effect] += float64(lvl) * u.BaseValue
		}
	}
	return Bonuses{
		XP:                 1 + sum[catalog.EffectXPGain],
		CostGrowth:         math.Max(minCostGrowth, bal.CostGrowth-sum[catalog.EffectCostGrowth]),
		AutoYield:          1 + sum[catalog.EffectAutoYield],
		ClickYield:         1 + sum[catalog.EffectClickYield],
		PrestigeEfficiency: bal.PrestigeMultiplierBase + sum[catalog.EffectPrestigeEfficiency],
		BaseCostReduction:  math.Max(minReduction, 1-sum[catalog.EffectBaseCost]),
		QuestReward:        1 + sum[catalog.EffectQuestReward],
		DoubleXPChance:     math.Min(1, sum[catalog.EffectDoubleXP]),
		ThresholdReduction: math.Max(minReduction, 1-sum[catalog.EffectPrestigeThreshold]),
		GlobalYield:        1 + sum[catalog.EffectGlobalYield],
	}
}

// Stats is the derived readout. It is never stored; Derive recomputes it.
type Stats struct {
	ClickPower         float64 `json:"clickPower"`
	AutoIncome         float64 `json:"autoIncome"`
	XPRequirement      float64 `json:"xpRequirement"`
	PrestigeMultiplier float64 `json:"prestigeMultiplier"`
	PrestigeThreshold  float64 `json:"prestigeThreshold"`
	ClaimablePoints    float64 `json:"claimablePoints"`
	Bonuses            Bonuses `json:"bonuses"`
}

// Derive computes click power, passive income, the XP requirement and the
// prestige figures for s.
func Derive(s game.GameState, cat catalog.Catalog, bal config.Balance) Stats {
	b := BonusesFor(s, cat, bal)
	mult := 1 + s.PrestigePoints*b.PrestigeEfficiency

	click, auto := 1.0, 0.0
	for _, u := range cat.Standard {
		n := float64(s.Upgrades[u.ID])
		switch u.Kind {
		case catalog.KindClick:
			click += n * u.BaseValue
		case catalog.KindAuto:
			auto += n * u.BaseValue
		}
	}

	threshold := prestige.Threshold(bal.PrestigeThresholdBase, b.ThresholdReduction)
	return Stats{
		ClickPower:         click * mult * b.ClickYield * b.GlobalYield,
		AutoIncome:         auto * mult * b.AutoYield * b.GlobalYield,
		XPRequirement:      XPRequirement(s.Level, bal),
		PrestigeMultiplier: mult,
		PrestigeThreshold:  threshold,
		ClaimablePoints:    prestige.ClaimablePoints(s.Currency, threshold),
		Bonuses:            b,
	}
}

// XPRequirement is the XP needed to leave level.
func XPRequirement(level int, bal config.Balance) float64 {
	return math.Floor(bal.XPBase * math.Pow(bal.XPGrowth, float64(level-1)))
}

// UpgradePrice returns the effective base cost and growth used to price u.
// Standard upgrades feel the base-cost and growth reductions; prestige
// upgrades grow at the fixed prestige rate.
func UpgradePrice(u catalog.Upgrade, b Bonuses, bal config.Balance) (baseCost, growth float64) {
	if u.IsPrestige() {
		return u.BaseCost, bal.PrestigeCostGrowth
	}
	return u.BaseCost * b.BaseCostReduction, b.CostGrowth
}

// Budget is what a purchase of u spends from.
func Budget(s game.GameState, u catalog.Upgrade) float64 {
	if u.IsPrestige() {
		return s.PrestigePoints
	}
	return s.Currency
}

// NextCost is the price of the next single level of u.
func NextCost(s game.GameState, u catalog.Upgrade, b Bonuses, bal config.Balance) float64 {
	base, growth := UpgradePrice(u, b, bal)
	return cost.UnitCost(base, growth, s.Count(u))
}

// MaxQuote prices the largest affordable bulk purchase of u.
func MaxQuote(s game.GameState, u catalog.Upgrade, b Bonuses, bal config.Balance) cost.Quote {
	base, growth := UpgradePrice(u, b, bal)
	count := s.Count(u)
	return cost.Max(Budget(s, u), base, growth, count, u.MaxLevel-count)
}

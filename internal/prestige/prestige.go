// Package prestige converts accumulated currency into prestige points and
// performs the Ascend reset.
package prestige

import (
	"math"

	"zenith/internal/game"
)

// DefaultThresholdBase is the currency needed for one point before reductions.
const DefaultThresholdBase = 1_000_000

// Threshold applies the threshold reduction bonus to base.
func Threshold(base, reduction float64) float64 {
	return base * reduction
}

// ClaimablePoints is how many whole points currency buys at threshold.
func ClaimablePoints(currency, threshold float64) float64 {
	if !(threshold > 0) || math.IsInf(threshold, 0) {
		return 0
	}
	p := math.Floor(currency / threshold)
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}

// Ascend resets the run and banks claimable points. It refuses when nothing
// is claimable. Prestige upgrades, points and the daily quest set survive.
func Ascend(s game.GameState, claimable float64) (game.GameState, bool) {
	if !(claimable > 0) {
		return s, false
	}
	out := s.Clone()
	out.PrestigePoints = game.NonNegative(out.PrestigePoints + claimable)

	fresh := game.InitialState()
	out.Currency = fresh.Currency
	out.TotalCurrencyEarned = fresh.TotalCurrencyEarned
	out.XP = fresh.XP
	out.Level = fresh.Level
	out.Upgrades = fresh.Upgrades
	out.TotalClicks = fresh.TotalClicks
	out.TotalUpgradesBought = fresh.TotalUpgradesBought
	return out, true
}

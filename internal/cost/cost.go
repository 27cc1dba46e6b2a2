// Package cost prices leveled upgrades on a geometric curve.
//
// The price of the level at index count is baseCost*growth^count. Bulk
// purchases are priced with the closed-form geometric series and floored
// once on the total, so a bulk price can differ from the sum of floored unit
// prices by rounding.
package cost

import "math"

// UnitCost is the price of the level at index count (0-indexed).
func UnitCost(baseCost, growth float64, count int) float64 {
	return math.Floor(baseCost * math.Pow(growth, float64(count)))
}

// BulkCost is the price of n consecutive levels starting at count.
// growth must be greater than 1.
func BulkCost(baseCost, growth float64, count, n int) float64 {
	if n <= 0 {
		return 0
	}
	first := baseCost * math.Pow(growth, float64(count))
	return math.Floor(first * (math.Pow(growth, float64(n)) - 1) / (growth - 1))
}

// MaxAffordable returns the largest n in [0, remaining] whose BulkCost fits
// in budget. Degenerate inputs (NaN, infinities, non-positive log argument)
// yield 0.
func MaxAffordable(budget, baseCost, growth float64, count, remaining int) int {
	if remaining <= 0 || !(budget > 0) || math.IsInf(budget, 1) || growth <= 1 || baseCost <= 0 {
		return 0
	}
	first := baseCost * math.Pow(growth, float64(count))
	raw := math.Floor(math.Log(budget*(growth-1)/first+1) / math.Log(growth))
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		raw = 0
	}

	n := remaining
	if raw < float64(remaining) {
		n = int(raw)
	}

	// floating point can land one off in either direction
	for n > 0 && BulkCost(baseCost, growth, count, n) > budget {
		n--
	}
	for n < remaining && BulkCost(baseCost, growth, count, n+1) <= budget {
		n++
	}
	return n
}

// Quote is a priced purchase of Count levels.
type Quote struct {
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

// Max quotes the largest affordable bulk purchase.
func Max(budget, baseCost, growth float64, count, remaining int) Quote {
	n := MaxAffordable(budget, baseCost, growth, count, remaining)
	return Quote{Count: n, Cost: BulkCost(baseCost, growth, count, n)}
}

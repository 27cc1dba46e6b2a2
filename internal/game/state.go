package game

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"zenith/internal/catalog"
	"zenith/internal/quest"
)

// GameState is the whole save. JSON keys match the saved snapshot format.
type GameState struct {
	Currency            float64        `json:"currency"`
	TotalCurrencyEarned float64        `json:"totalCurrencyEarned"`
	TotalClicks         int            `json:"totalClicks"`
	TotalUpgradesBought int            `json:"totalUpgradesBought"`
	XP                  float64        `json:"xp"`
	Level               int            `json:"level"`
	Upgrades            map[string]int `json:"upgrades"`
	PrestigeUpgrades    map[string]int `json:"prestigeUpgrades"`
	PrestigePoints      float64        `json:"prestigePoints"`
	LastDailyReset      time.Time      `json:"lastDailyReset"`
	DailyQuests         []quest.Quest  `json:"dailyQuests"`
}

// InitialState is a fresh save.
func InitialState() GameState {
	return GameState{
		Level:            1,
		Upgrades:         map[string]int{},
		PrestigeUpgrades: map[string]int{},
		DailyQuests:      []quest.Quest{},
	}
}

// Clone returns a deep copy; transitions mutate the clone, never the input.
func (s GameState) Clone() GameState {
	out := s
	out.Upgrades = make(map[string]int, len(s.Upgrades))
	for k, v := range s.Upgrades {
		out.Upgrades[k] = v
	}
	out.PrestigeUpgrades = make(map[string]int, len(s.PrestigeUpgrades))
	for k, v := range s.PrestigeUpgrades {
		out.PrestigeUpgrades[k] = v
	}
	out.DailyQuests = append([]quest.Quest{}, s.DailyQuests...)
	return out
}

// Count returns the owned level of an upgrade from the map its kind uses.
func (s GameState) Count(u catalog.Upgrade) int {
	if u.IsPrestige() {
		return s.PrestigeUpgrades[u.ID]
	}
	return s.Upgrades[u.ID]
}

// Merge decodes a saved snapshot over InitialState. Fields missing from data
// keep their defaults so older saves load into newer layouts.
func Merge(data []byte) (GameState, error) {
	s := InitialState()
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return InitialState(), fmt.Errorf("decode state: %w", err)
	}
	return Normalize(s), nil
}

// Normalize repairs values a hand-edited or partial save can carry.
func Normalize(s GameState) GameState {
	out := InitialState()
	out.Currency = NonNegative(s.Currency)
	out.TotalCurrencyEarned = NonNegative(s.TotalCurrencyEarned)
	out.XP = NonNegative(s.XP)
	out.PrestigePoints = NonNegative(s.PrestigePoints)
	out.TotalClicks = max(s.TotalClicks, 0)
	out.TotalUpgradesBought = max(s.TotalUpgradesBought, 0)
	out.Level = max(s.Level, 1)
	out.LastDailyReset = s.LastDailyReset

	for k, v := range s.Upgrades {
		if v > 0 {
			out.Upgrades[k] = v
		}
	}
	for k, v := range s.PrestigeUpgrades {
		if v > 0 {
			out.PrestigeUpgrades[k] = v
		}
	}
	out.DailyQuests = append(out.DailyQuests, s.DailyQuests...)
	return out
}

// ClampCounts caps every known upgrade at its max level. Unknown ids are kept
// so a catalog rollback does not lose progress.
func ClampCounts(s GameState, cat catalog.Catalog) GameState {
	out := s.Clone()
	for _, u := range cat.Standard {
		if out.Upgrades[u.ID] > u.MaxLevel {
			out.Upgrades[u.ID] = u.MaxLevel
		}
	}
	for _, u := range cat.Prestige {
		if out.PrestigeUpgrades[u.ID] > u.MaxLevel {
			out.PrestigeUpgrades[u.ID] = u.MaxLevel
		}
	}
	return out
}

// NonNegative maps NaN and negatives to 0 and +Inf to MaxFloat64.
func NonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}

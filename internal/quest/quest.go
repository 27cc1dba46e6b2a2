package quest

import (
	"fmt"
	"time"
)

// Kind categorizes what a quest counts
type Kind string

const (
	KindClicks   Kind = "clicks"
	KindUpgrades Kind = "upgrades"
	KindLevel    Kind = "level"
)

const (
	IDClicks   = "q_clicks"
	IDUpgrades = "q_upgrades"
	IDLevel    = "q_level"
)

// DefaultPeriod is how long a daily set stays active.
const DefaultPeriod = 24 * time.Hour

// Quest is one daily objective. Completed is a one-way latch.
type Quest struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"type"`
	Description string  `json:"description"`
	Goal        float64 `json:"goal"`
	Current     float64 `json:"current"`
	Reward      float64 `json:"reward"`
	Completed   bool    `json:"completed"`
}

// Progress is current/goal clamped to [0, 1].
func (q Quest) Progress() float64 {
	if q.Completed {
		return 1
	}
	if q.Goal <= 0 {
		return 0
	}
	p := q.Current / q.Goal
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Goals tunes the generated triad.
type Goals struct {
	Clicks        float64 `yaml:"clicks" json:"clicks"`
	Upgrades      float64 `yaml:"upgrades" json:"upgrades"`
	LevelSpan     int     `yaml:"level_span" json:"levelSpan"`
	ClickReward   float64 `yaml:"click_reward" json:"clickReward"`
	UpgradeReward float64 `yaml:"upgrade_reward" json:"upgradeReward"`
	LevelReward   float64 `yaml:"level_reward" json:"levelReward"`
}

func DefaultGoals() Goals {
	return Goals{
		Clicks:        500,
		Upgrades:      10,
		LevelSpan:     2,
		ClickReward:   5000,
		UpgradeReward: 10000,
		LevelReward:   25000,
	}
}

// Generate builds a fresh daily set for a player at level. Rewards scale with
// level and bonus; the level quest starts at the current level.
func Generate(level int, bonus float64, g Goals) []Quest {
	if level < 1 {
		level = 1
	}
	scale := float64(level) * bonus
	return []Quest{
		{
			ID:          IDClicks,
			Kind:        KindClicks,
			Description: fmt.Sprintf("Sync Nexus %g times", g.Clicks),
			Goal:        g.Clicks,
			Reward:      g.ClickReward * scale,
		},
		{
			ID:          IDUpgrades,
			Kind:        KindUpgrades,
			Description: fmt.Sprintf("Install %g Augmentations", g.Upgrades),
			Goal:        g.Upgrades,
			Reward:      g.UpgradeReward * scale,
		},
		{
			ID:          IDLevel,
			Kind:        KindLevel,
			Description: fmt.Sprintf("Ascend %d Levels", g.LevelSpan),
			Goal:        float64(level + g.LevelSpan),
			Current:     float64(level),
			Reward:      g.LevelReward * scale,
		},
	}
}

// NeedsRollover reports whether a new daily set is due: the period has fully
// elapsed since lastReset, or there is no active set at all.
func NeedsRollover(now, lastReset time.Time, quests []Quest, period time.Duration) bool {
	if len(quests) == 0 {
		return true
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return now.Sub(lastReset) > period
}

// UpdateProgress advances every open quest of kind and returns the new slice.
// With absolute set, current is replaced instead of incremented. Completed
// quests are left untouched, so a later absolute update below the goal cannot
// reopen them.
func UpdateProgress(quests []Quest, kind Kind, amount float64, absolute bool) []Quest {
	out := make([]Quest, len(quests))
	copy(out, quests)
	for i := range out {
		q := &out[i]
		if q.Kind != kind || q.Completed {
			continue
		}
		if absolute {
			q.Current = amount
		} else {
			q.Current += amount
		}
		if q.Current >= q.Goal {
			q.Completed = true
		}
	}
	return out
}

// Find returns the quest with id.
func Find(quests []Quest, id string) (Quest, bool) {
	for _, q := range quests {
		if q.ID == id {
			return q, true
		}
	}
	return Quest{}, false
}

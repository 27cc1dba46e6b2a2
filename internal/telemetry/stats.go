package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period              string            `json:"period"`
	EventCounts         map[EventType]int `json:"event_counts"`
	Clicks              int               `json:"clicks"`
	LevelsBought        int               `json:"levels_bought"`
	CurrencySpent       float64           `json:"currency_spent"`
	PrestigePointsSpent float64           `json:"prestige_points_spent"`
	Ascensions          int               `json:"ascensions"`
	PointsClaimed       float64           `json:"points_claimed"`
	LevelsGained        int               `json:"levels_gained"`
	QuestsCompleted     int               `json:"quests_completed"`
	QuestRewards        float64           `json:"quest_rewards"`
	Rollovers           int               `json:"rollovers"`
	ConsoleCommands     int               `json:"console_commands"`
	LevelsByUpgrade     map[string]int    `json:"levels_by_upgrade"`
	ClicksPerAscension  float64           `json:"clicks_per_ascension"`
}

// CalculateStats computes balance stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:          since.Format("2006-01-02"),
		EventCounts:     make(map[EventType]int),
		LevelsByUpgrade: make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		// Parse metadata for specific stats
		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventClick:
			stats.Clicks++
		case EventPurchase, EventPurchaseMax:
			levels := intField(metadata, "levels")
			stats.LevelsBought += levels
			stats.CurrencySpent += floatField(metadata, "cost")
			if id, ok := metadata["upgrade_id"].(string); ok {
				stats.LevelsByUpgrade[id] += levels
			}
		case EventPrestigePurchase:
			stats.PrestigePointsSpent += floatField(metadata, "cost")
			if id, ok := metadata["upgrade_id"].(string); ok {
				stats.LevelsByUpgrade[id] += intField(metadata, "levels")
			}
		case EventAscend:
			stats.Ascensions++
			stats.PointsClaimed += floatField(metadata, "points")
		case EventLevelUp:
			stats.LevelsGained += intField(metadata, "levels")
		case EventQuestCompleted:
			stats.QuestsCompleted++
		case EventQuestReward:
			stats.QuestRewards += floatField(metadata, "reward")
		case EventDailyRollover:
			stats.Rollovers++
		case EventConsoleCommand:
			stats.ConsoleCommands++
		}
	}

	if stats.Ascensions > 0 {
		stats.ClicksPerAscension = float64(stats.Clicks) / float64(stats.Ascensions)
	}

	return stats, nil
}

func floatField(m EventMetadata, key string) float64 {
	v, _ := m[key].(float64)
	return v
}

func intField(m EventMetadata, key string) int {
	return int(floatField(m, key))
}

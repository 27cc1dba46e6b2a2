package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_RecordAndFilter(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository().WithClock(func() time.Time { return now })

	require.NoError(t, repo.RecordEvent(EventClick, EventMetadata{"amount": 1}))
	now = now.Add(time.Hour)
	require.NoError(t, repo.RecordEvent(EventPurchase, EventMetadata{"upgrade_id": "click_1", "levels": 3, "cost": 60}))

	all, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.NotEmpty(t, all[0].ID)
	assert.NotEqual(t, all[0].ID, all[1].ID)

	recent, err := repo.GetEvents(now.Add(-time.Minute), nil)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	clicks, err := repo.GetEvents(time.Time{}, []EventType{EventClick})
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, EventClick, clicks[0].Type)

	require.NoError(t, repo.Clear())
	all, _ = repo.GetEvents(time.Time{}, nil)
	assert.Empty(t, all)
}

func TestMemoryRepository_Capacity(t *testing.T) {
	repo := NewMemoryRepository().WithCapacity(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.RecordEvent(EventLevelUp, EventMetadata{"levels": i}))
	}
	all, _ := repo.GetEvents(time.Time{}, nil)
	require.Len(t, all, 3)
	assert.Contains(t, all[0].Metadata, `"levels":2`)
}

func TestCalculateStats(t *testing.T) {
	repo := NewMemoryRepository()
	_ = repo.RecordEvent(EventClick, EventMetadata{})
	_ = repo.RecordEvent(EventClick, EventMetadata{})
	_ = repo.RecordEvent(EventPurchase, EventMetadata{"upgrade_id": "click_1", "levels": 1, "cost": 15})
	_ = repo.RecordEvent(EventPurchaseMax, EventMetadata{"upgrade_id": "click_1", "levels": 17, "cost": 976})
	_ = repo.RecordEvent(EventPrestigePurchase, EventMetadata{"upgrade_id": "pres_1", "levels": 1, "cost": 1})
	_ = repo.RecordEvent(EventLevelUp, EventMetadata{"levels": 3})
	_ = repo.RecordEvent(EventQuestCompleted, EventMetadata{"quest_id": "q_clicks"})
	_ = repo.RecordEvent(EventQuestReward, EventMetadata{"reward": 5000})
	_ = repo.RecordEvent(EventAscend, EventMetadata{"points": 2})
	_ = repo.RecordEvent(EventDailyRollover, EventMetadata{})
	_ = repo.RecordEvent(EventConsoleCommand, EventMetadata{"verb": "-help"})

	events, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)

	stats, err := CalculateStats(events, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2026-01-01", stats.Period)
	assert.Equal(t, 2, stats.Clicks)
	assert.Equal(t, 18, stats.LevelsBought)
	assert.Equal(t, 991.0, stats.CurrencySpent)
	assert.Equal(t, 1.0, stats.PrestigePointsSpent)
	assert.Equal(t, 18, stats.LevelsByUpgrade["click_1"])
	assert.Equal(t, 1, stats.LevelsByUpgrade["pres_1"])
	assert.Equal(t, 3, stats.LevelsGained)
	assert.Equal(t, 1, stats.QuestsCompleted)
	assert.Equal(t, 5000.0, stats.QuestRewards)
	assert.Equal(t, 1, stats.Ascensions)
	assert.Equal(t, 2.0, stats.PointsClaimed)
	assert.Equal(t, 1, stats.Rollovers)
	assert.Equal(t, 1, stats.ConsoleCommands)
	assert.Equal(t, 2.0, stats.ClicksPerAscension)
	assert.Equal(t, 2, stats.EventCounts[EventClick])
}

package telemetry

import "time"

type EventType string

const (
	EventClick            EventType = "click"
	EventPurchase         EventType = "purchase"
	EventPurchaseMax      EventType = "purchase_max"
	EventPrestigePurchase EventType = "prestige_purchase"
	EventAscend           EventType = "ascend"
	EventLevelUp          EventType = "level_up"
	EventQuestCompleted   EventType = "quest_completed"
	EventQuestReward      EventType = "quest_reward"
	EventDailyRollover    EventType = "daily_rollover"
	EventConsoleCommand   EventType = "console_command"
)

type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}

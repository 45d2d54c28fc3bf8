package domain

import "time"

// TurnEventType names a step in a chat turn's lifecycle.
type TurnEventType string

const (
	TurnStarted   TurnEventType = "turn_started"
	TurnCompleted TurnEventType = "turn_completed"
	TurnFailed    TurnEventType = "turn_failed"
)

// Valid reports whether t is a known event type.
func (t TurnEventType) Valid() bool {
	switch t {
	case TurnStarted, TurnCompleted, TurnFailed:
		return true
	default:
		return false
	}
}

// TurnEvent announces a change in a chat turn's lifecycle on the tenant's
// activity feed.
type TurnEvent struct {
	Type      TurnEventType `json:"type"`
	TenantID  string        `json:"tenantId"`
	ChatID    string        `json:"chatId"`
	Chunks    int           `json:"chunks,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

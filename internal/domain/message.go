package domain

import (
	"context"
	"time"
)

// Sender identifies who authored a history message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	switch s {
	case SenderUser, SenderAssistant:
		return true
	default:
		return false
	}
}

// Message is one entry in a tenant's chat history.
type Message struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	Sender    Sender         `json:"sender"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// HistoryRepository stores a bounded, ordered message log per tenant.
type HistoryRepository interface {
	Append(ctx context.Context, msg *Message) error
	List(ctx context.Context, tenantID string) ([]*Message, error)
}

package responder

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Engine produces a reply for one chat message.
type Engine interface {
	Name() string
	Reply(ctx context.Context, text, tenantID string, slow bool) (string, error)
}

// EchoEngine answers with the words of the message in reverse order.
type EchoEngine struct{}

func NewEchoEngine() *EchoEngine { return &EchoEngine{} }

func (*EchoEngine) Name() string { return "echo" }

func (*EchoEngine) Reply(_ context.Context, text, _ string, _ bool) (string, error) {
	words := strings.Split(text, " ")
	slices.Reverse(words)
	return "Echo: " + strings.Join(words, " "), nil
}

// slowReply is long enough for the gateway to stream it in several chunks.
var slowReply = strings.Join([]string{ //nolint:gochecknoglobals // fixed reply text
	"This is a longer slow-mode reply meant to demonstrate streaming.",
	"It contains multiple sentences so the Gateway can chunk and stream them.",
	"You can use this for testing how client shows 'typing...'",
}, " ")

// RuleEngine answers from a fixed set of keyword rules.
type RuleEngine struct {
	now func() time.Time
}

// NewRuleEngine creates a rule engine. now defaults to time.Now.
func NewRuleEngine(now func() time.Time) *RuleEngine {
	if now == nil {
		now = time.Now
	}
	return &RuleEngine{now: now}
}

func (*RuleEngine) Name() string { return "rule" }

func (e *RuleEngine) Reply(_ context.Context, text, tenantID string, slow bool) (string, error) {
	t := strings.ToLower(text)

	switch {
	case strings.Contains(t, "hello") || strings.Contains(t, "hi"):
		return "Hi! How can I help you today?", nil
	case strings.Contains(t, "time"):
		return "Current server time is " + e.now().Format(time.DateTime), nil
	case strings.Contains(t, "tenant"):
		return "You are talking under tenant: " + tenantID + ".", nil
	case slow:
		return slowReply, nil
	default:
		return "Sorry, I don't have a rule for that. Try saying 'hello' or ask for the time.", nil
	}
}

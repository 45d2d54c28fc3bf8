package responder_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/parley/internal/responder"
)

func TestEchoEngine(t *testing.T) {
	t.Parallel()

	e := responder.NewEchoEngine()
	assert.Equal(t, "echo", e.Name())

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "reverses words", text: "one two three", want: "Echo: three two one"},
		{name: "single word", text: "hello", want: "Echo: hello"},
		{name: "keeps empty words from double spaces", text: "a  b", want: "Echo: b  a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := e.Reply(context.Background(), tt.text, "t1", false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleEngine(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	e := responder.NewRuleEngine(func() time.Time { return fixed })
	assert.Equal(t, "rule", e.Name())

	tests := []struct {
		name string
		text string
		slow bool
		want string
	}{
		{name: "greeting", text: "Hello there", want: "Hi! How can I help you today?"},
		{name: "hi substring wins over time", text: "this time", want: "Hi! How can I help you today?"},
		{name: "time", text: "what TIME is it", want: "Current server time is 2026-10-19 08:30:00"},
		{name: "tenant", text: "my tenant please", want: "You are talking under tenant: t1."},
		{name: "slow paragraph", text: "tell me more", slow: true, want: "This is a longer slow-mode reply meant to demonstrate streaming. It contains multiple sentences so the Gateway can chunk and stream them. You can use this for testing how client shows 'typing...'"},
		{name: "fallback", text: "blorp", want: "Sorry, I don't have a rule for that. Try saying 'hello' or ask for the time."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := e.Reply(context.Background(), tt.text, "t1", tt.slow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

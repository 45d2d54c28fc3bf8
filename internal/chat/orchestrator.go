// Package chat drives chat turns: it records the user's message, opens a
// streaming session, and produces the reply in the background.
package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/parley/internal/domain"
	"github.com/gosuda/parley/internal/generator"
	"github.com/gosuda/parley/internal/stream"
)

// ErrorChunkText is streamed in place of a reply when generation fails.
const ErrorChunkText = "[error from responder]"

// DefaultRetention is how long a finished session stays attachable.
const DefaultRetention = 5 * time.Minute

// ErrTextRequired is returned by Submit for a turn without text.
var ErrTextRequired = fmt.Errorf("text required: %w", domain.ErrValidation) //nolint:gochecknoglobals // sentinel error

// Pacing bounds the random delay between streamed chunks.
type Pacing struct {
	Min time.Duration
	Max time.Duration
}

// DefaultPacing mimics incremental generation.
var DefaultPacing = Pacing{Min: 150 * time.Millisecond, Max: 300 * time.Millisecond} //nolint:gochecknoglobals // default value

// Next returns a delay in [Min, Max).
func (p Pacing) Next() time.Duration {
	if p.Max <= p.Min {
		return max(p.Min, 0)
	}
	return p.Min + rand.N(p.Max-p.Min) //nolint:gosec // pacing jitter, not security sensitive
}

// Config tunes the orchestrator.
type Config struct {
	Retention time.Duration
	Pacing    Pacing
}

// Request is one submitted chat turn.
type Request struct {
	TenantID string
	Text     string
	Provider string
	Slow     bool
}

// Orchestrator coordinates the chat turn lifecycle:
// user message -> session -> reply generation -> chunk stream -> history.
type Orchestrator struct {
	sessions  *stream.Registry
	history   domain.HistoryRepository
	generator generator.Generator
	pubsub    TurnPublisher // nil disables turn events

	retention time.Duration
	pacing    Pacing
	sleep     func(time.Duration)
}

func NewOrchestrator(
	sessions *stream.Registry,
	history domain.HistoryRepository,
	gen generator.Generator,
	pubsub TurnPublisher,
	cfg Config,
) *Orchestrator {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	return &Orchestrator{
		sessions:  sessions,
		history:   history,
		generator: gen,
		pubsub:    pubsub,
		retention: cfg.Retention,
		pacing:    cfg.Pacing,
		sleep:     time.Sleep,
	}
}

// Submit records the user's message, opens a session and returns its chat ID
// immediately. The reply is generated and streamed by a background goroutine
// whose outcome is only observable through the session and the history.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (string, error) {
	if req.Text == "" {
		return "", fmt.Errorf("chat.Orchestrator.Submit: %w", ErrTextRequired)
	}
	tenantID := domain.NormalizeTenantID(req.TenantID)
	req.TenantID = tenantID

	log.Info().Str("tenant_id", tenantID).Str("text", req.Text).Msg("chat: received turn")

	err := o.history.Append(ctx, &domain.Message{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Sender:    domain.SenderUser,
		Text:      req.Text,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("chat.Orchestrator.Submit: record user message: %w", err)
	}

	chatID := uuid.NewString()
	if _, err := o.sessions.Create(chatID); err != nil {
		return "", fmt.Errorf("chat.Orchestrator.Submit: %w", err)
	}

	o.publish(domain.TurnEvent{Type: domain.TurnStarted, TenantID: tenantID, ChatID: chatID, Timestamp: time.Now().UTC()})

	go o.runTurn(chatID, req)

	return chatID, nil
}

// runTurn generates the reply and streams it into the session. It runs to
// completion whether or not anyone is listening.
func (o *Orchestrator) runTurn(chatID string, req Request) {
	logger := log.With().Str("tenant_id", req.TenantID).Str("chat_id", chatID).Logger()
	ctx := context.Background()

	reply, err := o.generator.Generate(ctx, req.TenantID, req.Text, generator.Options{
		Provider: req.Provider,
		Slow:     req.Slow,
	})
	if err != nil {
		if !errors.Is(err, generator.ErrGenerator) {
			err = fmt.Errorf("%w: %w", generator.ErrGenerator, err)
		}
		logger.Error().Err(err).Msg("chat: reply generation failed")
		o.fail(chatID, req.TenantID, err)
		return
	}

	chunks := SplitForStreaming(reply.Text)
	for _, c := range chunks {
		o.sessions.Append(chatID, stream.Data(c))
		o.sleep(o.pacing.Next())
	}
	o.sessions.Append(chatID, stream.Terminal())

	err = o.history.Append(ctx, &domain.Message{
		ID:        uuid.NewString(),
		TenantID:  req.TenantID,
		Sender:    domain.SenderAssistant,
		Text:      reply.Text,
		Timestamp: time.Now().UTC(),
		Metadata:  reply.Metadata,
	})
	if err != nil {
		logger.Error().Err(err).Msg("chat: failed to record assistant message")
	}

	o.sessions.ScheduleRemoval(chatID, o.retention)
	o.publish(domain.TurnEvent{Type: domain.TurnCompleted, TenantID: req.TenantID, ChatID: chatID, Chunks: len(chunks), Timestamp: time.Now().UTC()})

	logger.Debug().Int("chunks", len(chunks)).Msg("chat: turn completed")
}

func (o *Orchestrator) fail(chatID, tenantID string, cause error) {
	o.sessions.Append(chatID, stream.Data(ErrorChunkText))
	o.sessions.Append(chatID, stream.Terminal())
	o.sessions.ScheduleRemoval(chatID, o.retention)
	o.publish(domain.TurnEvent{Type: domain.TurnFailed, TenantID: tenantID, ChatID: chatID, Error: cause.Error(), Timestamp: time.Now().UTC()})
}

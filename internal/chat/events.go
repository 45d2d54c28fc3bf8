package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/parley/internal/domain"
)

// TurnPublisher publishes turn lifecycle events to the tenant's activity feed.
type TurnPublisher interface {
	PublishTurnEvent(ctx context.Context, evt domain.TurnEvent) error
}

func (o *Orchestrator) publish(evt domain.TurnEvent) {
	if o.pubsub == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.pubsub.PublishTurnEvent(ctx, evt); err != nil {
		log.Error().Err(err).Str("tenant_id", evt.TenantID).Str("chat_id", evt.ChatID).Msg("chat.publish: failed to publish turn event")
	}
}

// Package redis carries chat turn events between gateway processes over Redis
// pub/sub, one channel per tenant.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/parley/internal/domain"
)

// eventBuffer is the number of decoded events held for a slow feed reader.
const eventBuffer = 64

// ErrForeignEvent is returned by DecodeTurnEvent for an event of another tenant.
var ErrForeignEvent = errors.New("redis: event belongs to another tenant") //nolint:gochecknoglobals // sentinel error

type PubSub struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &PubSub{client: client}, nil
}

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

// PublishTurnEvent publishes evt on the channel of evt.TenantID.
func (ps *PubSub) PublishTurnEvent(ctx context.Context, evt domain.TurnEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("redis.PubSub.PublishTurnEvent: marshal: %w", err)
	}

	if pubErr := ps.client.Publish(ctx, TenantChannel(evt.TenantID), payload).Err(); pubErr != nil {
		return fmt.Errorf("redis.PubSub.PublishTurnEvent(%s): %w", evt.ChatID, pubErr)
	}
	return nil
}

// SubscribeTurnEvents streams tenantID's turn events until ctx is done or the
// returned cleanup is called. Payloads that are not turn events of that
// tenant are skipped.
func (ps *PubSub) SubscribeTurnEvents(ctx context.Context, tenantID string) (<-chan domain.TurnEvent, func(), error) {
	channel := TenantChannel(tenantID)
	sub := ps.client.Subscribe(ctx, channel)

	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.SubscribeTurnEvents(%s): receive confirmation: %w", tenantID, err)
	}

	out := make(chan domain.TurnEvent, eventBuffer)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				evt, err := DecodeTurnEvent(tenantID, []byte(msg.Payload))
				if err != nil {
					log.Warn().Err(err).Str("channel", channel).Msg("redis: skipping payload")
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}

// DecodeTurnEvent parses a payload received on tenantID's channel.
func DecodeTurnEvent(tenantID string, payload []byte) (domain.TurnEvent, error) {
	var evt domain.TurnEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return domain.TurnEvent{}, fmt.Errorf("redis.DecodeTurnEvent: %w", err)
	}
	if !evt.Type.Valid() || evt.ChatID == "" {
		return domain.TurnEvent{}, fmt.Errorf("redis.DecodeTurnEvent: type %q chat %q: %w", evt.Type, evt.ChatID, domain.ErrValidation)
	}
	if evt.TenantID != tenantID {
		return domain.TurnEvent{}, fmt.Errorf("redis.DecodeTurnEvent(%s): %w", evt.TenantID, ErrForeignEvent)
	}
	return evt, nil
}

// TenantChannel returns the Redis channel carrying a tenant's turn events.
func TenantChannel(tenantID string) string {
	return "tenant:" + tenantID
}

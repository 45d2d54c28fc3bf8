// Package ws serves WebSocket transports: chunk streaming for one chat and a
// tenant's turn activity feed backed by Redis pub/sub.
package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/parley/internal/domain"
	"github.com/gosuda/parley/internal/server/middleware"
	"github.com/gosuda/parley/internal/stream"
)

// Subscriber streams a tenant's turn events.
type Subscriber interface {
	SubscribeTurnEvents(ctx context.Context, tenantID string) (<-chan domain.TurnEvent, func(), error)
}

// Hub manages WebSocket connections.
type Hub struct {
	sessions       *stream.Registry
	events         Subscriber // nil when Redis is not configured
	listenerBuffer int
	originPatterns []string
}

// NewHub creates a new WebSocket hub. events may be nil, in which case the
// activity feed answers 501.
func NewHub(sessions *stream.Registry, events Subscriber, listenerBuffer int, originPatterns []string) *Hub {
	return &Hub{
		sessions:       sessions,
		events:         events,
		listenerBuffer: listenerBuffer,
		originPatterns: originPatterns,
	}
}

func (h *Hub) accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns}) //nolint:wrapcheck // logged by caller
}

// ServeStream attaches a WebSocket client to a chat session. Each chunk is
// sent as one JSON text frame {"event","data"}; the connection is closed
// normally after the done frame.
func (h *Hub) ServeStream(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatId")
	tenantID, _ := middleware.TenantIDFromContext(r.Context())
	logger := log.With().Str("tenant_id", tenantID).Str("chat_id", chatID).Logger()

	conn, err := h.accept(w, r)
	if err != nil {
		logger.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Nothing is read from the client; CloseRead handles control frames and
	// cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	l := stream.NewChannelListener(h.listenerBuffer)
	if !h.sessions.Attach(chatID, l) {
		logger.Debug().Msg("websocket stream for unknown session")
	}
	defer h.sessions.Detach(chatID, l)

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-l.Chunks():
			if !ok {
				_ = conn.Close(websocket.StatusPolicyViolation, "listener dropped")
				return
			}
			frame, marshalErr := json.Marshal(c)
			if marshalErr != nil {
				logger.Error().Err(marshalErr).Msg("websocket marshal chunk")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, frame); writeErr != nil {
				logger.Debug().Err(writeErr).Msg("websocket write")
				return
			}
			if c.IsTerminal() {
				_ = conn.Close(websocket.StatusNormalClosure, "done")
				return
			}
		}
	}
}

// ServeEvents streams the tenant's turn lifecycle events, one JSON text frame
// per event.
func (h *Hub) ServeEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotImplemented)
		_, _ = w.Write([]byte(`{"error":"activity feed not configured"}`))
		return
	}

	tenantID, _ := middleware.TenantIDFromContext(r.Context())
	tenantID = domain.NormalizeTenantID(tenantID)
	logger := log.With().Str("tenant_id", tenantID).Logger()

	conn, err := h.accept(w, r)
	if err != nil {
		logger.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	events, cleanup, err := h.events.SubscribeTurnEvents(ctx, tenantID)
	if err != nil {
		logger.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case evt, ok := <-events:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			frame, marshalErr := json.Marshal(evt)
			if marshalErr != nil {
				logger.Error().Err(marshalErr).Msg("websocket marshal event")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, frame); writeErr != nil {
				logger.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

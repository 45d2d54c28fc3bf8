package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/parley/internal/server/middleware"
	"github.com/gosuda/parley/internal/stream"
)

// Stream handles GET /stream/{chatId}. Every chunk of the session, past and
// future, is written as one SSE event; the response ends after the done
// event. An unknown chat ID yields an open stream that only carries
// heartbeats until the client goes away.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatId")
	tenantID, _ := middleware.TenantIDFromContext(r.Context())
	logger := log.With().Str("tenant_id", tenantID).Str("chat_id", chatID).Logger()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger.Info().Msg("gateway: stream attached")

	l := stream.NewChannelListener(h.listenerBuffer)
	if !h.sessions.Attach(chatID, l) {
		logger.Debug().Msg("gateway: stream for unknown session")
	}
	defer h.sessions.Detach(chatID, l)

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("gateway: stream closed by client")
			return
		case c, open := <-l.Chunks():
			if !open {
				return
			}
			if err := writeEvent(w, c); err != nil {
				logger.Debug().Err(err).Msg("gateway: stream write")
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				logger.Debug().Err(err).Msg("gateway: stream heartbeat")
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent renders c as an SSE event whose data line is a JSON string.
func writeEvent(w io.Writer, c stream.Chunk) error {
	data, err := json.Marshal(c.Data)
	if err != nil {
		return fmt.Errorf("gateway.writeEvent: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.Kind, data); err != nil {
		return fmt.Errorf("gateway.writeEvent: %w", err)
	}
	return nil
}

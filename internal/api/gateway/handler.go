// Package gateway serves the chat boundary: turn submission, chunk streaming
// over Server-Sent Events, tenant history, and session introspection.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/parley/internal/chat"
	"github.com/gosuda/parley/internal/domain"
	"github.com/gosuda/parley/internal/stream"
)

// Submitter starts chat turns.
type Submitter interface {
	Submit(ctx context.Context, req chat.Request) (string, error)
}

// Options tunes the streaming endpoints.
type Options struct {
	// Heartbeat is the interval between SSE keep-alive comments.
	Heartbeat time.Duration
	// ListenerBuffer bounds the chunks queued for one slow client.
	ListenerBuffer int
}

// Handler holds the dependencies of the gateway HTTP endpoints.
type Handler struct {
	turns    Submitter
	sessions *stream.Registry
	history  domain.HistoryRepository

	heartbeat      time.Duration
	listenerBuffer int
}

func NewHandler(turns Submitter, sessions *stream.Registry, history domain.HistoryRepository, opts Options) *Handler {
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}
	if opts.ListenerBuffer < 1 {
		opts.ListenerBuffer = 256
	}
	return &Handler{
		turns:          turns,
		sessions:       sessions,
		history:        history,
		heartbeat:      opts.Heartbeat,
		listenerBuffer: opts.ListenerBuffer,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("gateway: write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

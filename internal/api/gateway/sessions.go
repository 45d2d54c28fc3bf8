package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/parley/internal/domain"
	"github.com/gosuda/parley/internal/stream"
)

type GetSessionInput struct {
	ChatID string `path:"chatId" doc:"Chat ID returned by POST /chat"`
}

// SessionStatus describes a live session.
type SessionStatus struct {
	ChatID    string `json:"chatId"`
	Chunks    int    `json:"chunks" doc:"Chunks appended so far, including the terminal chunk"`
	Done      bool   `json:"done" doc:"Whether the terminal chunk was appended"`
	Listeners int    `json:"listeners" doc:"Currently attached listeners"`
}

type GetSessionOutput struct {
	Body SessionStatus
}

// RegisterSessionRoutes mounts read-only session introspection on api.
func RegisterSessionRoutes(api huma.API, sessions *stream.Registry) {
	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/sessions/{chatId}",
		Summary:     "Get streaming session status",
		Tags:        []string{"Sessions"},
	}, func(_ context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
		s, err := sessions.Get(input.ChatID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("session not found")
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to get session", err)
		}

		st := s.Stats()
		return &GetSessionOutput{Body: SessionStatus{
			ChatID:    s.ID,
			Chunks:    st.Chunks,
			Done:      st.Done,
			Listeners: st.Listeners,
		}}, nil
	})
}

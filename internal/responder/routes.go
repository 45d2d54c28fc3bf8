package responder

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
)

type RespondInput struct {
	Body struct {
		TenantID string `json:"tenantId" minLength:"1" doc:"Tenant the message belongs to"`
		Text     string `json:"text" minLength:"1" doc:"User message"`
		Provider string `json:"provider,omitempty" doc:"Engine name (echo, rule); unknown names use the default"`
		Slow     bool   `json:"slow,omitempty" doc:"Request a longer multi-sentence reply"`
	}
}

// RespondBody is the /respond response payload.
type RespondBody struct {
	Provider string         `json:"provider"`
	Reply    string         `json:"reply"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type RespondOutput struct {
	Body RespondBody
}

type ListProvidersOutput struct {
	Body struct {
		Default   string   `json:"default"`
		Providers []string `json:"providers"`
	}
}

// RegisterRoutes mounts /respond and /providers on api.
func RegisterRoutes(api huma.API, registry *Registry) {
	huma.Register(api, huma.Operation{
		OperationID: "respond",
		Method:      http.MethodPost,
		Path:        "/respond",
		Summary:     "Generate a reply for a chat message",
		Tags:        []string{"Responder"},
	}, func(ctx context.Context, input *RespondInput) (*RespondOutput, error) {
		engine, err := registry.Select(input.Body.Provider)
		if err != nil {
			return nil, huma.Error500InternalServerError("no engine available", err)
		}

		reply, err := engine.Reply(ctx, input.Body.Text, input.Body.TenantID, input.Body.Slow)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", input.Body.TenantID).Str("provider", engine.Name()).Msg("responder: engine failed")
			return nil, huma.Error500InternalServerError("responder error", err)
		}

		return &RespondOutput{Body: RespondBody{
			Provider: engine.Name(),
			Reply:    reply,
			Metadata: map[string]any{
				"providedBy": engine.Name(),
				"wordCount":  len(strings.Fields(reply)),
			},
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-providers",
		Method:      http.MethodGet,
		Path:        "/providers",
		Summary:     "List reply providers",
		Tags:        []string{"Responder"},
	}, func(_ context.Context, _ *struct{}) (*ListProvidersOutput, error) {
		out := &ListProvidersOutput{}
		out.Body.Default = registry.Default()
		out.Body.Providers = registry.Available()
		return out, nil
	})
}

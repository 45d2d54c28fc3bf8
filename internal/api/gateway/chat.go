package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/parley/internal/chat"
	"github.com/gosuda/parley/internal/domain"
	"github.com/gosuda/parley/internal/server/middleware"
)

// maxChatBody caps the size of a submitted turn.
const maxChatBody = 1 << 20

type chatRequest struct {
	TenantID string          `json:"tenantId,omitempty"`
	Text     json.RawMessage `json:"text"`
	Provider string          `json:"provider,omitempty"`
	Slow     bool            `json:"slow,omitempty"`
}

type chatResponse struct {
	ChatID string `json:"chatId"`
}

// Chat handles POST /chat. It answers with the new chat ID as soon as the
// turn is accepted; the reply is streamed separately. A tenantId in the body
// is only used when the request names no tenant otherwise.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := middleware.TenantIDFromContext(r.Context())

	// Bodies that are empty or not JSON carry no text.
	var req chatRequest
	if isJSON(r) {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	// text must be a non-empty JSON string.
	var text string
	if err := json.Unmarshal(req.Text, &text); err != nil || text == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}

	if _, explicit := middleware.ExplicitTenant(r); !explicit && req.TenantID != "" {
		tenantID = domain.NormalizeTenantID(req.TenantID)
	}

	chatID, err := h.turns.Submit(r.Context(), chat.Request{
		TenantID: tenantID,
		Text:     text,
		Provider: req.Provider,
		Slow:     req.Slow,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, "text required")
			return
		}
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("gateway: submit turn")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{ChatID: chatID})
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

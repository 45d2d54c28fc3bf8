package gateway

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/parley/internal/domain"
	"github.com/gosuda/parley/internal/server/middleware"
)

type historyResponse struct {
	TenantID string            `json:"tenantId"`
	Messages []*domain.Message `json:"messages"`
}

// History handles GET /history for the request's tenant.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := middleware.TenantIDFromContext(r.Context())
	tenantID = domain.NormalizeTenantID(tenantID)

	msgs, err := h.history.List(r.Context(), tenantID)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("gateway: list history")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}

	writeJSON(w, http.StatusOK, historyResponse{TenantID: tenantID, Messages: msgs})
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gosuda/parley/internal/api/gateway"
	"github.com/gosuda/parley/internal/api/ws"
)

func registerChatRoutes(r chi.Router, h *gateway.Handler, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post("/chat", h.Chat)
	r.Get("/stream/{chatId}", h.Stream)
	r.Get("/history", h.History)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/stream/{chatId}", hub.ServeStream)
	r.Get("/events", hub.ServeEvents)
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/gosuda/parley/internal/api/gateway"
	"github.com/gosuda/parley/internal/api/ws"
	"github.com/gosuda/parley/internal/config"
	"github.com/gosuda/parley/internal/domain"
	"github.com/gosuda/parley/internal/responder"
	"github.com/gosuda/parley/internal/server/middleware"
	"github.com/gosuda/parley/internal/stream"
)

// Server is an HTTP server with its routes and middleware wired.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// GatewayDeps are the components behind the gateway routes.
type GatewayDeps struct {
	Sessions *stream.Registry
	History  domain.HistoryRepository
	Turns    gateway.Submitter
	// Events backs the tenant activity feed; nil disables it.
	Events ws.Subscriber
}

// NewGateway creates the chat gateway server. ctx bounds background work
// owned by the middleware stack.
func NewGateway(ctx context.Context, cfg *config.Config, deps GatewayDeps) *Server {
	router := newRouter(cfg, middleware.ResolveTenant())

	handler := gateway.NewHandler(deps.Turns, deps.Sessions, deps.History, gateway.Options{
		Heartbeat:      cfg.Stream.Heartbeat,
		ListenerBuffer: cfg.Stream.ListenerBuffer,
	})
	hub := ws.NewHub(deps.Sessions, deps.Events, cfg.Stream.ListenerBuffer, cfg.Server.CORSOrigins)

	registerChatRoutes(router, handler, middleware.RateLimit(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	router.Route("/ws", func(r chi.Router) {
		registerWSRoutes(r, hub)
	})

	router.Route("/api/v1", func(r chi.Router) {
		apiConfig := huma.DefaultConfig("Parley Gateway API", "1.0.0")
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		gateway.RegisterSessionRoutes(api, deps.Sessions)
	})

	return newServer(router, cfg.Server.GatewayAddr, cfg)
}

// NewResponder creates the reply generation server.
func NewResponder(cfg *config.Config, registry *responder.Registry) *Server {
	router := newRouter(cfg)

	apiConfig := huma.DefaultConfig("Parley Responder API", "1.0.0")
	api := humachi.New(router, apiConfig)
	responder.RegisterRoutes(api, registry)

	return newServer(router, cfg.Server.ResponderAddr, cfg)
}

// newRouter builds the middleware stack and health check shared by both
// binaries. chi requires extra middleware to be installed before any route.
func newRouter(cfg *config.Config, extra ...func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.HeaderTenantID, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}).Handler)
	router.Use(extra...)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return router
}

// newServer leaves WriteTimeout unset so long-lived streams are not cut off.
func newServer(router chi.Router, addr string, cfg *config.Config) *Server {
	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

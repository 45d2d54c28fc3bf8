package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/parley/internal/api/ws"
	"github.com/gosuda/parley/internal/chat"
	"github.com/gosuda/parley/internal/config"
	"github.com/gosuda/parley/internal/generator"
	"github.com/gosuda/parley/internal/history"
	"github.com/gosuda/parley/internal/responder"
	"github.com/gosuda/parley/internal/server"
	redisstore "github.com/gosuda/parley/internal/store/redis"
	"github.com/gosuda/parley/internal/stream"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	// Initialize structured logging from environment.
	level, parseErr := zerolog.ParseLevel(os.Getenv("PARLEY_LOG_LEVEL"))
	if parseErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("PARLEY_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Str("service", "gateway").Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "gateway").Logger()
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Reply generation: remote responder service, or in-process engines.
	var gen generator.Generator
	if cfg.Responder.Local() {
		registry := responder.NewDefaultRegistry(cfg.Responder.DefaultProvider)
		if _, selectErr := registry.Select(""); selectErr != nil {
			return selectErr
		}
		gen = generator.NewLocal(registry)
	} else {
		gen = generator.NewHTTPClient(cfg.Responder.URL, cfg.Responder.Timeout)
	}

	// Connect to Redis when the activity feed is configured.
	var (
		publisher chat.TurnPublisher
		events    ws.Subscriber
	)
	if cfg.Redis.Enabled() {
		pubsub, redisErr := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if redisErr != nil {
			return redisErr
		}
		defer pubsub.Close()
		publisher, events = pubsub, pubsub
	}

	sessions := stream.NewRegistry()
	store := history.NewStore(cfg.MaxHistory)

	orchestrator := chat.NewOrchestrator(sessions, store, gen, publisher, chat.Config{
		Retention: cfg.Stream.Retention,
		Pacing:    chat.Pacing{Min: cfg.Stream.PaceMin, Max: cfg.Stream.PaceMax},
	})

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.NewGateway(ctx, cfg, server.GatewayDeps{
		Sessions: sessions,
		History:  store,
		Turns:    orchestrator,
		Events:   events,
	})

	go func() {
		log.Info().
			Str("addr", cfg.Server.GatewayAddr).
			Str("responder", cfg.Responder.URL).
			Bool("activity_feed", cfg.Redis.Enabled()).
			Msg("starting gateway")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

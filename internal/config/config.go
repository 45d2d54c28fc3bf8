package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// LocalResponder is the PARLEY_RESPONDER_URL value that runs the responder
// engines inside the gateway process.
const LocalResponder = "local"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	Responder ResponderConfig
	Stream    StreamConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig

	MaxHistory int
}

// ServerConfig holds HTTP server settings shared by both binaries.
type ServerConfig struct {
	GatewayAddr   string
	ResponderAddr string
	ReadTimeout   time.Duration
	IdleTimeout   time.Duration
	CORSOrigins   []string
}

// ResponderConfig controls how the gateway reaches the reply generator and
// which engine the responder falls back to.
type ResponderConfig struct {
	URL             string
	Timeout         time.Duration
	DefaultProvider string
}

// Local reports whether replies are generated in-process.
func (c *ResponderConfig) Local() bool {
	return c.URL == LocalResponder
}

// StreamConfig holds chunk streaming settings.
type StreamConfig struct {
	Retention      time.Duration
	PaceMin        time.Duration
	PaceMax        time.Duration
	Heartbeat      time.Duration
	ListenerBuffer int
}

// RateLimitConfig holds the per-tenant token bucket for turn submission.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// RedisConfig holds Redis connection settings. An empty Addr disables the
// tenant activity feed.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	readTimeout, err := getEnvDuration("PARLEY_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	idleTimeout, err := getEnvDuration("PARLEY_SERVER_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	responderTimeout, err := getEnvDuration("PARLEY_RESPONDER_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxHistory, err := getEnvInt("PARLEY_MAX_HISTORY", 50)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	retention, err := getEnvDuration("PARLEY_STREAM_RETENTION", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	paceMin, err := getEnvDuration("PARLEY_STREAM_PACE_MIN", 150*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	paceMax, err := getEnvDuration("PARLEY_STREAM_PACE_MAX", 300*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	heartbeat, err := getEnvDuration("PARLEY_STREAM_HEARTBEAT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	listenerBuffer, err := getEnvInt("PARLEY_STREAM_LISTENER_BUFFER", 256)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rps, err := getEnvFloat("PARLEY_RATE_LIMIT_RPS", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	burst, err := getEnvInt("PARLEY_RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("PARLEY_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			GatewayAddr:   getEnv("PARLEY_GATEWAY_ADDR", ":4000"),
			ResponderAddr: getEnv("PARLEY_RESPONDER_ADDR", ":4001"),
			ReadTimeout:   readTimeout,
			IdleTimeout:   idleTimeout,
			CORSOrigins:   getEnvList("PARLEY_CORS_ORIGINS", []string{"*"}),
		},
		Responder: ResponderConfig{
			URL:             getEnv("PARLEY_RESPONDER_URL", "http://localhost:4001/respond"),
			Timeout:         responderTimeout,
			DefaultProvider: strings.TrimSpace(getEnv("PARLEY_DEFAULT_PROVIDER", "rule")),
		},
		Stream: StreamConfig{
			Retention:      retention,
			PaceMin:        paceMin,
			PaceMax:        paceMax,
			Heartbeat:      heartbeat,
			ListenerBuffer: listenerBuffer,
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
		Redis: RedisConfig{
			Addr:     getEnv("PARLEY_REDIS_ADDR", ""),
			Password: getEnv("PARLEY_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		MaxHistory: maxHistory,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("PARLEY_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("PARLEY_SERVER_IDLE_TIMEOUT must be positive, got %s", c.Server.IdleTimeout)
	}
	if c.Responder.URL == "" {
		return errors.New("PARLEY_RESPONDER_URL is required")
	}
	if c.Responder.Timeout <= 0 {
		return fmt.Errorf("PARLEY_RESPONDER_TIMEOUT must be positive, got %s", c.Responder.Timeout)
	}
	if c.Responder.DefaultProvider == "" {
		return errors.New("PARLEY_DEFAULT_PROVIDER must not be blank")
	}
	if c.MaxHistory < 1 {
		return fmt.Errorf("PARLEY_MAX_HISTORY must be >= 1, got %d", c.MaxHistory)
	}
	if c.Stream.Retention <= 0 {
		return fmt.Errorf("PARLEY_STREAM_RETENTION must be positive, got %s", c.Stream.Retention)
	}
	if c.Stream.PaceMin < 0 {
		return fmt.Errorf("PARLEY_STREAM_PACE_MIN must not be negative, got %s", c.Stream.PaceMin)
	}
	if c.Stream.PaceMax < c.Stream.PaceMin {
		return fmt.Errorf("PARLEY_STREAM_PACE_MAX (%s) must be >= PARLEY_STREAM_PACE_MIN (%s)", c.Stream.PaceMax, c.Stream.PaceMin)
	}
	if c.Stream.Heartbeat <= 0 {
		return fmt.Errorf("PARLEY_STREAM_HEARTBEAT must be positive, got %s", c.Stream.Heartbeat)
	}
	if c.Stream.ListenerBuffer < 1 {
		return fmt.Errorf("PARLEY_STREAM_LISTENER_BUFFER must be >= 1, got %d", c.Stream.ListenerBuffer)
	}
	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("PARLEY_RATE_LIMIT_RPS must be positive, got %g", c.RateLimit.RPS)
	}
	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("PARLEY_RATE_LIMIT_BURST must be >= 1, got %d", c.RateLimit.Burst)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("PARLEY_REDIS_DB must be >= 0, got %d", c.Redis.DB)
	}

	if !c.Redis.Enabled() {
		log.Info().Msg("PARLEY_REDIS_ADDR not set; tenant activity feed is disabled")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Package config builds runtime configuration from environment variables so
// main stays lean. A .env file is loaded when present (dev convenience);
// real environments set variables directly.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures all server-level configuration.
type Config struct {
	Addr          string
	JWTSigningKey string

	PostgresURL string
	Redis       RedisConfig
	KafkaBrokers []string

	Telemetry TelemetryConfig
	Scoring   ScoringConfig
	WorkOrder WorkOrderConfig
}

// RedisConfig holds connection settings for the telemetry score cache.
// An empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// TelemetryConfig bounds calls to the external safety-score provider.
type TelemetryConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	CacheTTL   time.Duration
}

// ScoringConfig holds the tunable parts of risk scoring. The blend weights
// and band thresholds are fixed domain rules and live in the engine.
type ScoringConfig struct {
	EventWindowDays  int
	RecentWindowDays int
}

// WorkOrderConfig selects the transition-table variant. AllowCancel extends
// the baseline table with Draft->Cancelled and Approved->Cancelled.
type WorkOrderConfig struct {
	AllowCancel bool
}

// FromEnv builds a Config from environment variables, applying defaults
// suitable for local development.
func FromEnv() Config {
	// Missing .env is fine; env vars may be set directly.
	_ = godotenv.Load()

	return Config{
		Addr:          envString("CONVOY_ADDR", ":8080"),
		JWTSigningKey: envString("CONVOY_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresURL:   os.Getenv("CONVOY_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("CONVOY_REDIS_URL"),
			PoolSize:     envInt("CONVOY_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CONVOY_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("CONVOY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CONVOY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CONVOY_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KafkaBrokers: envList("CONVOY_KAFKA_BROKERS"),
		Telemetry: TelemetryConfig{
			BaseURL:    os.Getenv("CONVOY_TELEMETRY_URL"),
			APIKey:     os.Getenv("CONVOY_TELEMETRY_API_KEY"),
			Timeout:    envDuration("CONVOY_TELEMETRY_TIMEOUT", 9*time.Second),
			Retries:    envInt("CONVOY_TELEMETRY_RETRIES", 2),
			RetryDelay: envDuration("CONVOY_TELEMETRY_RETRY_DELAY", 200*time.Millisecond),
			CacheTTL:   envDuration("CONVOY_TELEMETRY_CACHE_TTL", 10*time.Minute),
		},
		Scoring: ScoringConfig{
			EventWindowDays:  envInt("CONVOY_SCORING_EVENT_WINDOW_DAYS", 90),
			RecentWindowDays: envInt("CONVOY_SCORING_RECENT_WINDOW_DAYS", 30),
		},
		WorkOrder: WorkOrderConfig{
			AllowCancel: envBool("CONVOY_WORKORDER_ALLOW_CANCEL", false),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1"
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

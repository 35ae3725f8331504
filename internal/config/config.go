package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	Port    int
	DataDir string

	MaxBodyBytes       int64
	CORSAllowedOrigins []string

	// RateLimitRequests of 0 disables the limiter.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	OTelEndpoint string
	ServiceName  string
	// TraceSampleRatio is the share of new root traces kept, 0..1.
	TraceSampleRatio float64
}

func Load() Config {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	return Config{
		Env:                getEnv("APP_ENV", "dev"),
		Port:               getEnvInt("PORT", 3000),
		DataDir:            getEnv("DATA_DIR", "data"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		RateLimitRequests:  getEnvInt("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindow:    time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		OTelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:        getEnv("OTEL_SERVICE_NAME", "reviewhub"),
		TraceSampleRatio:   getEnvRatio("OTEL_TRACES_SAMPLER_ARG", 1),
	}
}

func (c Config) TracingEnabled() bool {
	return c.OTelEndpoint != ""
}

func (c Config) RateLimitEnabled() bool {
	return c.RateLimitRequests > 0 && c.RateLimitWindow > 0
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env value, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

// getEnvRatio parses a float in [0,1]; anything else falls back.
func getEnvRatio(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		slog.Warn("invalid ratio env value, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}

	return f
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	HTTPAddr      string
	ServiceID     string
	BasePublicURL string

	// OIDC / JWT (optional; auth middleware passes through when unset)
	Issuer   string
	Audience string
	JWKSURL  string

	// Postgres & Redis (optional; absence selects the in-memory backend)
	DatabaseURL     string
	PGMaxConns      int32
	RedisURL        string
	SearchRecordTTL time.Duration

	// OTLP trace exporter (optional; tracing middleware passes through
	// when unset)
	OTLPEndpoint string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:             env("STAPI_ENV", "dev"),
		HTTPAddr:        env("STAPI_HTTP_ADDR", ":8080"),
		ServiceID:       env("STAPI_SERVICE_ID", "stapi"),
		BasePublicURL:   env("BASE_PUBLIC_URL", "http://localhost:8080"),
		Issuer:          env("OIDC_ISSUER", ""),
		Audience:        env("OIDC_AUDIENCE", "stapi"),
		JWKSURL:         env("JWKS_URL", ""),
		DatabaseURL:     env("DATABASE_URL", ""),
		PGMaxConns:      int32(envInt("PG_MAX_CONNS", 0)),
		RedisURL:        env("REDIS_URL", ""),
		SearchRecordTTL: envDur("SEARCH_RECORD_TTL_SEC", 86400) * time.Second,
		OTLPEndpoint:    env("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", env("OTEL_EXPORTER_OTLP_ENDPOINT", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set — using in-memory backend for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envDur(k string, def int) time.Duration {
	return time.Duration(envInt(k, def))
}

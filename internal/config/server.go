package config

import (
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
)

// MinJWTSecretLength is the shortest HS256 signing secret accepted
const MinJWTSecretLength = 32

// ServerConfig holds the API server configuration
type ServerConfig struct {
	DatabaseURL     string
	ServerPort      string
	FrontendURL     string
	EnableHSTS      bool
	RedisURL        string
	JWTSecret       string
	JWTIssuer       string
	TokenTTL        time.Duration
	RateLimit       string
	MaxRequestBytes int
	AutoMigrate     bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// LoadServer loads server configuration from the environment
func LoadServer() (*ServerConfig, error) {
	return loadServer(osLookup)
}

func loadServer(lookup Lookup) (*ServerConfig, error) {
	ttl, err := getEnvDuration(lookup, "TOKEN_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		DatabaseURL:     getEnv(lookup, "DATABASE_URL", ""),
		ServerPort:      getEnv(lookup, "SERVER_PORT", "3000"),
		FrontendURL:     getEnv(lookup, "FRONTEND_URL", "http://localhost:8081"),
		EnableHSTS:      getEnvBool(lookup, "ENABLE_HSTS", false),
		RedisURL:        getEnv(lookup, "REDIS_URL", ""),
		JWTSecret:       getEnv(lookup, "JWT_SECRET", ""),
		JWTIssuer:       getEnv(lookup, "JWT_ISSUER", "careerontrack"),
		TokenTTL:        ttl,
		RateLimit:       getEnv(lookup, "RATE_LIMIT", "5-S"),
		MaxRequestBytes: getEnvInt(lookup, "MAX_REQUEST_BYTES", 1<<20),
		AutoMigrate:     getEnvBool(lookup, "AUTO_MIGRATE", false),
		ServerDebugMode: getEnvBool(lookup, "SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool(lookup, "OTEL_ENABLED", false),
		OTELEndpoint:    getEnv(lookup, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	if _, err := limiter.NewRateFromFormatted(cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT is invalid: %w", err)
	}
	if cfg.MaxRequestBytes <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BYTES must be positive")
	}

	return cfg, nil
}

// LoadDatabaseURL reads only DATABASE_URL, for tools that never serve requests
func LoadDatabaseURL() (string, error) {
	return loadDatabaseURL(osLookup)
}

func loadDatabaseURL(lookup Lookup) (string, error) {
	url := getEnv(lookup, "DATABASE_URL", "")
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL is required")
	}
	return url, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Storage backends selectable through STORAGE.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// DefaultBcryptCost matches the work factor the service has always used.
const DefaultBcryptCost = 10

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	Env           string
	Storage       string
	DatabaseURL   string
	SecretKey     string
	JWTIssuer     string
	JWTTTL        time.Duration
	BcryptCost    int
	CORSOrigins   []string
	AuthRateLimit float64
	AuthRateBurst int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		Env:         fallback(os.Getenv("APP_ENV"), "dev"),
		Storage:     strings.ToLower(fallback(os.Getenv("STORAGE"), StoragePostgres)),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SecretKey:   strings.TrimSpace(os.Getenv("SECRET_KEY")),
		JWTIssuer:   strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	// Zero keeps tokens valid until the signature check fails.
	minutes := fallback(os.Getenv("JWT_TTL_MINUTES"), "0")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	}

	cfg.BcryptCost = DefaultBcryptCost
	if cost, err := strconv.Atoi(fallback(os.Getenv("BCRYPT_COST"), "")); err == nil {
		cfg.BcryptCost = clampCost(cost)
	}

	cfg.AuthRateLimit = 5
	if limit, err := strconv.ParseFloat(fallback(os.Getenv("AUTH_RATE_LIMIT"), ""), 64); err == nil && limit > 0 {
		cfg.AuthRateLimit = limit
	}
	cfg.AuthRateBurst = 10
	if burst, err := strconv.Atoi(fallback(os.Getenv("AUTH_RATE_BURST"), "")); err == nil && burst > 0 {
		cfg.AuthRateBurst = burst
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case StorageMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
	if cfg.SecretKey == "" {
		return Config{}, errors.New("SECRET_KEY is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

func clampCost(cost int) int {
	if cost < bcrypt.MinCost {
		return bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return cost
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

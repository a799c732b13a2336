package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// config is read once at startup from the environment (optionally seeded by
// a .env file in the working directory).
type config struct {
	Port          string
	AllowedOrigin string // CORS origin of the funnel frontend
	LogLevel      string

	StoreKind     string // memory | postgres | redis
	DBURL         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	FunnelTTL     time.Duration // memory and redis stores; 0 keeps blobs forever

	CheckoutBaseURL string
	CheckoutTimeout time.Duration

	JWTSecret  string
	SessionTTL time.Duration

	AdminUser         string
	AdminPasswordHash string // bcrypt; admin routes are off when empty

	PlansFile string // optional YAML catalog override
}

// defaultCheckoutBaseURL is the production payment API.
const defaultCheckoutBaseURL = "https://geral-evolvi-nutri-api.r954jc.easypanel.host"

// loadConfig reads the environment. A missing .env file is fine; a missing
// JWT_SECRET or an unparseable number/duration is not.
func loadConfig() (config, error) {
	_ = godotenv.Load()

	cfg := config{
		Port:              getEnv("PORT", "3000"),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "*"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StoreKind:         getEnv("FUNNEL_STORE", "memory"),
		DBURL:             os.Getenv("DB_URL"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		CheckoutBaseURL:   getEnv("CHECKOUT_BASE_URL", defaultCheckoutBaseURL),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		PlansFile:         os.Getenv("PLANS_FILE"),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return config{}, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.FunnelTTL, err = time.ParseDuration(getEnv("FUNNEL_TTL", "720h")); err != nil {
		return config{}, fmt.Errorf("FUNNEL_TTL: %w", err)
	}
	if cfg.CheckoutTimeout, err = time.ParseDuration(getEnv("CHECKOUT_TIMEOUT", "20s")); err != nil {
		return config{}, fmt.Errorf("CHECKOUT_TIMEOUT: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "720h")); err != nil {
		return config{}, fmt.Errorf("SESSION_TTL: %w", err)
	}

	if cfg.JWTSecret == "" {
		return config{}, errors.New("JWT_SECRET is required")
	}
	switch cfg.StoreKind {
	case "memory", "redis":
	case "postgres":
		if cfg.DBURL == "" {
			return config{}, errors.New("DB_URL is required when FUNNEL_STORE=postgres")
		}
	default:
		return config{}, fmt.Errorf("FUNNEL_STORE must be one of: memory, postgres, redis (got %q)", cfg.StoreKind)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

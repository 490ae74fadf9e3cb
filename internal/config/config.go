package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultAddr      = ":8080"
	defaultDSN       = "deskhub.db"
	defaultJWTSecret = "change-me-jwt-secret"
	defaultJWTTTL    = "24h"
	defaultSMTPPort  = "587"
)

type Config struct {
	Addr        string
	DatabaseDSN string

	JWTSecret string
	JWTTTL    time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

// Load reads the runtime configuration from the environment, falling back
// to development defaults. Production refuses to run on the default JWT
// secret.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:        envOr("ADDR", defaultAddr),
		DatabaseDSN: envOr("DATABASE_URL", defaultDSN),

		JWTSecret: envOr("JWT_SECRET", defaultJWTSecret),

		SMTPHost:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:     envOr("SMTP_PORT", defaultSMTPPort),
		SMTPUsername: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     strings.TrimSpace(os.Getenv("MAIL_FROM")),
	}

	ttlRaw := envOr("JWT_TTL", defaultJWTTTL)
	ttl, err := time.ParseDuration(ttlRaw)
	if err != nil {
		return nil, fmt.Errorf("parse JWT_TTL %q: %w", ttlRaw, err)
	}
	cfg.JWTTTL = ttl

	appEnv := strings.ToLower(envOr("APP_ENV", "dev"))
	if appEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("warning: running with the default JWT secret")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

/*
Package config loads server configuration from the environment.

PURPOSE:
  Every deployment-specific value - addresses, database paths, the JWT
  secret, SMTP credentials - lives in the environment, never in code. A
  local .env file is honored when present (godotenv); real deployments set
  the variables directly.

VARIABLES:
  APP_ADDR         listen address            (default :8080)
  DB_PATH          vacation store path       (default vacations.db)
  AUTH_DB_PATH     credential store path     (default credentials.db)
  JWT_SECRET       session signing secret    (required)
  SMTP_HOST        outbound mail host        (optional; unset = log sink)
  SMTP_PORT        outbound mail port        (default 587)
  SMTP_USER        smtp username
  SMTP_PASS        smtp password
  SMTP_FROM        sender address
  ALLOWED_ORIGINS  comma-separated CORS origins
*/
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	DBPath         string
	AuthDBPath     string
	JWTSecret      string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	SMTPFrom       string
	AllowedOrigins []string
}

// Load reads the environment (and a .env file when present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:       getEnv("APP_ADDR", ":8080"),
		DBPath:     getEnv("DB_PATH", "vacations.db"),
		AuthDBPath: getEnv("AUTH_DB_PATH", "credentials.db"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   getEnvInt("SMTP_PORT", 587),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		SMTPFrom:   os.Getenv("SMTP_FROM"),
	}

	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// MailConfigured reports whether SMTP delivery can be used. When false the
// server falls back to the log notifier.
func (c Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL   string
	LogLevel      string
	Port          string
	PrometheusPort string

	// Background sweep
	SweepInterval time.Duration

	// Routing
	OpenRouteServiceKey string
	RedisAddr           string
	RedisPassword       string

	// Ops alert channel (telegram)
	TelegramToken     string
	TelegramOpsChatID int64

	// Ops alert email
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AlertFrom    string
	AlertTo      []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		Port:                getEnvOrDefault("PORT", "8080"),
		PrometheusPort:      getEnvOrDefault("PROMETHEUS_PORT", "9090"),
		OpenRouteServiceKey: os.Getenv("OPENROUTESERVICE_API_KEY"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		TelegramToken:       os.Getenv("TELEGRAM_TOKEN"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPUsername:        os.Getenv("SMTP_USERNAME"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		AlertFrom:           getEnvOrDefault("ALERT_FROM", "noreply@shareeat.local"),
	}

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	sweep := getEnvOrDefault("SWEEP_INTERVAL", "5m")
	interval, err := time.ParseDuration(sweep)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL %q: %w", sweep, err)
	}
	cfg.SweepInterval = interval

	if v := os.Getenv("TELEGRAM_OPS_CHAT_ID"); v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_OPS_CHAT_ID %q: %w", v, err)
		}
		cfg.TelegramOpsChatID = chatID
	}

	if v := getEnvOrDefault("SMTP_PORT", "587"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		cfg.SMTPPort = port
	}

	if v := os.Getenv("ALERT_TO"); v != "" {
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.AlertTo = append(cfg.AlertTo, addr)
			}
		}
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	BotToken      string
	AdminID       int64
	OwnerUsername string
	BotUsername   string
	DBPath        string
	BannerPath    string
	HTTPAddr      string
	LogLevel      slog.Level
	Payment       PaymentConfig
}

// PaymentConfig holds the deposit details shown to purchase requesters.
// All fields are optional; empty ones are omitted from messages.
type PaymentConfig struct {
	TONWallet  string
	CardNumber string
	CardHolder string
	BankName   string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	adminID, err := getEnvInt64("ADMIN_ID")
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		BotToken:      getEnv("BOT_TOKEN", ""),
		AdminID:       adminID,
		OwnerUsername: getEnv("OWNER_USERNAME", ""),
		BotUsername:   getEnv("BOT_USERNAME", "OrgazmDeals_Bot"),
		DBPath:        getEnv("DB_PATH", "./data/bot.db"),
		BannerPath:    getEnv("BANNER_PATH", "./banner.jpg"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		LogLevel:      parseLevel(getEnv("LOG_LEVEL", "info")),
		Payment: PaymentConfig{
			TONWallet:  getEnv("TON_WALLET", ""),
			CardNumber: getEnv("CARD_NUMBER", ""),
			CardHolder: getEnv("CARD_HOLDER", ""),
			BankName:   getEnv("BANK_NAME", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN cannot be empty")
	}
	if c.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID must be set")
	}
	if c.OwnerUsername == "" {
		return fmt.Errorf("OWNER_USERNAME cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.BannerPath == "" {
		return fmt.Errorf("BANNER_PATH cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string) (int64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

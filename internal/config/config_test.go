package config

import (
	"log/slog"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "99")
	t.Setenv("OWNER_USERNAME", "orgazm")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminID != 99 {
		t.Errorf("expected admin id 99, got %d", cfg.AdminID)
	}
	if cfg.DBPath != "./data/bot.db" {
		t.Errorf("unexpected default DB path %q", cfg.DBPath)
	}
	if cfg.BannerPath != "./banner.jpg" {
		t.Errorf("unexpected default banner path %q", cfg.BannerPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("unexpected default log level %v", cfg.LogLevel)
	}
}

func TestLoad_MissingToken(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Error("expected an error with empty BOT_TOKEN")
	}
}

func TestLoad_BadAdminID(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_ID", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("expected an error with non-numeric ADMIN_ID")
	}
}

func TestLoad_LogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
}

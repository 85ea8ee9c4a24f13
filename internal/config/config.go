package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds the complete environment-driven configuration for the
// service, read from environment variables.
type Config struct {
	Server     ServerConfig
	LLM        LLMConfig
	Database   DatabaseConfig
	SessionTTL time.Duration
	LogLevel   slog.Level
}

type ServerConfig struct {
	Port int
}

type LLMConfig struct {
	APIKey string
	Model  string
}

type DatabaseConfig struct {
	URL        string
	SchemaFile string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		LLM: LLMConfig{
			Model: "claude-sonnet-4-5-20250929",
		},
		Database: DatabaseConfig{
			SchemaFile: "./schema.json",
		},
		SessionTTL: 900 * time.Second,
		LogLevel:   slog.LevelInfo,
	}
}

// Load reads configuration from the process environment. LLM_API_KEY and
// DATABASE_URL are required; everything else falls back to a default.
func Load() (Config, error) {
	cfg := defaults()

	cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	if cfg.LLM.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: LLM_API_KEY")
	}

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("missing required config: DATABASE_URL")
	}

	if v := os.Getenv("SCHEMA_FILE"); v != "" {
		cfg.Database.SchemaFile = v
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv("SESSION_TTL_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing SESSION_TTL_SECONDS: %w", err)
		}
		cfg.SessionTTL = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("parsing LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

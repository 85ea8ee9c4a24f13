package config

import (
	"testing"
	"time"
)

func TestLoad_RequiredFieldsMissing(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing everything", map[string]string{}},
		{"missing database url", map[string]string{"LLM_API_KEY": "key"}},
		{"missing api key", map[string]string{"DATABASE_URL": "file:test.db"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "key")
	t.Setenv("DATABASE_URL", "file:test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.SessionTTL != 900*time.Second {
		t.Errorf("SessionTTL = %v, want 900s", cfg.SessionTTL)
	}
	if cfg.Database.SchemaFile != "./schema.json" {
		t.Errorf("SchemaFile = %q, want ./schema.json", cfg.Database.SchemaFile)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "key")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL_SECONDS", "60")
	t.Setenv("SCHEMA_FILE", "/tmp/schema.json")
	t.Setenv("LLM_MODEL", "claude-override")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.SessionTTL != 60*time.Second {
		t.Errorf("SessionTTL = %v, want 60s", cfg.SessionTTL)
	}
	if cfg.Database.SchemaFile != "/tmp/schema.json" {
		t.Errorf("SchemaFile = %q, want /tmp/schema.json", cfg.Database.SchemaFile)
	}
	if cfg.LLM.Model != "claude-override" {
		t.Errorf("Model = %q, want claude-override", cfg.LLM.Model)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("LLM_API_KEY", "key")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid PORT, got nil")
	}
}

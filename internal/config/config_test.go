package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "interviewd.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  bogus_field: true
llm:
  provider: openai
  openai_api_key: sk-test
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: openai
  openai_api_key: sk-test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected default driver memory, got %q", cfg.Database.Driver)
	}
	if cfg.Debounce.QuietSeconds != 30 {
		t.Errorf("expected default quiet window 30, got %d", cfg.Debounce.QuietSeconds)
	}
}

func TestLoadValidatesLLMProvider(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: claude
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "llm.provider") {
		t.Fatalf("expected llm.provider error, got %v", err)
	}
}

func TestLoadValidatesMissingAPIKey(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: openai
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "openai_api_key") {
		t.Fatalf("expected openai_api_key error, got %v", err)
	}
}

func TestLoadValidatesDatabaseDSN(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
llm:
  provider: openai
  openai_api_key: sk-test
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "database.dsn") {
		t.Fatalf("expected database.dsn error, got %v", err)
	}
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-from-env")
	path := writeConfig(t, `
llm:
  provider: openai
  openai_api_key: ${TEST_OPENAI_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.OpenAIAPIKey != "sk-from-env" {
		t.Errorf("expected expanded env var, got %q", cfg.LLM.OpenAIAPIKey)
	}
}

func TestLoadEnvOverridesTakePrecedence(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://override")
	path := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://from-file
llm:
  provider: openai
  openai_api_key: sk-test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != "postgres://override" {
		t.Errorf("expected env override to win, got %q", cfg.Database.DSN)
	}
}

func TestCheckReportsSameErrorAsLoad(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: bogus
`)

	_, loadErr := Load(path)
	if loadErr == nil {
		t.Fatalf("expected Load to fail")
	}
	err := Check(path)
	if err == nil {
		t.Fatalf("expected Check to fail")
	}
	if !strings.Contains(err.Error(), loadErr.Error()) {
		t.Fatalf("expected Check error to carry Load error %q, got %q", loadErr.Error(), err.Error())
	}
}

package store

import "testing"

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()

	if cfg.Host != "localhost" || cfg.Port != 5432 {
		t.Errorf("expected local development defaults, got %+v", cfg)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("expected sslmode disable for local development, got %q", cfg.SSLMode)
	}
	if cfg.MaxOpenConns <= 0 || cfg.ConnectTimeout <= 0 {
		t.Errorf("expected positive pool defaults, got %+v", cfg)
	}
}

func TestNewPostgresStoreFromDSNRequiresDSN(t *testing.T) {
	_, err := NewPostgresStoreFromDSN("", DefaultPostgresConfig())
	if err == nil {
		t.Fatal("expected an error for an empty dsn")
	}
}

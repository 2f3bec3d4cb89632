package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haasonsaas/interviewd/internal/config"
	"github.com/haasonsaas/interviewd/internal/container"
)

func testContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Driver = "memory"
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAIAPIKey = "sk-test"
	cfg.LLM.Model = "gpt-4o"
	cfg.Debounce.QuietSeconds = 30
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	c, err := container.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("container.New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHandleHealthz(t *testing.T) {
	srv := newServer(testContainer(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestHandleMetricsServed(t *testing.T) {
	srv := newServer(testContainer(t))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestResolveUserIDRequiresUserIDWhenAuthDisabled(t *testing.T) {
	srv := newServer(testContainer(t))

	req := httptest.NewRequest(http.MethodGet, "/ws?mock_interview_id=m1", nil)
	if _, err := srv.resolveUserID(req); err == nil {
		t.Fatal("expected an error when auth is disabled and no user_id is supplied")
	}

	req = httptest.NewRequest(http.MethodGet, "/ws?mock_interview_id=m1&user_id=u1", nil)
	userID, err := srv.resolveUserID(req)
	if err != nil {
		t.Fatalf("resolveUserID() error = %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected user id u1, got %q", userID)
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/haasonsaas/interviewd/internal/config"
)

func TestRedactAttrRedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: redactAttr})
	logger := slog.New(handler)

	logger.Info("issuing token", "openai_api_key", "sk-super-secret", "question_id", "q1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if record["openai_api_key"] != "[REDACTED]" {
		t.Errorf("expected redacted api key, got %v", record["openai_api_key"])
	}
	if record["question_id"] != "q1" {
		t.Errorf("expected question_id preserved, got %v", record["question_id"])
	}
}

func TestNewBuildsTextHandlerWhenConfigured(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "debug", Format: "text"})
	if logger == nil {
		t.Fatalf("expected non-nil logger")
	}
}

func TestNewBuildsJSONHandlerWhenConfigured(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "info", Format: "json"})
	if logger == nil {
		t.Fatalf("expected non-nil logger")
	}
}

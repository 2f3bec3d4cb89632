// Package logging builds the process-wide slog.Logger: JSON output for
// production, text for local development, and redaction of fields that
// carry provider API keys or bearer tokens.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/haasonsaas/interviewd/internal/config"
)

var redactedKeys = map[string]bool{
	"password":       true,
	"secret":         true,
	"token":          true,
	"api_key":        true,
	"apikey":         true,
	"openai_api_key": true,
	"google_api_key": true,
	"deepgram_api_key": true,
	"jwt_secret":     true,
	"authorization":  true,
}

// New builds a *slog.Logger from a logging config. Level is one of
// "debug"/"info"/"warn"/"error"; Format is "json" or "text".
func New(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       levelFromString(cfg.Level),
		ReplaceAttr: redactAttr,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func levelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
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

func redactAttr(groups []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(strings.ReplaceAll(a.Key, "-", "_"))
	if redactedKeys[key] {
		a.Value = slog.StringValue("[REDACTED]")
	}
	return a
}

// Package container wires together the process-wide singletons (store,
// queue sender, LLM provider, metrics) and builds one runtime per connected
// candidate session from them, replacing a teacher pattern of package-level
// globals with explicit construction.
package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haasonsaas/interviewd/internal/config"
	"github.com/haasonsaas/interviewd/internal/identity"
	"github.com/haasonsaas/interviewd/internal/llmprovider"
	"github.com/haasonsaas/interviewd/internal/logging"
	"github.com/haasonsaas/interviewd/internal/observability"
	"github.com/haasonsaas/interviewd/internal/queue"
	"github.com/haasonsaas/interviewd/internal/sttprovider"
	"github.com/haasonsaas/interviewd/internal/store"
	"github.com/haasonsaas/interviewd/internal/ttsprovider"
)

// Container holds every process-lifetime dependency. Built once at startup
// by New, torn down once by Close.
//
// STT is exposed as a constructor rather than a shared instance: a Deepgram
// stream holds one websocket connection per call to Start, so each
// candidate session needs its own Provider value, never one shared across
// concurrent sessions.
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Store    store.Store
	Queue    queue.Sender
	LLM      llmprovider.Provider
	TTS      ttsprovider.Provider
	Identity *identity.Verifier

	speechCfg config.SpeechConfig
}

// NewSTT builds a fresh speech-to-text provider for one candidate session.
func (c *Container) NewSTT() sttprovider.Provider {
	return sttprovider.NewDeepgramProvider(sttprovider.DeepgramConfig{
		APIKey: c.speechCfg.DeepgramAPIKey,
		Model:  c.speechCfg.STTModel,
	})
}

// New builds every process-lifetime dependency from cfg. It does not start
// listening on any network address; callers wire Container into a server.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger := logging.New(cfg.Logging)

	st, err := buildStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("container: building store: %w", err)
	}

	sender, err := queue.NewSQSSender(ctx, queue.SQSConfig{
		QueueURL:        cfg.Queue.QueueURL,
		Region:          cfg.Queue.Region,
		Endpoint:        cfg.Queue.Endpoint,
		AccessKeyID:     cfg.Queue.AccessKeyID,
		SecretAccessKey: cfg.Queue.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("container: building queue sender: %w", err)
	}

	llm, err := buildLLMProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("container: building llm provider: %w", err)
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		Store:   st,
		Queue:   sender,
		LLM:     llm,
		TTS: ttsprovider.NewDeepgramProvider(ttsprovider.DeepgramConfig{
			APIKey: cfg.Speech.DeepgramAPIKey,
			Model:  cfg.Speech.TTSModel,
		}),
		Identity:  identity.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry),
		speechCfg: cfg.Speech,
	}, nil
}

func buildStore(cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return store.NewPostgresStoreFromDSN(cfg.DSN, store.DefaultPostgresConfig())
	case "sqlite":
		return store.NewSQLiteStore(cfg.DSN)
	default:
		return store.NewMemoryStore(), nil
	}
}

func buildLLMProvider(ctx context.Context, cfg config.LLMConfig) (llmprovider.Provider, error) {
	switch cfg.Provider {
	case "google":
		return llmprovider.NewGoogleProvider(ctx, cfg.GoogleAPIKey, cfg.Model)
	default:
		return llmprovider.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.Model), nil
	}
}

// Close releases process-lifetime resources (currently just the store).
func (c *Container) Close() error {
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

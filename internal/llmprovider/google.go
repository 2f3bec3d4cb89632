package llmprovider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GoogleProvider implements Provider against Google's Gemini API.
type GoogleProvider struct {
	client       *genai.Client
	defaultModel string
	maxRetries   int
	retryDelay   time.Duration
}

// NewGoogleProvider creates a Gemini-backed provider. Fails fast if apiKey
// is empty, since genai.NewClient requires credentials up front.
func NewGoogleProvider(ctx context.Context, apiKey, defaultModel string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google: API key is required")
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("google: failed to create client: %w", err)
	}

	return &GoogleProvider{
		client:       client,
		defaultModel: defaultModel,
		maxRetries:   3,
		retryDelay:   time.Second,
	}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Complete(ctx context.Context, req CompletionRequest) (<-chan Chunk, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			continue // folded into SystemInstruction below
		}
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	chunks := make(chan Chunk)
	go func() {
		defer close(chunks)

		var lastErr error
		for attempt := 0; attempt < p.maxRetries; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					chunks <- Chunk{Err: ctx.Err(), Done: true}
					return
				case <-time.After(p.retryDelay * time.Duration(attempt)):
				}
			}

			streamErr := p.consumeStream(ctx, model, contents, config, chunks)
			if streamErr == nil {
				chunks <- Chunk{Done: true}
				return
			}
			lastErr = streamErr
			if ctx.Err() != nil {
				chunks <- Chunk{Err: ctx.Err(), Done: true}
				return
			}
			if !isRetryableMessage(streamErr.Error()) {
				chunks <- Chunk{Err: fmt.Errorf("google: non-retryable error: %w", streamErr), Done: true}
				return
			}
		}
		chunks <- Chunk{Err: fmt.Errorf("google: max retries exceeded: %w", lastErr), Done: true}
	}()
	return chunks, nil
}

func (p *GoogleProvider) consumeStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig, chunks chan<- Chunk) error {
	streamIter := p.client.Models.GenerateContentStream(ctx, model, contents, config)
	for resp, err := range streamIter {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return err
		}
		if resp == nil {
			continue
		}
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					chunks <- Chunk{Text: part.Text}
				}
			}
		}
	}
	return nil
}

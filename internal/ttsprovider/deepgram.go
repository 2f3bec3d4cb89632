// Package ttsprovider provides the text-to-speech client the orchestrator's
// outbound audio stage consumes.
package ttsprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Options configures a single Speak call.
type Options struct {
	// FilterMarkdown strips markdown code fences, inline code, and table
	// rows before synthesis so they are not read aloud verbatim.
	FilterMarkdown bool
}

// Provider synthesizes speech audio from text.
type Provider interface {
	Speak(ctx context.Context, text string, opts Options) ([]byte, error)
}

// DeepgramConfig configures the Deepgram Aura TTS adapter.
type DeepgramConfig struct {
	APIKey  string
	BaseURL string // default: https://api.deepgram.com/v1/speak
	Model   string // default: aura-asteria-en
}

// DeepgramProvider synthesizes speech via Deepgram's Aura REST endpoint.
type DeepgramProvider struct {
	cfg    DeepgramConfig
	client *http.Client
}

// NewDeepgramProvider builds a provider from cfg.
func NewDeepgramProvider(cfg DeepgramConfig) *DeepgramProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepgram.com/v1/speak"
	}
	if cfg.Model == "" {
		cfg.Model = "aura-asteria-en"
	}
	return &DeepgramProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type speakRequest struct {
	Text string `json:"text"`
}

// Speak synthesizes text into audio bytes (linear16 WAV), honoring
// opts.FilterMarkdown.
func (p *DeepgramProvider) Speak(ctx context.Context, text string, opts Options) ([]byte, error) {
	if p.cfg.APIKey == "" {
		return nil, fmt.Errorf("deepgram: API key not configured")
	}
	if opts.FilterMarkdown {
		text = FilterMarkdown(text)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	body, err := json.Marshal(speakRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("deepgram: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s?model=%s&encoding=linear16&sample_rate=16000", p.cfg.BaseURL, p.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("deepgram: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram: request failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepgram: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("deepgram: unexpected status %d: %s", resp.StatusCode, string(audio))
	}
	return audio, nil
}

var (
	codeFenceRe = regexp.MustCompile("(?s)```.*?```")
	inlineCode  = regexp.MustCompile("`[^`]*`")
	tableRowRe  = regexp.MustCompile(`(?m)^\s*\|.*\|\s*$`)
)

// FilterMarkdown strips constructs that read poorly aloud: fenced code
// blocks, inline code spans, and markdown table rows.
func FilterMarkdown(text string) string {
	text = codeFenceRe.ReplaceAllString(text, "")
	text = inlineCode.ReplaceAllString(text, "")
	text = tableRowRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

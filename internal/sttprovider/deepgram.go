// Package sttprovider provides the speech-to-text client the orchestrator's
// inbound audio stage consumes: binary audio in, text frames out.
package sttprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// TextFrame is one transcription result. Interim frames (Final=false) are
// superseded by a later frame covering the same utterance.
type TextFrame struct {
	Text  string
	Final bool
}

// Provider streams audio to a speech recognizer and yields TextFrames.
type Provider interface {
	Start(ctx context.Context) (<-chan TextFrame, error)
	PushAudio(pcm []byte) error
	Close() error
}

// DeepgramConfig configures the Deepgram streaming adapter.
type DeepgramConfig struct {
	APIKey   string
	Endpoint string // default: wss://api.deepgram.com/v1/listen
	Model    string // default: nova-2
}

// DeepgramProvider streams raw PCM audio to Deepgram's realtime websocket
// API and surfaces its transcript events as TextFrames.
type DeepgramProvider struct {
	cfg DeepgramConfig

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewDeepgramProvider builds a provider from cfg. The websocket connection
// is established lazily in Start.
func NewDeepgramProvider(cfg DeepgramConfig) *DeepgramProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "wss://api.deepgram.com/v1/listen"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	return &DeepgramProvider{cfg: cfg}
}

type deepgramMessage struct {
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
	IsFinal bool `json:"is_final"`
}

// Start opens the websocket connection and returns a channel of decoded
// transcript frames. The channel closes when the connection closes or ctx
// is cancelled.
func (p *DeepgramProvider) Start(ctx context.Context) (<-chan TextFrame, error) {
	if p.cfg.APIKey == "" {
		return nil, fmt.Errorf("deepgram: API key not configured")
	}

	endpoint, err := url.Parse(p.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("deepgram: invalid endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("model", p.cfg.Model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", "16000")
	q.Set("interim_results", "true")
	endpoint.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Token "+p.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		return nil, fmt.Errorf("deepgram: dial: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	frames := make(chan TextFrame)
	readerDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close() // unblocks ReadMessage so the reader exits
		case <-readerDone:
		}
	}()
	go func() {
		defer close(frames)
		defer close(readerDone)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg deepgramMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if len(msg.Channel.Alternatives) == 0 {
				continue
			}
			text := msg.Channel.Alternatives[0].Transcript
			if text == "" {
				continue
			}
			select {
			case frames <- TextFrame{Text: text, Final: msg.IsFinal}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, nil
}

// PushAudio writes a chunk of linear16 PCM audio to the stream.
func (p *DeepgramProvider) PushAudio(pcm []byte) error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("deepgram: not started")
	}
	return conn.WriteMessage(websocket.BinaryMessage, pcm)
}

// Close closes the underlying websocket connection.
func (p *DeepgramProvider) Close() error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

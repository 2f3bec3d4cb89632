package llmprovider

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// OutputSink receives streamed assistant text as it is generated,
// destined for TTS.
type OutputSink interface {
	PushText(text string)
}

// Context aggregates the conversation for one interview session and drives
// generation against a Provider. It implements both
// interview.SystemMessageSink (InjectSystemMessage) and the
// codepipeline/designpipeline PromptSink (AppendUserMessage): both append a
// turn to the running history and trigger a generation whose streamed reply
// is pushed to output.
type Context struct {
	provider Provider
	model    string
	output   OutputSink
	logger   *slog.Logger

	mu      sync.Mutex
	system  string
	history []Message
}

// NewContext builds a Context seeded with the first phase's system prompt.
func NewContext(provider Provider, model, initialSystemPrompt string, output OutputSink, logger *slog.Logger) *Context {
	return &Context{
		provider: provider,
		model:    model,
		output:   output,
		logger:   logger,
		system:   initialSystemPrompt,
	}
}

// AppendUserMessage adds a user-role turn and triggers generation.
func (c *Context) AppendUserMessage(content string) {
	c.appendAndGenerate(Message{Role: RoleUser, Content: content})
}

// InjectSystemMessage replaces the active system prompt, records it in
// history, and triggers generation so the model can react (acknowledge a
// phase transition, a time nudge, or the interview closure).
func (c *Context) InjectSystemMessage(content string) {
	c.mu.Lock()
	c.system = content
	c.mu.Unlock()
	c.appendAndGenerate(Message{Role: RoleSystem, Content: content})
}

func (c *Context) appendAndGenerate(msg Message) {
	c.mu.Lock()
	c.history = append(c.history, msg)
	system := c.system
	messages := make([]Message, len(c.history))
	copy(messages, c.history)
	c.mu.Unlock()

	go c.generate(system, messages)
}

func (c *Context) generate(system string, messages []Message) {
	ctx := context.Background()
	chunks, err := c.provider.Complete(ctx, CompletionRequest{
		Model:    c.model,
		System:   system,
		Messages: messages,
	})
	if err != nil {
		c.logger.Error("llm completion request failed", "provider", c.provider.Name(), "error", err)
		return
	}

	var reply strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			c.logger.Error("llm completion stream error", "provider", c.provider.Name(), "error", chunk.Err)
			return
		}
		if chunk.Text != "" {
			reply.WriteString(chunk.Text)
			if c.output != nil {
				c.output.PushText(chunk.Text)
			}
		}
		if chunk.Done {
			break
		}
	}

	if reply.Len() == 0 {
		return
	}
	c.mu.Lock()
	c.history = append(c.history, Message{Role: RoleAssistant, Content: reply.String()})
	c.mu.Unlock()
}

// History returns a copy of the conversation recorded so far, for tests and
// diagnostics.
func (c *Context) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

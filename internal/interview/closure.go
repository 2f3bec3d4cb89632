package interview

import "time"

// ClosureFrame is the in-band signal that the interview has reached its
// terminal turn. It is classified system-class so it survives the Gate's
// seal, and is converted by the Closure Handler into a final LLM user-turn
// request.
type ClosureFrame struct {
	Message          string
	SessionDuration  time.Duration
	CompletionReason CompletionReason
}

// LLMAppendRequest is what the Closure Handler pushes downstream to request
// a generation turn from the LLM stage.
type LLMAppendRequest struct {
	Role    string
	Content string
	RunLLM  bool
}

// ClosureHandler sits immediately before the LLM stage. It converts a
// ClosureFrame into a user-role append request that drives the model's final
// utterance; it handles no other frame type.
type ClosureHandler struct {
	push func(LLMAppendRequest)
}

// NewClosureHandler builds a handler that forwards converted requests to push.
func NewClosureHandler(push func(LLMAppendRequest)) *ClosureHandler {
	return &ClosureHandler{push: push}
}

// HandleClosure converts a ClosureFrame into an LLM append request.
func (h *ClosureHandler) HandleClosure(frame ClosureFrame) {
	h.push(LLMAppendRequest{
		Role:    "user",
		Content: frame.Message,
		RunLLM:  true,
	})
}

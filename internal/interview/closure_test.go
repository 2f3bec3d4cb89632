package interview

import "testing"

func TestClosureHandlerConvertsFrameToUserAppendRequest(t *testing.T) {
	var got LLMAppendRequest
	h := NewClosureHandler(func(req LLMAppendRequest) {
		got = req
	})

	h.HandleClosure(ClosureFrame{Message: "thanks for your time", CompletionReason: ReasonTimerExpired})

	if got.Role != "user" {
		t.Errorf("expected role user, got %q", got.Role)
	}
	if got.Content != "thanks for your time" {
		t.Errorf("expected content to match frame message, got %q", got.Content)
	}
	if !got.RunLLM {
		t.Error("expected RunLLM to be true")
	}
}

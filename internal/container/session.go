package container

import (
	"context"
	"fmt"
	"time"

	"github.com/haasonsaas/interviewd/internal/codepipeline"
	"github.com/haasonsaas/interviewd/internal/designpipeline"
	"github.com/haasonsaas/interviewd/internal/interview"
	"github.com/haasonsaas/interviewd/internal/llmprovider"
	"github.com/haasonsaas/interviewd/internal/transport"
)

// SessionRuntime bundles the per-connection collaborators a transport layer
// drives: the orchestrator Session plus the two debounce pipelines that feed
// it, and the transport itself.
type SessionRuntime struct {
	Session   *interview.Session
	Code      *codepipeline.Pipeline
	Design    *designpipeline.Pipeline
	LLM       *llmprovider.Context
	Transport transport.Transport
}

// NewSessionRuntime builds one interview session's full collaborator graph:
// InterviewContext, LLM context aggregator, context switch processor, gate,
// closure handler, event/transcript buses, completion workflow, and the code
// and design debounce pipelines, all wired per the pipeline stage ordering
// Session documents.
func (c *Container) NewSessionRuntime(
	mockInterviewID, userID, sessionID, interviewPlannerID string,
	planners []interview.PlannerField,
	systemPrompt string,
	output llmprovider.OutputSink,
	tr transport.Transport,
) (*SessionRuntime, error) {
	ictx, err := interview.NewInterviewContext(mockInterviewID, userID, sessionID, interviewPlannerID, planners)
	if err != nil {
		return nil, fmt.Errorf("container: building interview context: %w", err)
	}

	llmCtx := llmprovider.NewContext(c.LLM, c.Config.LLM.Model, systemPrompt, output, c.Logger)

	contextSwitch := interview.NewContextSwitchProcessor(llmCtx)
	gate := interview.NewGate()

	closure := interview.NewClosureHandler(func(req interview.LLMAppendRequest) {
		if req.Role == "system" {
			llmCtx.InjectSystemMessage(req.Content)
			return
		}
		llmCtx.AppendUserMessage(req.Content)
	})

	events := interview.NewEventBus().WithMetrics(c.Metrics)
	transcriptBus := interview.NewTranscriptEventBus(c.Logger)
	transcriptBus.Subscribe(interview.TopicTranscriptCreated, func(event interview.TranscriptEvent) {
		if persistErr := c.Store.AppendTranscript(context.Background(), event); persistErr != nil {
			c.Logger.Error("container: failed to persist transcript event", "session_id", sessionID, "error", persistErr)
		}
	})
	completion := interview.NewCompletionWorkflow(c.Store, c.Queue, c.Logger).WithMetrics(c.Metrics)

	session := interview.NewSession(ictx, contextSwitch, gate, closure, events, transcriptBus, completion, c.Logger).
		WithMetrics(c.Metrics)

	quietWindow := time.Duration(c.Config.Debounce.QuietSeconds) * time.Second

	code := codepipeline.New(c.Store, llmCtx, c.Logger, quietWindow).WithMetrics(c.Metrics)
	design := designpipeline.New(c.Store, llmCtx, c.Logger, quietWindow).WithMetrics(c.Metrics)

	return &SessionRuntime{
		Session:   session,
		Code:      code,
		Design:    design,
		LLM:       llmCtx,
		Transport: tr,
	}, nil
}

// Stop tears down the pipelines' debounce timers. The Session itself has no
// background goroutines beyond the phase timer, which Session.HandleDisconnect
// stops.
func (r *SessionRuntime) Stop() {
	r.Code.Stop()
	r.Design.Stop()
}

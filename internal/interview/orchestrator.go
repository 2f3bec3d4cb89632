package interview

import (
	"context"
	"log/slog"
	"sync"
)

// TranscriptSide identifies which side of the conversation a tap observes.
type TranscriptSide string

const (
	SideCandidate   TranscriptSide = "candidate"
	SideInterviewer TranscriptSide = "interviewer"
)

// closureTriggerMessage is the synthetic user turn finalize pushes through
// the Closure Handler to drive the model's final utterance.
const closureTriggerMessage = "The interview has concluded. Wrap up with the candidate now."

// SessionMetrics is the observability hook for session lifecycle and phase
// transitions. Optional: a nil SessionMetrics on Session disables recording.
type SessionMetrics interface {
	SessionStarted()
	SessionEnded()
	PhaseTransitioned()
}

// Session wires the Interview Context, Phase Timer, Context Switch
// Processor, Gate, Closure Handler, Event Bus, and Transcript Event Bus into
// a single per-connection runtime, and owns the completion lifecycle.
//
// The pipeline stage ordering this type enforces (transport-in -> STT ->
// Context Switch -> Gate -> code processor -> design processor -> transcript
// tap -> LLM context aggregator -> Closure Handler -> LLM -> TTS ->
// transport-out -> transcript tap) lives in the caller that owns the actual
// transport/STT/TTS stages; Session exposes the hooks those stages call.
type Session struct {
	ctx *InterviewContext

	timer          *PhaseTimer
	contextSwitch  *ContextSwitchProcessor
	gate           *Gate
	closureHandler *ClosureHandler
	events         *EventBus
	transcriptBus  *TranscriptEventBus
	completion     *CompletionWorkflow
	metrics        SessionMetrics

	logger *slog.Logger

	transitionMu sync.Mutex
	wrapUpSent   bool
	finalizeOnce sync.Once
}

// NewSession builds a session runtime around an already-constructed
// InterviewContext and its collaborators.
func NewSession(
	ictx *InterviewContext,
	contextSwitch *ContextSwitchProcessor,
	gate *Gate,
	closureHandler *ClosureHandler,
	events *EventBus,
	transcriptBus *TranscriptEventBus,
	completion *CompletionWorkflow,
	logger *slog.Logger,
) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		ctx:            ictx,
		contextSwitch:  contextSwitch,
		gate:           gate,
		closureHandler: closureHandler,
		events:         events,
		transcriptBus:  transcriptBus,
		completion:     completion,
		logger:         logger,
	}
	s.timer = NewPhaseTimer(s.handleTimerSignal, logger)
	return s
}

// WithMetrics attaches an observability hook, replacing any previous one.
func (s *Session) WithMetrics(metrics SessionMetrics) *Session {
	s.metrics = metrics
	return s
}

// Context returns the session's InterviewContext.
func (s *Session) Context() *InterviewContext { return s.ctx }

// Gate returns the session's Gate.
func (s *Session) Gate() *Gate { return s.gate }

// Events returns the session's SSE event bus.
func (s *Session) Events() *EventBus { return s.events }

// Transcript returns the session's transcript event bus.
func (s *Session) Transcript() *TranscriptEventBus { return s.transcriptBus }

// Start brings the session up: starts the timer for phase 0 and emits its
// phase-started SSE event. Callers are responsible for constructing and
// composing the actual STT/LLM/TTS/transport pipeline stages beforehand.
func (s *Session) Start(ctx context.Context) {
	planner, ok := s.ctx.CurrentPlanner()
	if !ok {
		s.logger.Error("session start: no phase 0 planner", "session_id", s.ctx.SessionID)
		return
	}
	s.transcriptBus.Publish(TopicSessionStarted, TranscriptEvent{
		CandidateInterviewID: s.ctx.CandidateInterviewID,
		SessionID:            s.ctx.SessionID,
	})
	s.timer.Start(planner)
	s.events.Publish(SSEEvent{EventType: EventInterview, Data: TaskEventFromPlanner(planner)})
	if s.metrics != nil {
		s.metrics.SessionStarted()
	}
}

// handleTimerSignal reacts to Phase Timer events: nudges forward to the
// Context Switch Processor, and expiry triggers the transition-or-finalize
// decision under the transition lock.
func (s *Session) handleTimerSignal(ev TimerEvent) {
	switch ev.Signal {
	case SignalTimeNudge:
		s.contextSwitch.InjectTimeNudge(ev.Status.ProgressPct, ev.Final)
	case SignalTimerExpired:
		s.onTimerExpired(context.Background())
	}
}

// onTimerExpired is invoked once per phase, from the timer goroutine, when a
// countdown reaches zero. Per the spec the timer never transitions phases
// itself; this method is the orchestrator's explicit reaction to that signal,
// serialized the same way an external transition request would be.
func (s *Session) onTimerExpired(ctx context.Context) {
	s.RequestTransition(ctx)
}

// RequestTransition advances to the next phase if one exists, or finalizes
// the session if the current phase was the last one. Both timer-driven
// expiry and any explicit external transition request funnel through this
// method, which serializes on the per-session transition lock to prevent a
// double-advance if both fire nearly simultaneously.
func (s *Session) RequestTransition(ctx context.Context) {
	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	current := s.ctx.CurrentSequence()
	next, hasNext := s.ctx.NextPlanner()
	if !hasNext {
		s.finalize(ctx)
		return
	}

	s.timer.Stop()
	s.ctx.Advance()
	s.contextSwitch.InjectPlannerInstructions(next)
	s.timer.Start(next)

	s.events.Publish(SSEEvent{EventType: EventInterview, Data: TaskEventFromPlanner(next)})
	if s.metrics != nil {
		s.metrics.PhaseTransitioned()
	}

	if s.ctx.IsLastPlanner(next.Sequence) {
		s.sendWrapUp()
	}

	s.logger.Info("phase transition", "from_sequence", current, "to_sequence", next.Sequence)
}

// sendWrapUp emits the single SYSTEM/WRAP_UP SSE event, idempotently.
func (s *Session) sendWrapUp() {
	if s.wrapUpSent {
		return
	}
	s.wrapUpSent = true
	s.events.Publish(SSEEvent{EventType: EventSystem, Data: WrapUpTaskEvent()})
}

// finalize runs exactly once: injects closure context, seals the gate,
// drives the final utterance through the Closure Handler, drives the
// completion workflow, and sends the fallback wrap-up SSE event if entry
// into the last phase never did.
func (s *Session) finalize(ctx context.Context) {
	s.finalizeOnce.Do(func() {
		s.timer.Stop()
		durationSec := int(s.ctx.SessionDuration().Seconds())
		s.contextSwitch.InjectInterviewClosure(durationSec)
		s.gate.Seal()

		// HandleClosure is a direct call, not routed through Gate.Allow, so
		// the closure frame survives the seal above: closure frames are
		// system-class and exempt from the gate by construction.
		s.closureHandler.HandleClosure(ClosureFrame{
			Message:          closureTriggerMessage,
			SessionDuration:  s.ctx.SessionDuration(),
			CompletionReason: ReasonTimerExpired,
		})

		if s.metrics != nil {
			s.metrics.SessionEnded()
		}

		if s.ctx.CandidateInterviewID != "" && s.completion != nil {
			result := s.completion.Complete(ctx, s.ctx.CandidateInterviewID, ReasonTimerExpired)
			if !result.Success {
				s.logger.Warn("interview finalized with incomplete completion workflow",
					"candidate_interview_id", s.ctx.CandidateInterviewID, "errors", result.Errors)
			}
		}

		if !s.wrapUpSent {
			s.logger.Warn("wrap-up SSE was not sent during transition; sending fallback at finalization")
			s.sendWrapUp()
		}
	})
}

// HandleDisconnect stops the timer, publishes session_ended, and does NOT
// mark the interview complete: only timer-driven finalization marks
// completion, preserving the distinction between "candidate dropped" and
// "interview finished".
func (s *Session) HandleDisconnect() {
	s.timer.Stop()
	s.transcriptBus.Publish(TopicSessionEnded, TranscriptEvent{
		CandidateInterviewID: s.ctx.CandidateInterviewID,
		SessionID:            s.ctx.SessionID,
	})
	// A sealed gate means finalize already recorded the session's end.
	if s.metrics != nil && !s.gate.Sealed() {
		s.metrics.SessionEnded()
	}
}

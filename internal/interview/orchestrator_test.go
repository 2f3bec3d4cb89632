package interview

import (
	"context"
	"testing"
)

func newTestSession(t *testing.T, completion *CompletionWorkflow) (*Session, *InterviewContext, *recordingSink) {
	t.Helper()

	ictx, err := NewInterviewContext("m1", "u1", "s1", "p1", []PlannerField{
		{Sequence: 0, DurationMinutes: 10, QuestionID: "Q1", ToolNames: []ToolName{ToolCodeEditor}},
		{Sequence: 1, DurationMinutes: 10, QuestionID: "Q2", ToolNames: []ToolName{ToolDesignEditor}},
	})
	if err != nil {
		t.Fatalf("unexpected error building context: %v", err)
	}
	ictx.SetCandidateInterviewID("ci-1")

	sink := &recordingSink{}
	contextSwitch := NewContextSwitchProcessor(sink)
	gate := NewGate()
	events := NewEventBus()
	transcriptBus := NewTranscriptEventBus(nil)

	closureHandler := NewClosureHandler(func(LLMAppendRequest) {})

	session := NewSession(ictx, contextSwitch, gate, closureHandler, events, transcriptBus, completion, nil)
	return session, ictx, sink
}

func TestSessionStartPublishesPhaseZeroEvent(t *testing.T) {
	session, _, _ := newTestSession(t, nil)

	var started []TranscriptEvent
	session.Transcript().Subscribe(TopicSessionStarted, func(ev TranscriptEvent) {
		started = append(started, ev)
	})

	ch := session.Events().Subscribe("listener")
	session.Start(context.Background())

	if len(started) != 1 {
		t.Fatalf("expected one session_started publish, got %d", len(started))
	}

	select {
	case ev := <-ch:
		if ev.Data.TaskProperties.QuestionID != "Q1" {
			t.Errorf("expected the phase-0 task event, got %+v", ev.Data)
		}
	default:
		t.Fatal("expected an SSE event on Start")
	}

	session.timer.Stop()
}

func TestSessionRequestTransitionAdvancesAndSendsWrapUp(t *testing.T) {
	session, ictx, sink := newTestSession(t, nil)
	ch := session.Events().Subscribe("listener")
	session.Start(context.Background())
	<-ch // drain the phase-0 event

	session.RequestTransition(context.Background())

	if ictx.CurrentSequence() != 1 {
		t.Fatalf("expected cursor to advance to sequence 1, got %d", ictx.CurrentSequence())
	}
	if !session.wrapUpSent {
		t.Error("expected entry into the last phase to send the wrap-up event")
	}
	if sink.last() == "" {
		t.Error("expected phase transition to inject planner instructions")
	}

	var gotPhase, gotWrapUp bool
	for i := 0; i < 2; i++ {
		select {
		case ev := <-ch:
			if ev.EventType == EventInterview {
				gotPhase = true
			}
			if ev.EventType == EventSystem {
				gotWrapUp = true
			}
		default:
		}
	}
	if !gotPhase || !gotWrapUp {
		t.Errorf("expected both a phase transition event and a wrap-up event, got phase=%v wrapup=%v", gotPhase, gotWrapUp)
	}

	session.timer.Stop()
}

func TestSessionRequestTransitionFinalizesOnLastPhase(t *testing.T) {
	store := &fakeCompletionStore{interview: &CandidateInterview{ID: "ci-1", Status: StatusInProgress}}
	notifier := &fakeCompletionNotifier{messageID: "msg-1"}
	completion := NewCompletionWorkflow(store, notifier, nil)

	session, ictx, _ := newTestSession(t, completion)
	ch := session.Events().Subscribe("listener")
	session.Start(context.Background())
	<-ch

	session.RequestTransition(context.Background()) // advance to phase 1 (last), sends wrap-up
	<-ch                                             // phase transition event
	<-ch                                             // wrap-up event

	session.RequestTransition(context.Background()) // no next phase: finalize

	if ictx.CurrentSequence() != 1 {
		t.Fatalf("expected cursor to remain at the last phase, got %d", ictx.CurrentSequence())
	}
	if !session.Gate().Sealed() {
		t.Error("expected finalize to seal the gate")
	}
	if store.updateCall != StatusCompleted {
		t.Errorf("expected the completion workflow to mark the interview COMPLETED, got %q", store.updateCall)
	}
}

func TestSessionFinalizeSendsFallbackWrapUpIfNeverSent(t *testing.T) {
	ictx, err := NewInterviewContext("m1", "u1", "s1", "p1", []PlannerField{
		{Sequence: 0, DurationMinutes: 10, QuestionID: "Q1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink := &recordingSink{}
	contextSwitch := NewContextSwitchProcessor(sink)
	gate := NewGate()
	events := NewEventBus()
	transcriptBus := NewTranscriptEventBus(nil)
	closureHandler := NewClosureHandler(func(LLMAppendRequest) {})

	session := NewSession(ictx, contextSwitch, gate, closureHandler, events, transcriptBus, nil, nil)
	ch := events.Subscribe("listener")
	session.Start(context.Background())
	<-ch

	session.RequestTransition(context.Background()) // only phase: finalizes immediately

	if !session.wrapUpSent {
		t.Error("expected finalize to send a fallback wrap-up event")
	}
	if !gate.Sealed() {
		t.Error("expected finalize to seal the gate")
	}

	select {
	case ev := <-ch:
		if ev.EventType != EventSystem {
			t.Errorf("expected the fallback wrap-up to be a system event, got %v", ev.EventType)
		}
	default:
		t.Fatal("expected a wrap-up SSE event from finalize")
	}
}

func TestSessionFinalizeRunsOnlyOnce(t *testing.T) {
	store := &fakeCompletionStore{interview: &CandidateInterview{ID: "ci-1", Status: StatusInProgress}}
	notifier := &fakeCompletionNotifier{messageID: "msg-1"}
	completion := NewCompletionWorkflow(store, notifier, nil)

	session, _, _ := newTestSession(t, completion)
	ch := session.Events().Subscribe("listener")
	session.Start(context.Background())
	<-ch
	session.RequestTransition(context.Background())
	<-ch
	<-ch

	session.RequestTransition(context.Background())
	session.RequestTransition(context.Background())

	if store.updateCall != StatusCompleted {
		t.Fatal("expected completion workflow to have run")
	}
}

func TestSessionFinalizeInvokesClosureHandler(t *testing.T) {
	ictx, err := NewInterviewContext("m1", "u1", "s1", "p1", []PlannerField{
		{Sequence: 0, DurationMinutes: 10, QuestionID: "Q1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink := &recordingSink{}
	contextSwitch := NewContextSwitchProcessor(sink)
	gate := NewGate()
	events := NewEventBus()
	transcriptBus := NewTranscriptEventBus(nil)

	var pushed []LLMAppendRequest
	closureHandler := NewClosureHandler(func(req LLMAppendRequest) {
		pushed = append(pushed, req)
	})

	session := NewSession(ictx, contextSwitch, gate, closureHandler, events, transcriptBus, nil, nil)
	ch := events.Subscribe("listener")
	session.Start(context.Background())
	<-ch

	session.RequestTransition(context.Background()) // only phase: finalizes immediately

	if len(pushed) != 1 {
		t.Fatalf("expected finalize to drive exactly one closure append request, got %d", len(pushed))
	}
	if pushed[0].Role != "user" || !pushed[0].RunLLM {
		t.Errorf("expected a user-role RunLLM request, got %+v", pushed[0])
	}
	if !gate.Sealed() {
		t.Error("expected finalize to seal the gate")
	}
}

type recordingSessionMetrics struct {
	started     int
	ended       int
	transitions int
}

func (m *recordingSessionMetrics) SessionStarted()    { m.started++ }
func (m *recordingSessionMetrics) SessionEnded()      { m.ended++ }
func (m *recordingSessionMetrics) PhaseTransitioned() { m.transitions++ }

func TestSessionMetricsTrackLifecycleAndTransitions(t *testing.T) {
	session, _, _ := newTestSession(t, nil)
	metrics := &recordingSessionMetrics{}
	session.WithMetrics(metrics)

	ch := session.Events().Subscribe("listener")
	session.Start(context.Background())
	<-ch

	if metrics.started != 1 {
		t.Fatalf("expected SessionStarted to fire once, got %d", metrics.started)
	}

	session.RequestTransition(context.Background())
	<-ch
	<-ch

	if metrics.transitions != 1 {
		t.Fatalf("expected PhaseTransitioned to fire once, got %d", metrics.transitions)
	}

	session.HandleDisconnect()
	if metrics.ended != 1 {
		t.Fatalf("expected SessionEnded to fire once on disconnect, got %d", metrics.ended)
	}
}

func TestSessionHandleDisconnectDoesNotComplete(t *testing.T) {
	store := &fakeCompletionStore{interview: &CandidateInterview{ID: "ci-1", Status: StatusInProgress}}
	notifier := &fakeCompletionNotifier{messageID: "msg-1"}
	completion := NewCompletionWorkflow(store, notifier, nil)

	session, _, _ := newTestSession(t, completion)

	var ended []TranscriptEvent
	session.Transcript().Subscribe(TopicSessionEnded, func(ev TranscriptEvent) {
		ended = append(ended, ev)
	})

	session.Start(context.Background())
	session.HandleDisconnect()

	if len(ended) != 1 {
		t.Fatalf("expected one session_ended publish, got %d", len(ended))
	}
	if store.updateCall == StatusCompleted {
		t.Error("expected a disconnect to never mark the interview completed")
	}
	if session.Gate().Sealed() {
		t.Error("expected a disconnect to not seal the gate")
	}
}

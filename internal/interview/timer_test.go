package interview

import (
	"sync"
	"testing"
)

type signalRecorder struct {
	mu     sync.Mutex
	events []TimerEvent
}

func (r *signalRecorder) record(ev TimerEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *signalRecorder) last() (TimerEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return TimerEvent{}, false
	}
	return r.events[len(r.events)-1], true
}

func (r *signalRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestPhaseTimerStatusBeforeStart(t *testing.T) {
	timer := NewPhaseTimer(nil, nil)
	status := timer.Status()

	if status.Running {
		t.Error("expected a fresh timer to not be running")
	}
	if status.RemainingSeconds != 0 {
		t.Errorf("expected 0 remaining seconds before start, got %d", status.RemainingSeconds)
	}
}

func TestPhaseTimerStartEmitsStartedSignal(t *testing.T) {
	rec := &signalRecorder{}
	timer := NewPhaseTimer(rec.record, nil)

	timer.Start(PlannerField{Sequence: 2, DurationMinutes: 15})

	ev := timer.Status()
	if !ev.Running {
		t.Fatal("expected timer to be running after Start")
	}
	if ev.Sequence != 2 {
		t.Errorf("expected sequence 2, got %d", ev.Sequence)
	}
	if ev.RemainingSeconds != 15*60 {
		t.Errorf("expected 900 remaining seconds, got %d", ev.RemainingSeconds)
	}

	last, ok := rec.last()
	if !ok {
		t.Fatal("expected at least one emitted event")
	}
	if last.Signal != SignalTimerStarted {
		t.Errorf("expected SignalTimerStarted, got %v", last.Signal)
	}

	timer.Stop()
}

func TestPhaseTimerStopIsIdempotentAndOnlyEmitsWhenRunning(t *testing.T) {
	rec := &signalRecorder{}
	timer := NewPhaseTimer(rec.record, nil)

	timer.Stop()
	if rec.count() != 0 {
		t.Fatalf("expected no signal from stopping an idle timer, got %d", rec.count())
	}

	timer.Start(PlannerField{Sequence: 0, DurationMinutes: 5})
	timer.Stop()
	timer.Stop()

	status := timer.Status()
	if status.Running {
		t.Error("expected timer to be stopped")
	}

	last, ok := rec.last()
	if !ok || last.Signal != SignalTimerStopped {
		t.Fatalf("expected the last signal to be SignalTimerStopped, got %+v ok=%v", last, ok)
	}
}

func TestPhaseTimerPauseResumeOnlyAffectRunningTimer(t *testing.T) {
	timer := NewPhaseTimer(nil, nil)

	timer.Pause()
	if timer.Status().Paused {
		t.Error("expected Pause on an idle timer to be a no-op")
	}

	timer.Start(PlannerField{Sequence: 0, DurationMinutes: 5})
	timer.Pause()
	if !timer.Status().Paused {
		t.Error("expected Pause to take effect while running")
	}

	timer.Resume()
	if timer.Status().Paused {
		t.Error("expected Resume to clear the paused flag")
	}

	timer.Stop()
}

func TestPhaseTimerStartResetsPriorState(t *testing.T) {
	rec := &signalRecorder{}
	timer := NewPhaseTimer(rec.record, nil)

	timer.Start(PlannerField{Sequence: 0, DurationMinutes: 5})
	timer.Pause()
	timer.Start(PlannerField{Sequence: 1, DurationMinutes: 10})

	status := timer.Status()
	if status.Paused {
		t.Error("expected a fresh Start to clear the paused flag")
	}
	if status.Sequence != 1 {
		t.Errorf("expected sequence to reset to the new planner, got %d", status.Sequence)
	}
	if status.RemainingSeconds != 10*60 {
		t.Errorf("expected remaining seconds to reset to the new duration, got %d", status.RemainingSeconds)
	}

	timer.Stop()
}

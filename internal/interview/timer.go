package interview

import (
	"log/slog"
	"sync"
	"time"
)

// TimerSignal is one event emitted by the Phase Timer to its owner.
type TimerSignal string

const (
	SignalTimerStarted TimerSignal = "timer_started"
	SignalStatusTick    TimerSignal = "status_tick"
	SignalTimeNudge     TimerSignal = "time_nudge"
	SignalTimerExpired  TimerSignal = "timer_expired"
	SignalTimerStopped  TimerSignal = "timer_stopped"
)

// TimerEvent carries a signal plus the status snapshot at the moment it fired.
type TimerEvent struct {
	Signal TimerSignal
	Status TimerStatus
	Final  bool
}

// TimerStatus is a snapshot of the timer's countdown state.
type TimerStatus struct {
	Running        bool
	Paused         bool
	ElapsedSeconds int
	RemainingSeconds int
	ProgressPct    float64
	Sequence       int
}

const nudgeThresholdPct = 80.0

// monitorTick is how often the timer emits a status_tick while running.
const monitorTick = 10 * time.Second

// PhaseTimer drives a single per-session countdown. At most one countdown is
// ever active; Start resets and replaces whatever was running before. The
// timer never advances phases itself — expiry only emits signals.
type PhaseTimer struct {
	onSignal func(TimerEvent)
	logger   *slog.Logger

	mu sync.Mutex

	running     bool
	paused      bool
	sequence    int
	totalSec    int
	elapsedSec  int
	nudgeSent   bool
	stopCh      chan struct{}
	generation  uint64
}

// NewPhaseTimer builds a timer that reports signals to onSignal. Unlike the
// source implementation (which stores a weak reference to a bot instance and
// calls back into it), the event sink is supplied directly at construction.
func NewPhaseTimer(onSignal func(TimerEvent), logger *slog.Logger) *PhaseTimer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhaseTimer{onSignal: onSignal, logger: logger}
}

// Start begins counting down planner.DurationMinutes, resetting any prior
// state and nudge flag. Any previously running countdown is stopped first.
func (t *PhaseTimer) Start(planner PlannerField) {
	t.mu.Lock()
	t.stopLocked()
	t.generation++
	gen := t.generation
	t.running = true
	t.paused = false
	t.sequence = planner.Sequence
	t.totalSec = planner.DurationMinutes * 60
	t.elapsedSec = 0
	t.nudgeSent = false
	stopCh := make(chan struct{})
	t.stopCh = stopCh
	status := t.statusLocked()
	t.mu.Unlock()

	t.emit(TimerEvent{Signal: SignalTimerStarted, Status: status})

	go t.runTicker(gen, stopCh)
}

// Stop cancels the countdown. Idempotent.
func (t *PhaseTimer) Stop() {
	t.mu.Lock()
	wasRunning := t.running
	t.stopLocked()
	status := t.statusLocked()
	t.mu.Unlock()
	if wasRunning {
		t.emit(TimerEvent{Signal: SignalTimerStopped, Status: status})
	}
}

func (t *PhaseTimer) stopLocked() {
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
	t.running = false
	t.paused = false
}

// Pause freezes elapsed-time accumulation.
func (t *PhaseTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.paused = true
	}
}

// Resume unfreezes elapsed-time accumulation.
func (t *PhaseTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.paused = false
	}
}

// Status returns a snapshot of the current countdown state.
func (t *PhaseTimer) Status() TimerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked()
}

func (t *PhaseTimer) statusLocked() TimerStatus {
	remaining := t.totalSec - t.elapsedSec
	if remaining < 0 {
		remaining = 0
	}
	progress := 0.0
	if t.totalSec > 0 {
		progress = 100.0 * float64(t.elapsedSec) / float64(t.totalSec)
		if progress > 100 {
			progress = 100
		}
	}
	return TimerStatus{
		Running:          t.running,
		Paused:           t.paused,
		ElapsedSeconds:   t.elapsedSec,
		RemainingSeconds: remaining,
		ProgressPct:      progress,
		Sequence:         t.sequence,
	}
}

func (t *PhaseTimer) emit(ev TimerEvent) {
	if t.onSignal != nil {
		t.onSignal(ev)
	}
}

// runTicker is the one-second countdown loop. It also drives the ~10s status
// tick and the 80%-progress nudge from the same loop rather than a second
// goroutine, since both only need the elapsed counter this loop owns.
func (t *PhaseTimer) runTicker(gen uint64, stopCh chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	sinceTick := 0

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.generation != gen || !t.running {
				t.mu.Unlock()
				return
			}
			if !t.paused {
				t.elapsedSec++
			}
			sinceTick++
			status := t.statusLocked()
			expired := t.elapsedSec >= t.totalSec
			shouldNudge := !t.nudgeSent && !expired && status.ProgressPct >= nudgeThresholdPct
			if shouldNudge {
				t.nudgeSent = true
			}
			emitTick := sinceTick*int(time.Second) >= int(monitorTick)
			if emitTick {
				sinceTick = 0
			}
			if expired {
				t.running = false
				t.stopCh = nil
			}
			t.mu.Unlock()

			switch {
			case shouldNudge:
				t.emit(TimerEvent{Signal: SignalTimeNudge, Status: status})
			case emitTick && !expired:
				t.emit(TimerEvent{Signal: SignalStatusTick, Status: status})
			}

			if expired {
				// The final nudge always fires at expiry, regardless of
				// whether the 80% nudge already fired for this phase.
				t.emit(TimerEvent{Signal: SignalTimeNudge, Status: status, Final: true})
				t.logger.Info("phase timer expired", "sequence", status.Sequence)
				t.emit(TimerEvent{Signal: SignalTimerExpired, Status: status, Final: true})
				return
			}
		}
	}
}

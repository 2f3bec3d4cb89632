package interview

import (
	"context"
	"errors"
	"testing"
)

type fakeCompletionStore struct {
	interview  *CandidateInterview
	getErr     error
	updateErr  error
	updateCall CandidateInterviewStatus
}

func (s *fakeCompletionStore) GetCandidateInterview(ctx context.Context, id string) (*CandidateInterview, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.interview, nil
}

func (s *fakeCompletionStore) UpdateCandidateInterviewStatus(ctx context.Context, id string, status CandidateInterviewStatus) error {
	s.updateCall = status
	return s.updateErr
}

type fakeCompletionNotifier struct {
	messageID string
	err       error
}

func (n *fakeCompletionNotifier) NotifyCompletion(ctx context.Context, candidateInterviewID string) (string, error) {
	return n.messageID, n.err
}

type fakeCompletionMetrics struct {
	outcomes []string
}

func (m *fakeCompletionMetrics) RecordCompletionOutcome(outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func TestCompletionWorkflowSuccess(t *testing.T) {
	store := &fakeCompletionStore{interview: &CandidateInterview{ID: "ci-1", Status: StatusInProgress}}
	notifier := &fakeCompletionNotifier{messageID: "msg-1"}
	metrics := &fakeCompletionMetrics{}
	w := NewCompletionWorkflow(store, notifier, nil).WithMetrics(metrics)

	result := w.Complete(context.Background(), "ci-1", ReasonTimerExpired)

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if !result.NotificationSent || !result.DatabaseUpdated {
		t.Errorf("expected both notification and database update to succeed, got %+v", result)
	}
	if result.MessageID != "msg-1" {
		t.Errorf("expected message id msg-1, got %q", result.MessageID)
	}
	if store.updateCall != StatusCompleted {
		t.Errorf("expected status update to COMPLETED, got %q", store.updateCall)
	}
	if len(metrics.outcomes) != 1 || metrics.outcomes[0] != "success" {
		t.Errorf("expected a single success metric, got %v", metrics.outcomes)
	}
}

func TestCompletionWorkflowInterviewNotFound(t *testing.T) {
	store := &fakeCompletionStore{getErr: errors.New("no rows")}
	w := NewCompletionWorkflow(store, &fakeCompletionNotifier{}, nil)

	result := w.Complete(context.Background(), "ci-1", ReasonTimerExpired)

	if result.Success {
		t.Error("expected failure when the interview cannot be loaded")
	}
	if len(result.Errors) == 0 {
		t.Error("expected at least one recorded error")
	}
}

func TestCompletionWorkflowAlreadyCompletedIsIdempotent(t *testing.T) {
	store := &fakeCompletionStore{interview: &CandidateInterview{ID: "ci-1", Status: StatusCompleted}}
	notifier := &fakeCompletionNotifier{}
	w := NewCompletionWorkflow(store, notifier, nil)

	result := w.Complete(context.Background(), "ci-1", ReasonTimerExpired)

	if !result.Success || !result.AlreadyCompleted {
		t.Fatalf("expected an idempotent success result, got %+v", result)
	}
	if result.NotificationSent {
		t.Error("expected no notification to be sent for an already-completed interview")
	}
}

func TestCompletionWorkflowSkipsDatabaseUpdateWhenNotificationFails(t *testing.T) {
	store := &fakeCompletionStore{interview: &CandidateInterview{ID: "ci-1", Status: StatusInProgress}}
	notifier := &fakeCompletionNotifier{err: errors.New("queue unavailable")}
	metrics := &fakeCompletionMetrics{}
	w := NewCompletionWorkflow(store, notifier, nil).WithMetrics(metrics)

	result := w.Complete(context.Background(), "ci-1", ReasonTimerExpired)

	if result.Success {
		t.Error("expected failure when notification fails")
	}
	if result.DatabaseUpdated {
		t.Error("expected the database update to be skipped entirely on notify failure")
	}
	if store.updateCall != "" {
		t.Errorf("expected UpdateCandidateInterviewStatus to never be called, got status %q", store.updateCall)
	}
	if len(metrics.outcomes) != 1 || metrics.outcomes[0] != "notify_failed" {
		t.Errorf("expected a notify_failed metric, got %v", metrics.outcomes)
	}
}

func TestCompletionWorkflowReportsCriticalFailureWhenDatabaseUpdateFails(t *testing.T) {
	store := &fakeCompletionStore{
		interview: &CandidateInterview{ID: "ci-1", Status: StatusInProgress},
		updateErr: errors.New("connection reset"),
	}
	notifier := &fakeCompletionNotifier{messageID: "msg-1"}
	metrics := &fakeCompletionMetrics{}
	w := NewCompletionWorkflow(store, notifier, nil).WithMetrics(metrics)

	result := w.Complete(context.Background(), "ci-1", ReasonTimerExpired)

	if result.Success {
		t.Error("expected failure when the database update fails")
	}
	if !result.NotificationSent {
		t.Error("expected the notification to still be recorded as sent")
	}
	if len(metrics.outcomes) != 1 || metrics.outcomes[0] != "db_update_failed" {
		t.Errorf("expected a db_update_failed metric, got %v", metrics.outcomes)
	}
}

func TestCompletionWorkflowWithoutMetricsDoesNotPanic(t *testing.T) {
	store := &fakeCompletionStore{interview: &CandidateInterview{ID: "ci-1", Status: StatusInProgress}}
	notifier := &fakeCompletionNotifier{messageID: "msg-1"}
	w := NewCompletionWorkflow(store, notifier, nil)

	result := w.Complete(context.Background(), "ci-1", ReasonTimerExpired)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

package interview

import (
	"context"
	"log/slog"
)

// CompletionNotifier sends the external completion notification (see the
// queue package for the concrete SQS adapter).
type CompletionNotifier interface {
	NotifyCompletion(ctx context.Context, candidateInterviewID string) (messageID string, err error)
}

// CompletionStore is the slice of persistence the completion workflow needs.
type CompletionStore interface {
	GetCandidateInterview(ctx context.Context, id string) (*CandidateInterview, error)
	UpdateCandidateInterviewStatus(ctx context.Context, id string, status CandidateInterviewStatus) error
}

// CompletionMetrics is the observability hook for workflow outcomes.
// Optional: a nil CompletionMetrics on CompletionWorkflow disables recording.
type CompletionMetrics interface {
	RecordCompletionOutcome(outcome string)
}

// CompletionResult reports the outcome of a completion workflow run so
// callers can reconcile partial success.
type CompletionResult struct {
	CandidateInterviewID string
	AlreadyCompleted     bool
	NotificationSent     bool
	MessageID            string
	DatabaseUpdated      bool
	Success              bool
	Errors               []string
}

// CompletionWorkflow validates a session, notifies the external queue, marks
// the row COMPLETED, and reports the outcome. Triggered exactly once per
// session; idempotent on re-entry.
type CompletionWorkflow struct {
	store    CompletionStore
	notifier CompletionNotifier
	logger   *slog.Logger
	metrics  CompletionMetrics
}

// NewCompletionWorkflow builds a workflow over store and notifier.
func NewCompletionWorkflow(store CompletionStore, notifier CompletionNotifier, logger *slog.Logger) *CompletionWorkflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionWorkflow{store: store, notifier: notifier, logger: logger}
}

// WithMetrics attaches an observability hook, replacing any previous one.
func (w *CompletionWorkflow) WithMetrics(metrics CompletionMetrics) *CompletionWorkflow {
	w.metrics = metrics
	return w
}

// Complete runs the completion state machine for candidateInterviewID.
//
// Unlike the originating implementation — which logs a warning and still
// proceeds to the database update when the notification fails — this
// workflow skips the database update entirely when the notification fails,
// so success continues to mean "both succeeded" without ever flipping the
// row to COMPLETED on a partial success.
func (w *CompletionWorkflow) Complete(ctx context.Context, candidateInterviewID string, reason CompletionReason) CompletionResult {
	result := CompletionResult{CandidateInterviewID: candidateInterviewID}

	interview, err := w.store.GetCandidateInterview(ctx, candidateInterviewID)
	if err != nil {
		w.logger.Error("completion workflow: interview not found", "candidate_interview_id", candidateInterviewID, "error", err)
		result.Errors = append(result.Errors, "interview not found")
		return result
	}

	if interview.IsCompleted() {
		w.logger.Warn("completion workflow: duplicate completion attempt", "candidate_interview_id", candidateInterviewID)
		result.AlreadyCompleted = true
		result.Success = true
		return result
	}

	messageID, notifyErr := w.notifier.NotifyCompletion(ctx, candidateInterviewID)
	if notifyErr != nil {
		w.logger.Warn("completion workflow: notification failed, skipping database update",
			"candidate_interview_id", candidateInterviewID, "error", notifyErr, "reason", string(reason))
		result.Errors = append(result.Errors, "notification failed: "+notifyErr.Error())
		result.Success = false
		if w.metrics != nil {
			w.metrics.RecordCompletionOutcome("notify_failed")
		}
		return result
	}
	result.NotificationSent = true
	result.MessageID = messageID

	if err := w.store.UpdateCandidateInterviewStatus(ctx, candidateInterviewID, StatusCompleted); err != nil {
		w.logger.Error("completion workflow: CRITICAL notification sent but database update failed",
			"candidate_interview_id", candidateInterviewID, "message_id", messageID, "error", err)
		result.Errors = append(result.Errors, "database update failed: "+err.Error())
		result.Success = false
		if w.metrics != nil {
			w.metrics.RecordCompletionOutcome("db_update_failed")
		}
		return result
	}
	result.DatabaseUpdated = true
	result.Success = result.NotificationSent && result.DatabaseUpdated

	w.logger.Info("completion workflow finished", "candidate_interview_id", candidateInterviewID, "success", result.Success)
	if w.metrics != nil {
		w.metrics.RecordCompletionOutcome("success")
	}
	return result
}

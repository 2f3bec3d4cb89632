// Package store defines the persistence surface the interview orchestrator
// depends on, plus a Postgres adapter, a pure-Go SQLite adapter, and an
// in-memory adapter for tests.
package store

import (
	"context"

	"github.com/haasonsaas/interviewd/internal/interview"
)

// Store is the full persistence surface: candidate interview lifecycle,
// planner field resolution, question solution upserts, and transcript
// append. The Completion Workflow only needs the narrower CompletionStore
// slice of this interface (see internal/interview.CompletionStore).
type Store interface {
	GetCandidateInterview(ctx context.Context, id string) (*interview.CandidateInterview, error)
	GetCandidateInterviewByMockAndUser(ctx context.Context, mockInterviewID, userID string) (*interview.CandidateInterview, error)
	UpdateCandidateInterviewStatus(ctx context.Context, id string, status interview.CandidateInterviewStatus) error

	GetPlannerFields(ctx context.Context, interviewPlannerID string) ([]interview.PlannerField, error)

	GetQuestionSolution(ctx context.Context, questionID, candidateInterviewID string) (*interview.QuestionSolution, error)
	UpsertQuestionSolution(ctx context.Context, sol interview.QuestionSolution) error

	AppendTranscript(ctx context.Context, event interview.TranscriptEvent) error

	Close() error
}

package store

import (
	"context"
	"sync"

	"github.com/haasonsaas/interviewd/internal/ierrors"
	"github.com/haasonsaas/interviewd/internal/interview"
)

// MemoryStore is an in-process Store implementation backed by maps, used by
// tests and when database.driver is "memory" (the default).
type MemoryStore struct {
	mu            sync.RWMutex
	interviews    map[string]*interview.CandidateInterview
	mockUserIndex map[string]string // mockInterviewID+"/"+userID -> candidate interview id
	plannerFields map[string][]interview.PlannerField
	solutions     map[string]*interview.QuestionSolution
	transcript    []interview.TranscriptEvent
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		interviews:    map[string]*interview.CandidateInterview{},
		mockUserIndex: map[string]string{},
		plannerFields: map[string][]interview.PlannerField{},
		solutions:     map[string]*interview.QuestionSolution{},
	}
}

// SeedCandidateInterview inserts a candidate interview row directly, for
// test setup.
func (m *MemoryStore) SeedCandidateInterview(ci interview.CandidateInterview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := ci
	m.interviews[ci.ID] = &c
}

// SeedPlannerFields attaches planner fields to an interview planner id, for
// test setup.
func (m *MemoryStore) SeedPlannerFields(interviewPlannerID string, fields []interview.PlannerField) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plannerFields[interviewPlannerID] = fields
}

// IndexMockUser registers the (mockInterviewID, userID) -> candidateInterviewID
// lookup used by GetCandidateInterviewByMockAndUser, for test setup.
func (m *MemoryStore) IndexMockUser(mockInterviewID, userID, candidateInterviewID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockUserIndex[mockInterviewID+"/"+userID] = candidateInterviewID
}

func (m *MemoryStore) GetCandidateInterview(ctx context.Context, id string) (*interview.CandidateInterview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ci, ok := m.interviews[id]
	if !ok {
		return nil, ierrors.NotFound("MemoryStore.GetCandidateInterview", ierrors.ErrNotFound)
	}
	cp := *ci
	return &cp, nil
}

func (m *MemoryStore) GetCandidateInterviewByMockAndUser(ctx context.Context, mockInterviewID, userID string) (*interview.CandidateInterview, error) {
	m.mu.RLock()
	id, ok := m.mockUserIndex[mockInterviewID+"/"+userID]
	m.mu.RUnlock()
	if !ok {
		return nil, ierrors.NotFound("MemoryStore.GetCandidateInterviewByMockAndUser", ierrors.ErrNotFound)
	}
	return m.GetCandidateInterview(ctx, id)
}

func (m *MemoryStore) UpdateCandidateInterviewStatus(ctx context.Context, id string, status interview.CandidateInterviewStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ci, ok := m.interviews[id]
	if !ok {
		return ierrors.NotFound("MemoryStore.UpdateCandidateInterviewStatus", ierrors.ErrNotFound)
	}
	ci.Status = status
	return nil
}

func (m *MemoryStore) GetPlannerFields(ctx context.Context, interviewPlannerID string) ([]interview.PlannerField, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fields, ok := m.plannerFields[interviewPlannerID]
	if !ok {
		return nil, ierrors.NotFound("MemoryStore.GetPlannerFields", ierrors.ErrNotFound)
	}
	out := make([]interview.PlannerField, len(fields))
	copy(out, fields)
	return out, nil
}

func (m *MemoryStore) GetQuestionSolution(ctx context.Context, questionID, candidateInterviewID string) (*interview.QuestionSolution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sol, ok := m.solutions[solutionKey(questionID, candidateInterviewID)]
	if !ok {
		return nil, nil
	}
	cp := *sol
	return &cp, nil
}

func (m *MemoryStore) UpsertQuestionSolution(ctx context.Context, sol interview.QuestionSolution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := sol
	m.solutions[solutionKey(sol.QuestionID, sol.CandidateInterviewID)] = &cp
	return nil
}

func (m *MemoryStore) AppendTranscript(ctx context.Context, event interview.TranscriptEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = append(m.transcript, event)
	return nil
}

// Transcript returns a copy of all appended transcript events, for tests.
func (m *MemoryStore) Transcript() []interview.TranscriptEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]interview.TranscriptEvent, len(m.transcript))
	copy(out, m.transcript)
	return out
}

func (m *MemoryStore) Close() error { return nil }

func solutionKey(questionID, candidateInterviewID string) string {
	return questionID + "/" + candidateInterviewID
}

package codepipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/haasonsaas/interviewd/internal/interview"
)

type fakeStore struct {
	mu        sync.Mutex
	solutions map[string]*interview.QuestionSolution
}

func newFakeStore() *fakeStore {
	return &fakeStore{solutions: map[string]*interview.QuestionSolution{}}
}

func (f *fakeStore) GetQuestionSolution(ctx context.Context, questionID, candidateInterviewID string) (*interview.QuestionSolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.solutions[questionID+"/"+candidateInterviewID], nil
}

func (f *fakeStore) UpsertQuestionSolution(ctx context.Context, sol interview.QuestionSolution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := sol
	f.solutions[sol.QuestionID+"/"+sol.CandidateInterviewID] = &s
	return nil
}

type fakeSink struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSink) AppendUserMessage(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, content)
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func TestPipeline_FiresOnceAfterQuietWindow(t *testing.T) {
	store := newFakeStore()
	sink := &fakeSink{}
	p := New(store, sink, nil, 40*time.Millisecond)

	ctx := context.Background()
	sub := Submission{QuestionID: "q1", CandidateInterviewID: "ci1", Content: "a = 1", Language: "python"}
	if err := p.Receive(ctx, sub); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	sub.Content = "a = 2"
	if err := p.Receive(ctx, sub); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if got := sink.count(); got != 1 {
		t.Errorf("expected exactly 1 prompt fired, got %d", got)
	}
}

func TestPipeline_QuickRejectSkipsUnchangedContent(t *testing.T) {
	store := newFakeStore()
	sink := &fakeSink{}
	p := New(store, sink, nil, 30*time.Millisecond)

	ctx := context.Background()
	sub := Submission{QuestionID: "q1", CandidateInterviewID: "ci1", Content: "same", Language: "go"}
	if err := p.Receive(ctx, sub); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := p.Receive(ctx, sub); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	if got := sink.count(); got != 1 {
		t.Errorf("expected exactly 1 prompt despite two identical submissions, got %d", got)
	}
}

func TestPipeline_PersistsSnapshot(t *testing.T) {
	store := newFakeStore()
	sink := &fakeSink{}
	p := New(store, sink, nil, 20*time.Millisecond)

	ctx := context.Background()
	sub := Submission{QuestionID: "q2", CandidateInterviewID: "ci2", Content: "func main() {}", Language: "go"}
	if err := p.Receive(ctx, sub); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	sol, err := store.GetQuestionSolution(ctx, "q2", "ci2")
	if err != nil {
		t.Fatalf("GetQuestionSolution: %v", err)
	}
	if sol == nil || sol.Answer != sub.Content {
		t.Errorf("expected persisted solution with content %q, got %+v", sub.Content, sol)
	}
	if sol.Type != interview.LangGo {
		t.Errorf("expected normalized language GO, got %q", sol.Type)
	}
}

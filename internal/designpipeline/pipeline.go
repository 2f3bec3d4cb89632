// Package designpipeline implements the debounced design-submission
// pipeline: Excalidraw-to-description/Mermaid conversion, change detection
// against both the last sent and last pending pair, persistence, and a
// debounced LLM prompt.
package designpipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/interviewd/internal/debounce"
	"github.com/haasonsaas/interviewd/internal/designconvert"
	"github.com/haasonsaas/interviewd/internal/interview"
)

// Store is the slice of persistence the design pipeline needs.
type Store interface {
	GetQuestionSolution(ctx context.Context, questionID, candidateInterviewID string) (*interview.QuestionSolution, error)
	UpsertQuestionSolution(ctx context.Context, sol interview.QuestionSolution) error
}

// PromptSink is the downstream LLM context stage a fired prompt is pushed
// into.
type PromptSink interface {
	AppendUserMessage(content string)
}

// Metrics is the observability hook for persistence failures. Optional: a
// nil Metrics on Pipeline disables recording.
type Metrics interface {
	RecordDebouncePersistError(pipeline string)
}

// Submission is one DesignContent client event: content is the raw
// Excalidraw scene JSON.
type Submission struct {
	QuestionID           string
	CandidateInterviewID string
	Content              string
	Timestamp            int64
}

// envelope is the JSON shape persisted for a design solution, matching the
// originating service's {original_design, description, mermaid, timestamp}.
type envelope struct {
	OriginalDesign json.RawMessage `json:"original_design"`
	Description    string          `json:"description"`
	Mermaid        string          `json:"mermaid"`
	Timestamp      int64           `json:"timestamp"`
}

type lastSeen struct {
	description string
	mermaid     string
}

type submissionJob struct {
	submission       Submission
	description      string
	mermaid          string
	isFirst          bool
	submissionNumber int
}

const defaultQuietWindow = 30 * time.Second

// Pipeline implements the design debounce pipeline.
type Pipeline struct {
	store   Store
	sink    PromptSink
	logger  *slog.Logger
	metrics Metrics

	mu        sync.Mutex
	cache     map[string]string   // key -> last seen raw content, for the quick-reject step
	submitted map[string]int      // key -> submission count
	sent      map[string]lastSeen // key -> last pair actually pushed to the LLM
	pending   map[string]lastSeen // key -> last pair scheduled but not yet fired

	debouncer *debounce.Debouncer[submissionJob]
}

// New builds a design pipeline. quietWindow <= 0 uses the 30s default.
func New(store Store, sink PromptSink, logger *slog.Logger, quietWindow time.Duration) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if quietWindow <= 0 {
		quietWindow = defaultQuietWindow
	}
	p := &Pipeline{
		store:     store,
		sink:      sink,
		logger:    logger,
		cache:     map[string]string{},
		submitted: map[string]int{},
		sent:      map[string]lastSeen{},
		pending:   map[string]lastSeen{},
	}
	p.debouncer = debounce.NewDebouncer[submissionJob](
		debounce.WithDebounceDuration[submissionJob](quietWindow),
		debounce.WithBuildKey[submissionJob](func(job *submissionJob) string {
			return cacheKey(job.submission.QuestionID, job.submission.CandidateInterviewID)
		}),
		debounce.WithOnFlush[submissionJob](func(jobs []*submissionJob) error {
			if len(jobs) == 0 {
				return nil
			}
			p.fire(jobs[len(jobs)-1])
			return nil
		}),
		debounce.WithOnError[submissionJob](func(err error, jobs []*submissionJob) {
			p.logger.Error("design pipeline flush failed", "error", err)
		}),
	)
	return p
}

// WithMetrics attaches an observability hook, replacing any previous one.
func (p *Pipeline) WithMetrics(metrics Metrics) *Pipeline {
	p.metrics = metrics
	return p
}

func cacheKey(questionID, candidateInterviewID string) string {
	return questionID + "/" + candidateInterviewID
}

// Receive processes one inbound DesignContent submission.
func (p *Pipeline) Receive(ctx context.Context, sub Submission) error {
	sub.Content = normalizeText(sub.Content)
	key := cacheKey(sub.QuestionID, sub.CandidateInterviewID)

	p.mu.Lock()
	if cached, ok := p.cache[key]; ok && cached == sub.Content {
		p.mu.Unlock()
		p.logger.Debug("design submission unchanged, skipping", "question_id", sub.QuestionID)
		return nil
	}
	p.mu.Unlock()

	result := designconvert.Convert(parseScene(sub.Content))

	existing, err := p.store.GetQuestionSolution(ctx, sub.QuestionID, sub.CandidateInterviewID)
	if err != nil {
		p.logger.Error("design pipeline: failed to read existing solution", "question_id", sub.QuestionID, "error", err)
	}
	isFirst := existing == nil

	p.mu.Lock()
	reference := p.sent[key]
	if pending, ok := p.pending[key]; ok {
		reference = pending
	}
	p.mu.Unlock()

	unchanged := !isFirst && reference.description == result.Description && reference.mermaid == result.Mermaid
	if unchanged {
		p.mu.Lock()
		p.cache[key] = sub.Content
		p.mu.Unlock()
		p.logger.Debug("no design changes detected against pending/sent pair", "question_id", sub.QuestionID)
		return nil
	}

	env := envelope{
		OriginalDesign: json.RawMessage(sub.Content),
		Description:    result.Description,
		Mermaid:        result.Mermaid,
		Timestamp:      sub.Timestamp,
	}
	payload, marshalErr := json.MarshalIndent(env, "", "  ")
	if marshalErr != nil {
		p.logger.Error("design pipeline: failed to marshal envelope", "question_id", sub.QuestionID, "error", marshalErr)
	} else if persistErr := p.store.UpsertQuestionSolution(ctx, interview.QuestionSolution{
		QuestionID:           sub.QuestionID,
		CandidateInterviewID: sub.CandidateInterviewID,
		Type:                 interview.LangDesign,
		Answer:               string(payload),
	}); persistErr != nil {
		p.logger.Error("design pipeline: failed to persist solution", "question_id", sub.QuestionID, "error", persistErr)
		if p.metrics != nil {
			p.metrics.RecordDebouncePersistError("design")
		}
	}

	p.mu.Lock()
	p.cache[key] = sub.Content
	p.submitted[key]++
	submissionNumber := p.submitted[key]
	p.pending[key] = lastSeen{description: result.Description, mermaid: result.Mermaid}
	p.mu.Unlock()

	job := &submissionJob{
		submission:       sub,
		description:      result.Description,
		mermaid:          result.Mermaid,
		isFirst:          isFirst,
		submissionNumber: submissionNumber,
	}
	p.debouncer.Enqueue(job)
	return nil
}

func parseScene(content string) designconvert.Scene {
	var scene designconvert.Scene
	if err := json.Unmarshal([]byte(content), &scene); err != nil {
		return designconvert.Scene{}
	}
	return scene
}

func (p *Pipeline) fire(job *submissionJob) {
	key := cacheKey(job.submission.QuestionID, job.submission.CandidateInterviewID)
	prompt := buildPrompt(job)

	p.logger.Info("design pipeline firing debounced prompt",
		"question_id", job.submission.QuestionID, "is_first_submission", job.isFirst, "submission_count", job.submissionNumber)
	p.sink.AppendUserMessage(prompt)

	p.mu.Lock()
	p.sent[key] = lastSeen{description: job.description, mermaid: job.mermaid}
	delete(p.pending, key)
	p.mu.Unlock()
}

func buildPrompt(job *submissionJob) string {
	var b strings.Builder
	if job.isFirst {
		fmt.Fprintf(&b, `CANDIDATE DESIGN SUBMISSION - INITIAL SOLUTION

The candidate has been sketching a system design and after a period of activity, here is their current diagram:

Question ID: %s
Submission Count: %d

Description:
%s

Mermaid Diagram:
`+"```mermaid\n%s\n```"+`

Instructions:
- This is the candidate's first design submission after a period of inactivity
- Assess the overall architecture and component relationships
- Only provide feedback if the design appears substantially complete or has critical issues
`, job.submission.QuestionID, job.submissionNumber, job.description, job.mermaid)
	} else {
		fmt.Fprintf(&b, `CANDIDATE DESIGN SUBMISSION - INCREMENTAL UPDATE

The candidate has continued refining their system design:

Question ID: %s
Submission Count: %d

Updated Description:
%s

Updated Mermaid Diagram:
`+"```mermaid\n%s\n```"+`

Instructions:
- This is an incremental update after a period of inactivity following previous changes
- Assess progress made toward a complete, coherent architecture
- Only intervene if there are critical issues that might derail progress
`, job.submission.QuestionID, job.submissionNumber, job.description, job.mermaid)
	}
	return strings.TrimSpace(b.String())
}

// Stop cancels all scheduled prompts.
func (p *Pipeline) Stop() {
	p.debouncer.Stop()
}

package codepipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/interviewd/internal/debounce"
	"github.com/haasonsaas/interviewd/internal/interview"
)

// Store is the slice of persistence the code pipeline needs: upserting the
// latest snapshot and reading back the previous one to diff against.
type Store interface {
	GetQuestionSolution(ctx context.Context, questionID, candidateInterviewID string) (*interview.QuestionSolution, error)
	UpsertQuestionSolution(ctx context.Context, sol interview.QuestionSolution) error
}

// PromptSink is the downstream LLM context stage a fired prompt is pushed
// into, as a user-role message with generation requested.
type PromptSink interface {
	AppendUserMessage(content string)
}

// Metrics is the observability hook for persistence failures. Optional: a
// nil Metrics on Pipeline disables recording.
type Metrics interface {
	RecordDebouncePersistError(pipeline string)
}

// Submission is one CodeContent client event.
type Submission struct {
	QuestionID           string
	CandidateInterviewID string
	Content              string
	Language             string
	Timestamp            int64
}

// submissionJob is the debounced unit: the submission plus the diff result
// computed synchronously at receive time, so the fired prompt reflects what
// was true when scheduling happened, not a stale recomputation.
type submissionJob struct {
	submission       Submission
	language         interview.CodeLanguage
	diff             string
	isFirst          bool
	submissionNumber int
}

const defaultQuietWindow = 30 * time.Second

// Pipeline implements the code debounce pipeline described for §4.4: receive,
// quick-reject, diff, persist, and schedule a debounced LLM prompt.
type Pipeline struct {
	store   Store
	sink    PromptSink
	logger  *slog.Logger
	metrics Metrics

	mu        sync.Mutex
	cache     map[string]string // "questionID/candidateInterviewID" -> last seen content
	submitted map[string]int    // same key -> submission count, for prompt text

	debouncer *debounce.Debouncer[submissionJob]
}

// New builds a code pipeline. quietWindow <= 0 uses the 30s default.
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
			p.logger.Error("code pipeline flush failed", "error", err)
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

// Receive processes one inbound CodeContent submission: quick-reject against
// the in-memory cache, diff against the persisted snapshot, persist, and
// schedule (or silently skip) a debounced LLM prompt.
//
// Persistence errors are logged and recorded through Metrics rather than
// returned to the caller, and the prompt is still scheduled: observability
// over strictness, per the spec.
func (p *Pipeline) Receive(ctx context.Context, sub Submission) error {
	sub.Content = normalizeText(sub.Content)
	key := cacheKey(sub.QuestionID, sub.CandidateInterviewID)
	lang := NormalizeLanguage(p.logger, sub.Language)

	p.mu.Lock()
	if cached, ok := p.cache[key]; ok && cached == sub.Content {
		p.mu.Unlock()
		p.logger.Debug("code submission unchanged, skipping", "question_id", sub.QuestionID)
		return nil
	}
	p.mu.Unlock()

	existing, err := p.store.GetQuestionSolution(ctx, sub.QuestionID, sub.CandidateInterviewID)
	if err != nil {
		p.logger.Error("code pipeline: failed to read existing solution", "question_id", sub.QuestionID, "error", err)
	}

	isFirst := existing == nil
	var diff string
	if !isFirst {
		if existing.Answer == sub.Content {
			p.mu.Lock()
			p.cache[key] = sub.Content
			p.mu.Unlock()
			p.logger.Debug("code submission unchanged against store", "question_id", sub.QuestionID)
			return nil
		}
		diff = generateDiff(existing.Answer, sub.Content, string(lang))
	}

	if persistErr := p.store.UpsertQuestionSolution(ctx, interview.QuestionSolution{
		QuestionID:           sub.QuestionID,
		CandidateInterviewID: sub.CandidateInterviewID,
		Type:                 lang,
		Answer:               sub.Content,
	}); persistErr != nil {
		p.logger.Error("code pipeline: failed to persist solution", "question_id", sub.QuestionID, "error", persistErr)
		if p.metrics != nil {
			p.metrics.RecordDebouncePersistError("code")
		}
	}

	p.mu.Lock()
	p.cache[key] = sub.Content
	p.submitted[key]++
	submissionNumber := p.submitted[key]
	p.mu.Unlock()

	job := &submissionJob{
		submission:       sub,
		language:         lang,
		diff:             diff,
		isFirst:          isFirst,
		submissionNumber: submissionNumber,
	}
	p.debouncer.Enqueue(job)
	return nil
}

// fire builds and pushes the LLM prompt for a debounce window that elapsed
// without further activity.
func (p *Pipeline) fire(job *submissionJob) {
	prompt := buildPrompt(job)
	p.logger.Info("code pipeline firing debounced prompt",
		"question_id", job.submission.QuestionID, "is_first_submission", job.isFirst, "submission_count", job.submissionNumber)
	p.sink.AppendUserMessage(prompt)
}

// buildPrompt renders the first-submission or incremental-update template,
// appending the completeness indicator checklist.
func buildPrompt(job *submissionJob) string {
	var b strings.Builder
	lang := job.language
	if job.isFirst {
		fmt.Fprintf(&b, `CANDIDATE CODE SUBMISSION - INITIAL SOLUTION

The candidate has been working on their solution and after a period of coding activity, here is their current progress:

Programming Language: %s
Question ID: %s
Submission Count: %d

Current Solution State:
`+"```%s\n%s\n```"+`

Context:
- This is the candidate's first code submission after a period of inactivity
- This solution may be incomplete, in development, or represent an initial approach
- The code is captured after a natural pause in coding activity

Instructions:
- Expect minor typos and syntax variations; this is a whiteboard-like editor
- Assess the overall direction and problem-solving strategy
- Only provide feedback if the solution appears substantially complete or has critical issues
- Allow natural development progression
`, lang, job.submission.QuestionID, job.submissionNumber, strings.ToLower(string(lang)), job.submission.Content)
	} else {
		fmt.Fprintf(&b, `CANDIDATE CODE SUBMISSION - INCREMENTAL UPDATE

The candidate has continued working on their solution with incremental changes:

Programming Language: %s
Question ID: %s
Submission Count: %d

Updated Solution State:
`+"```%s\n%s\n```"+`

Context:
- This is an incremental update after a period of inactivity following previous changes
- This represents their evolved thinking and approach since the last submission

Instructions:
- If the solution appears substantially complete, provide constructive feedback, ask thoughtful
  questions, and discuss edge cases or alternatives
- If still in active development, observe the iterative progress and only intervene on
  critical issues that might derail progress
`, lang, job.submission.QuestionID, job.submissionNumber, strings.ToLower(string(lang)), job.submission.Content)

		if job.diff != "" {
			b.WriteString("\nDiff since previous submission:\n```diff\n")
			b.WriteString(job.diff)
			b.WriteString("```\n")
		}
	}

	indicators := completenessIndicators(job.submission.Content, lang)
	b.WriteString("\nSolution Completeness Indicators:\n")
	for _, ind := range indicators {
		fmt.Fprintf(&b, "- %s\n", ind)
	}

	return strings.TrimSpace(b.String())
}

// Stop flushes no pending work and cancels all scheduled prompts.
func (p *Pipeline) Stop() {
	p.debouncer.Stop()
}

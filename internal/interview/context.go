package interview

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/interviewd/internal/ierrors"
)

// InterviewContext is the canonical per-session state: identifiers, the
// ordered phase list, the current phase cursor, and denormalized
// current-question/tool fields for quick access. It is owned exclusively by
// the Session Orchestrator; all mutation goes through its methods.
type InterviewContext struct {
	MockInterviewID      string
	UserID               string
	SessionID            string
	InterviewPlannerID   string
	CandidateInterviewID string

	StartedAt time.Time

	mu              sync.RWMutex
	planners        []PlannerField
	currentSequence int

	currentQuestionID    string
	currentQuestionText  string
	currentToolNames     []ToolName
	currentWorkflowStepID string
}

// NewInterviewContext builds a context from the four required identifiers and
// an unordered slice of planner fields, which are validated and sorted by
// sequence. Fails with an InvalidInput InterviewError if any identifier is
// empty or any planner field is invalid or has a duplicate sequence.
func NewInterviewContext(mockInterviewID, userID, sessionID, interviewPlannerID string, planners []PlannerField) (*InterviewContext, error) {
	for name, v := range map[string]string{
		"mock_interview_id":    mockInterviewID,
		"user_id":              userID,
		"session_id":           sessionID,
		"interview_planner_id": interviewPlannerID,
	} {
		if strings.TrimSpace(v) == "" {
			return nil, ierrors.Invalid("NewInterviewContext", fmt.Errorf("%s must not be empty", name))
		}
	}

	seen := map[int]bool{}
	sorted := make([]PlannerField, len(planners))
	copy(sorted, planners)
	for _, p := range sorted {
		if err := p.Validate(); err != nil {
			return nil, ierrors.Invalid("NewInterviewContext", err)
		}
		if seen[p.Sequence] {
			return nil, ierrors.Invalid("NewInterviewContext", fmt.Errorf("duplicate planner sequence %d", p.Sequence))
		}
		seen[p.Sequence] = true
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	ctx := &InterviewContext{
		MockInterviewID:    mockInterviewID,
		UserID:             userID,
		SessionID:          sessionID,
		InterviewPlannerID: interviewPlannerID,
		StartedAt:          time.Now(),
		planners:           sorted,
	}
	ctx.syncCurrentFromPlanner()
	return ctx, nil
}

// SetCandidateInterviewID attaches the durable interview id once it has been
// resolved, for contexts constructed before persistence lookup completes.
func (c *InterviewContext) SetCandidateInterviewID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CandidateInterviewID = id
}

// CurrentSequence returns the cursor into the phase list.
func (c *InterviewContext) CurrentSequence() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentSequence
}

// PlannerCount returns the total number of phases.
func (c *InterviewContext) PlannerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.planners)
}

// CurrentPlanner returns the phase addressed by the cursor, or false if the
// cursor has reached the terminal position (len(planners)).
func (c *InterviewContext) CurrentPlanner() (PlannerField, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.plannerAt(c.currentSequence)
}

// NextPlanner returns the phase one past the cursor, or false if the cursor
// is already on the last phase.
func (c *InterviewContext) NextPlanner() (PlannerField, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.plannerAt(c.currentSequence + 1)
}

// IsLastPlanner reports whether the given sequence addresses the final phase.
func (c *InterviewContext) IsLastPlanner(sequence int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.planners) == 0 {
		return false
	}
	return sequence == c.planners[len(c.planners)-1].Sequence
}

func (c *InterviewContext) plannerAt(sequence int) (PlannerField, bool) {
	for _, p := range c.planners {
		if p.Sequence == sequence {
			return p, true
		}
	}
	return PlannerField{}, false
}

// Advance moves the cursor to the next phase (cursor += 1). It performs no
// bounds checking: callers must first confirm a next planner exists (via
// NextPlanner) or intend to move the cursor to the terminal position.
func (c *InterviewContext) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentSequence++
	c.syncCurrentFromPlannerLocked()
}

func (c *InterviewContext) syncCurrentFromPlanner() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncCurrentFromPlannerLocked()
}

func (c *InterviewContext) syncCurrentFromPlannerLocked() {
	p, ok := c.plannerAt(c.currentSequence)
	if !ok {
		return
	}
	c.currentQuestionID = p.QuestionID
	c.currentQuestionText = p.QuestionText
	c.currentToolNames = p.ToolNames
}

// PopulateQuestionTexts hydrates QuestionText on every planner field from a
// catalogue lookup keyed by question id. One-time hydration call made by the
// orchestrator after loading planners from persistence.
func (c *InterviewContext) PopulateQuestionTexts(texts map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.planners {
		if t, ok := texts[c.planners[i].QuestionID]; ok {
			c.planners[i].QuestionText = t
		}
	}
	c.syncCurrentFromPlannerLocked()
}

// PopulateToolNames hydrates ToolNames on every planner field from a
// catalogue lookup keyed by question id, parsing the comma-delimited storage
// representation. Unknown tokens are skipped, with a warning, by ParseToolNames.
func (c *InterviewContext) PopulateToolNames(raw map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.planners {
		if s, ok := raw[c.planners[i].QuestionID]; ok {
			c.planners[i].ToolNames = ParseToolNames(s)
		}
	}
	c.syncCurrentFromPlannerLocked()
}

// ParseToolNames parses a comma-delimited tool name list, skipping unknown
// tokens rather than failing the whole parse. Each skipped token is logged as
// a warning through slog's default logger.
func ParseToolNames(s string) []ToolName {
	parts := strings.Split(s, ",")
	out := make([]ToolName, 0, len(parts))
	for _, p := range parts {
		name := ToolName(strings.ToUpper(strings.TrimSpace(p)))
		if name == "" {
			continue
		}
		if validToolName(name) {
			out = append(out, name)
		} else {
			slog.Warn("skipping unknown tool name", "token", string(name))
		}
	}
	return out
}

// FormatToolNames renders a tool set back to its comma-delimited storage form.
func FormatToolNames(tools []ToolName) string {
	parts := make([]string, 0, len(tools))
	for _, t := range tools {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}

// Summary is a serializable snapshot of the context for status endpoints.
type Summary struct {
	MockInterviewID      string         `json:"mockInterviewId"`
	CandidateInterviewID string         `json:"candidateInterviewId"`
	SessionID            string         `json:"sessionId"`
	CurrentSequence      int            `json:"currentSequence"`
	PlannerCount         int            `json:"plannerCount"`
	CurrentQuestionID    string         `json:"currentQuestionId"`
	SessionDurationSec   int            `json:"sessionDurationSeconds"`
	Planners             []PlannerField `json:"planners"`
}

// Summary returns a serializable snapshot of the context.
func (c *InterviewContext) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	planners := make([]PlannerField, len(c.planners))
	copy(planners, c.planners)
	return Summary{
		MockInterviewID:      c.MockInterviewID,
		CandidateInterviewID: c.CandidateInterviewID,
		SessionID:            c.SessionID,
		CurrentSequence:      c.currentSequence,
		PlannerCount:         len(c.planners),
		CurrentQuestionID:    c.currentQuestionID,
		SessionDurationSec:   int(time.Since(c.StartedAt).Seconds()),
		Planners:             planners,
	}
}

// SessionDuration returns elapsed wall-clock time since the session began.
func (c *InterviewContext) SessionDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.StartedAt)
}

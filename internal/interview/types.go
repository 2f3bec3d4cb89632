// Package interview implements the per-session interview orchestrator: the
// phase-sequenced state machine, its timer, the context-switch protocol, the
// completion gate, and the completion workflow. The debounced artifact
// pipelines live in packages codepipeline and designpipeline.
package interview

import (
	"fmt"
	"time"
)

// CandidateInterviewStatus is the lifecycle status of a durable interview row.
type CandidateInterviewStatus string

const (
	StatusPending    CandidateInterviewStatus = "PENDING"
	StatusInProgress CandidateInterviewStatus = "IN_PROGRESS"
	StatusCompleted  CandidateInterviewStatus = "COMPLETED"
)

// CodeLanguage is the canonical set of code languages the code pipeline
// normalizes user-facing language strings into.
type CodeLanguage string

const (
	LangJavaScript CodeLanguage = "JAVASCRIPT"
	LangTypeScript CodeLanguage = "TYPESCRIPT"
	LangPython     CodeLanguage = "PYTHON"
	LangJava       CodeLanguage = "JAVA"
	LangGo         CodeLanguage = "GO"
	LangCPP        CodeLanguage = "CPP"
	LangCSharp     CodeLanguage = "CSHARP"
	LangRuby       CodeLanguage = "RUBY"
	LangPHP        CodeLanguage = "PHP"
	LangSQL        CodeLanguage = "SQL"
	// LangDesign is the sentinel language/type used for design artifacts.
	LangDesign CodeLanguage = "DESIGN"
)

// TranscriptSender identifies who spoke a transcript line.
type TranscriptSender string

const (
	SenderInterviewer TranscriptSender = "INTERVIEWER"
	SenderCandidate   TranscriptSender = "CANDIDATE"
)

// WorkflowStepType classifies a phase for SSE consumers.
type WorkflowStepType string

const (
	StepIntro        WorkflowStepType = "INTRO"
	StepCoding       WorkflowStepType = "CODING"
	StepSystemDesign WorkflowStepType = "SYSTEM_DESIGN"
	StepBehavioral   WorkflowStepType = "BEHAVIORAL"
	StepQNA          WorkflowStepType = "QNA"
	StepWrapUp       WorkflowStepType = "WRAP_UP"
)

// ToolName is a tool a planner phase makes available to the candidate.
type ToolName string

const (
	ToolBase         ToolName = "BASE"
	ToolCodeEditor   ToolName = "CODE_EDITOR"
	ToolDesignEditor ToolName = "DESIGN_EDITOR"
)

func validToolName(t ToolName) bool {
	switch t {
	case ToolBase, ToolCodeEditor, ToolDesignEditor:
		return true
	default:
		return false
	}
}

// EventType is the top-level discriminator on an outbound SSE envelope.
type EventType string

const (
	EventSystem    EventType = "SYSTEM"
	EventInterview EventType = "INTERVIEW"
)

// ToolEvent is the discriminator on an inbound client artifact event. Values
// match the wire strings the browser client sends verbatim.
type ToolEvent string

const (
	ToolEventCodeContent   ToolEvent = "CodeContent"
	ToolEventDesignContent ToolEvent = "DesignContent"
)

// CompletionReason records why a session was finalized. Only ReasonTimerExpired
// is reachable from this core (disconnects never complete a session) but the
// type carries the others so a future caller can supply them.
type CompletionReason string

const (
	ReasonTimerExpired CompletionReason = "TIMER_EXPIRED"
	ReasonManual       CompletionReason = "MANUAL"
	ReasonDisconnect   CompletionReason = "DISCONNECT"
)

// PlannerField is one phase of an interview: a question, a duration, the
// tools available, and the system instructions to inject on entry.
type PlannerField struct {
	Sequence             int
	DurationMinutes      int
	QuestionID           string
	KnowledgeBankID      string
	QuestionText         string
	ToolNames            []ToolName
	ToolProperties       map[string]any
	InterviewInstructions string
	StartTime            *time.Time
	EndTime               *time.Time
}

// Validate checks the invariants a PlannerField must hold regardless of how
// it was constructed: a non-negative sequence, a positive duration, and tool
// names drawn from the known set.
func (p PlannerField) Validate() error {
	if p.Sequence < 0 {
		return fmt.Errorf("planner sequence must be >= 0, got %d", p.Sequence)
	}
	if p.DurationMinutes <= 0 {
		return fmt.Errorf("planner duration must be > 0, got %d", p.DurationMinutes)
	}
	for _, t := range p.ToolNames {
		if !validToolName(t) {
			return fmt.Errorf("unknown tool name %q", t)
		}
	}
	return nil
}

// HasTool reports whether the phase grants the named tool.
func (p PlannerField) HasTool(name ToolName) bool {
	for _, t := range p.ToolNames {
		if t == name {
			return true
		}
	}
	return false
}

// CandidateInterview is the durable record of one interview instance.
type CandidateInterview struct {
	ID                   string
	UserID               string
	MockInterviewID      string
	Status               CandidateInterviewStatus
	RecordingURL         string
	CodeEditorSnapshot   string
	DesignEditorSnapshot string
}

// IsCompleted reports whether the row is in its terminal status.
func (c CandidateInterview) IsCompleted() bool {
	return c.Status == StatusCompleted
}

// QuestionSolution is the single latest artifact for a (question, candidate
// interview) pair. Upsert semantics only: the core keeps no history.
type QuestionSolution struct {
	QuestionID          string
	CandidateInterviewID string
	Type                CodeLanguage
	Answer               string
}

// TranscriptEvent is one utterance published to the transcript bus.
type TranscriptEvent struct {
	CandidateInterviewID string
	Sender               TranscriptSender
	Message              string
	Timestamp            time.Time
	SessionID            string
	IsCode               bool
	CodeLanguage         string
}

// TaskProperties carries task-scoped metadata for an outbound TaskEvent.
type TaskProperties struct {
	QuestionID string
}

// toWire builds {"questionId": ...}, omitting the key entirely when unset,
// matching the wire shape the original service produces.
func (p TaskProperties) toWire() map[string]any {
	out := map[string]any{}
	if p.QuestionID != "" {
		out["questionId"] = p.QuestionID
	}
	return out
}

// TaskEvent is the payload of an outbound SSE envelope.
type TaskEvent struct {
	TaskType       WorkflowStepType
	ToolNames      []ToolName
	TaskDefinition string
	TaskProperties TaskProperties
	ToolProperties map[string]any
}

// ToWire produces the exact mixed-case JSON shape the front end expects:
// taskType/toolName are camelCase, task_definition/task_properties/
// tool_properties stay snake_case.
func (e TaskEvent) ToWire() map[string]any {
	toolNames := make([]string, 0, len(e.ToolNames))
	for _, t := range e.ToolNames {
		toolNames = append(toolNames, string(t))
	}
	toolProps := e.ToolProperties
	if toolProps == nil {
		toolProps = map[string]any{}
	}
	return map[string]any{
		"taskType":        string(e.TaskType),
		"toolName":        toolNames,
		"task_definition": e.TaskDefinition,
		"task_properties": e.TaskProperties.toWire(),
		"tool_properties": toolProps,
	}
}

// inferWorkflowStepType maps the tools granted on a phase to a SSE task
// type: CODE_EDITOR implies CODING, DESIGN_EDITOR implies SYSTEM_DESIGN,
// otherwise BEHAVIORAL (including the no-tools case).
func inferWorkflowStepType(tools []ToolName) WorkflowStepType {
	for _, t := range tools {
		switch t {
		case ToolCodeEditor:
			return StepCoding
		case ToolDesignEditor:
			return StepSystemDesign
		}
	}
	return StepBehavioral
}

// TaskEventFromPlanner builds the SSE payload describing a phase transition.
func TaskEventFromPlanner(p PlannerField) TaskEvent {
	return TaskEvent{
		TaskType:       inferWorkflowStepType(p.ToolNames),
		ToolNames:      p.ToolNames,
		TaskDefinition: p.QuestionText,
		TaskProperties: TaskProperties{QuestionID: p.QuestionID},
		ToolProperties: p.ToolProperties,
	}
}

// WrapUpTaskEvent builds the single synthetic SSE event announcing the
// interview has entered its wrap-up phase.
func WrapUpTaskEvent() TaskEvent {
	return TaskEvent{
		TaskType:       StepWrapUp,
		ToolNames:      []ToolName{},
		TaskDefinition: "Interview wrap-up phase",
		TaskProperties: TaskProperties{},
	}
}

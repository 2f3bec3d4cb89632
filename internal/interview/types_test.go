package interview

import "testing"

func TestPlannerFieldValidate(t *testing.T) {
	cases := []struct {
		name    string
		field   PlannerField
		wantErr bool
	}{
		{
			name:  "valid",
			field: PlannerField{Sequence: 0, DurationMinutes: 15, ToolNames: []ToolName{ToolCodeEditor}},
		},
		{
			name:    "negative sequence",
			field:   PlannerField{Sequence: -1, DurationMinutes: 15},
			wantErr: true,
		},
		{
			name:    "non-positive duration",
			field:   PlannerField{Sequence: 0, DurationMinutes: 0},
			wantErr: true,
		},
		{
			name:    "unknown tool name",
			field:   PlannerField{Sequence: 0, DurationMinutes: 15, ToolNames: []ToolName{"NOT_A_TOOL"}},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.field.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestPlannerFieldHasTool(t *testing.T) {
	p := PlannerField{ToolNames: []ToolName{ToolBase, ToolCodeEditor}}

	if !p.HasTool(ToolCodeEditor) {
		t.Error("expected HasTool to find a granted tool")
	}
	if p.HasTool(ToolDesignEditor) {
		t.Error("expected HasTool to reject an ungranted tool")
	}
}

func TestInferWorkflowStepType(t *testing.T) {
	cases := []struct {
		name  string
		tools []ToolName
		want  WorkflowStepType
	}{
		{name: "code editor implies coding", tools: []ToolName{ToolCodeEditor}, want: StepCoding},
		{name: "design editor implies system design", tools: []ToolName{ToolDesignEditor}, want: StepSystemDesign},
		{name: "no tools implies behavioral", tools: nil, want: StepBehavioral},
		{name: "base only implies behavioral", tools: []ToolName{ToolBase}, want: StepBehavioral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := inferWorkflowStepType(tc.tools); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTaskEventFromPlanner(t *testing.T) {
	p := PlannerField{
		QuestionID:   "Q1",
		QuestionText: "Implement a rate limiter",
		ToolNames:    []ToolName{ToolCodeEditor},
	}

	ev := TaskEventFromPlanner(p)

	if ev.TaskType != StepCoding {
		t.Errorf("expected task type CODING, got %v", ev.TaskType)
	}
	if ev.TaskDefinition != "Implement a rate limiter" {
		t.Errorf("expected task definition to carry question text, got %q", ev.TaskDefinition)
	}
	if ev.TaskProperties.QuestionID != "Q1" {
		t.Errorf("expected task properties to carry question id, got %q", ev.TaskProperties.QuestionID)
	}
}

func TestWrapUpTaskEvent(t *testing.T) {
	ev := WrapUpTaskEvent()

	if ev.TaskType != StepWrapUp {
		t.Errorf("expected task type WRAP_UP, got %v", ev.TaskType)
	}
	if len(ev.ToolNames) != 0 {
		t.Errorf("expected no tools on the wrap-up event, got %v", ev.ToolNames)
	}
	if ev.TaskDefinition == "" {
		t.Error("expected a non-empty task definition")
	}
}

func TestTaskEventToWire(t *testing.T) {
	ev := TaskEvent{
		TaskType:       StepCoding,
		ToolNames:      []ToolName{ToolCodeEditor, ToolBase},
		TaskDefinition: "Implement a rate limiter",
		TaskProperties: TaskProperties{QuestionID: "Q1"},
		ToolProperties: map[string]any{"maxAttempts": float64(3)},
	}

	wire := ev.ToWire()

	if wire["taskType"] != "CODING" {
		t.Errorf("expected taskType CODING, got %v", wire["taskType"])
	}
	toolNames, ok := wire["toolName"].([]string)
	if !ok || len(toolNames) != 2 {
		t.Fatalf("expected toolName to carry 2 entries, got %v", wire["toolName"])
	}
	if wire["task_definition"] != "Implement a rate limiter" {
		t.Errorf("expected task_definition to be carried verbatim, got %v", wire["task_definition"])
	}
	taskProps, ok := wire["task_properties"].(map[string]any)
	if !ok || taskProps["questionId"] != "Q1" {
		t.Errorf("expected task_properties.questionId to be Q1, got %v", wire["task_properties"])
	}
	toolProps, ok := wire["tool_properties"].(map[string]any)
	if !ok || toolProps["maxAttempts"] != float64(3) {
		t.Errorf("expected tool_properties to pass through, got %v", wire["tool_properties"])
	}
}

func TestTaskEventToWireOmitsEmptyQuestionID(t *testing.T) {
	ev := TaskEvent{TaskType: StepWrapUp}

	wire := ev.ToWire()
	taskProps, ok := wire["task_properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected task_properties to be a map, got %v", wire["task_properties"])
	}
	if _, exists := taskProps["questionId"]; exists {
		t.Error("expected questionId to be omitted when unset")
	}
}

func TestCandidateInterviewIsCompleted(t *testing.T) {
	completed := CandidateInterview{Status: StatusCompleted}
	pending := CandidateInterview{Status: StatusPending}

	if !completed.IsCompleted() {
		t.Error("expected COMPLETED status to report completed")
	}
	if pending.IsCompleted() {
		t.Error("expected PENDING status to not report completed")
	}
}

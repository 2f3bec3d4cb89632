package interview

import (
	"fmt"
	"sync"
)

const defaultPhaseInstructions = "Conduct this phase of the interview professionally. " +
	"Ask clear, relevant questions and listen carefully to the candidate's responses. " +
	"Maintain a supportive but rigorous evaluation approach."

const defaultClosureInstructions = `1. Thank the candidate for their time and participation
2. Provide brief, constructive feedback on their performance
3. Explain any next steps in the interview process
4. Ask if the candidate has any final questions
5. End the conversation professionally`

// SystemMessageSink is the downstream LLM-context stage the processor
// injects system-role messages into.
type SystemMessageSink interface {
	InjectSystemMessage(content string)
}

// ContextSwitchProcessor injects system-role content into the LLM context on
// phase entry, on the timer's time-nudge signal, and on interview closure.
// It is otherwise a pass-through stage in the pipeline.
type ContextSwitchProcessor struct {
	sink SystemMessageSink

	mu                  sync.Mutex
	currentInstructions string
	transitionCount     int
}

// NewContextSwitchProcessor builds a processor that injects into sink.
func NewContextSwitchProcessor(sink SystemMessageSink) *ContextSwitchProcessor {
	return &ContextSwitchProcessor{sink: sink}
}

// InjectPlannerInstructions wraps the phase's instructions in a transition
// banner and injects it as a system message. Falls back to a default
// instruction set if the phase carries none.
func (p *ContextSwitchProcessor) InjectPlannerInstructions(planner PlannerField) {
	instructions := planner.InterviewInstructions
	if instructions == "" {
		instructions = defaultPhaseInstructions
	}

	msg := fmt.Sprintf(`--- INTERVIEW PHASE TRANSITION ---

You are now entering Phase %d of the interview.

Please smoothly transition to this new phase while maintaining the conversational flow.
Acknowledge the phase change naturally and begin following the new instructions.

Duration: %d minutes
Focus Area: Question ID %s

New Instructions:

%s

--- END PHASE TRANSITION ---`, planner.Sequence+1, planner.DurationMinutes, planner.QuestionID, instructions)

	p.mu.Lock()
	p.currentInstructions = instructions
	p.transitionCount++
	p.mu.Unlock()

	p.sink.InjectSystemMessage(msg)
}

// InjectTimeNudge injects a short system message stating how far into the
// current phase the conversation is. The banner text is grounded on the
// style of the phase-entry and closure banners (a delimited block) since the
// originating system never defines this method despite calling it.
func (p *ContextSwitchProcessor) InjectTimeNudge(progressPct float64, final bool) {
	label := "TIME CHECK"
	note := fmt.Sprintf("This phase is %.0f%% of the way through its allotted time.", progressPct)
	if final {
		label = "TIME EXPIRED"
		note = "This phase's allotted time has elapsed. Begin wrapping up this phase naturally."
	}

	msg := fmt.Sprintf(`--- %s ---

%s

--- END %s ---`, label, note, label)

	p.sink.InjectSystemMessage(msg)
}

// InjectInterviewClosure injects the terminal system message instructing the
// model to thank the candidate and wrap up.
func (p *ContextSwitchProcessor) InjectInterviewClosure(sessionDurationSeconds int) {
	p.mu.Lock()
	transitions := p.transitionCount
	p.mu.Unlock()

	msg := fmt.Sprintf(`--- INTERVIEW COMPLETION ---

The interview has completed all planned phases (%d transitions).
Total session duration: %d minutes and %d seconds.

Closure Instructions:
%s

Please provide a natural conclusion to the interview, thank the candidate, and provide any final feedback or next steps as appropriate.

--- END INTERVIEW ---`, transitions, sessionDurationSeconds/60, sessionDurationSeconds%60, defaultClosureInstructions)

	p.mu.Lock()
	p.currentInstructions = msg
	p.mu.Unlock()

	p.sink.InjectSystemMessage(msg)
}

// CurrentInstructions returns the last injected instruction text.
func (p *ContextSwitchProcessor) CurrentInstructions() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentInstructions
}

// TransitionCount returns the number of phase-entry injections performed.
func (p *ContextSwitchProcessor) TransitionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transitionCount
}

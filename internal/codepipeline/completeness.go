package codepipeline

import (
	"strings"

	"github.com/haasonsaas/interviewd/internal/interview"
)

// completenessIndicators returns the heuristic checklist the prompt attaches
// to a code submission, plus a final classification line. The checks are
// intentionally crude pattern matches, not a parser: they exist to nudge the
// model's judgment, not to assess correctness.
func completenessIndicators(code string, lang interview.CodeLanguage) []string {
	var indicators []string
	lower := strings.ToLower(code)
	lines := strings.Split(strings.TrimSpace(code), "\n")
	nonEmpty := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty++
		}
	}

	warnings := 0
	if nonEmpty > 3 {
		indicators = append(indicators, "has substantial code structure")
	} else {
		indicators = append(indicators, "minimal code structure")
		warnings++
	}

	switch lang {
	case interview.LangJavaScript, interview.LangTypeScript:
		if strings.Contains(lower, "function") || strings.Contains(code, "=>") {
			indicators = append(indicators, "contains function definition")
		}
		if strings.Contains(lower, "return") {
			indicators = append(indicators, "has return statement")
		}
	case interview.LangPython:
		if strings.Contains(code, "def ") {
			indicators = append(indicators, "contains function definition")
		}
		if strings.Contains(lower, "return") {
			indicators = append(indicators, "has return statement")
		}
	case interview.LangJava:
		if strings.Contains(lower, "public") && strings.Contains(lower, "static") {
			indicators = append(indicators, "contains method definition")
		}
		if strings.Contains(lower, "return") {
			indicators = append(indicators, "has return statement")
		}
	case interview.LangGo:
		if strings.Contains(code, "func ") {
			indicators = append(indicators, "contains function definition")
		}
		if strings.Contains(lower, "return") {
			indicators = append(indicators, "has return statement")
		}
	}

	for _, kw := range []string{"if", "else", "for", "while"} {
		if strings.Contains(lower, kw) {
			indicators = append(indicators, "contains control flow logic")
			break
		}
	}

	for _, kw := range []string{"todo", "fixme", "// your code", "your code goes here"} {
		if strings.Contains(lower, kw) {
			indicators = append(indicators, "contains placeholder comments (incomplete)")
			warnings++
			break
		}
	}

	for _, pattern := range []string{"//", "/*", "#", `"""`, "'''"} {
		if strings.Contains(code, pattern) {
			indicators = append(indicators, "contains comments/documentation")
			break
		}
	}

	switch {
	case len(indicators) >= 4 && warnings == 0:
		indicators = append(indicators, "APPEARS SUBSTANTIALLY COMPLETE: consider active engagement")
	case len(indicators) >= 3:
		indicators = append(indicators, "MODERATE PROGRESS: continue monitoring")
	default:
		indicators = append(indicators, "EARLY STAGE: allow continued development")
	}

	return indicators
}

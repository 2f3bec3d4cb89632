// Package codepipeline implements the debounced code-submission pipeline:
// diffing, persistence, and a debounced LLM prompt carrying a heuristic
// completeness assessment.
package codepipeline

import (
	"log/slog"
	"strings"

	"github.com/haasonsaas/interviewd/internal/interview"
)

// languageAliases maps user-facing frontend strings to the canonical
// CodeLanguage set. Keys are lower-cased before lookup.
var languageAliases = map[string]interview.CodeLanguage{
	"javascript": interview.LangJavaScript,
	"typescript": interview.LangTypeScript,
	"python":     interview.LangPython,
	"java":       interview.LangJava,
	"go":         interview.LangGo,
	"golang":     interview.LangGo,
	"cpp":        interview.LangCPP,
	"c++":        interview.LangCPP,
	"csharp":     interview.LangCSharp,
	"c#":         interview.LangCSharp,
	"ruby":       interview.LangRuby,
	"php":        interview.LangPHP,
	"sql":        interview.LangSQL,
}

// canonicalLanguages is the set NormalizeLanguage can ever return from a
// known alias, used to recognize an already-canonical value passed verbatim.
var canonicalLanguages = map[interview.CodeLanguage]bool{
	interview.LangJavaScript: true,
	interview.LangTypeScript: true,
	interview.LangPython:     true,
	interview.LangJava:       true,
	interview.LangGo:         true,
	interview.LangCPP:        true,
	interview.LangCSharp:     true,
	interview.LangRuby:       true,
	interview.LangPHP:        true,
	interview.LangSQL:        true,
}

// NormalizeLanguage maps a user-facing language string to the canonical set,
// defaulting to JAVASCRIPT and logging a warning for anything unrecognized.
func NormalizeLanguage(logger *slog.Logger, raw string) interview.CodeLanguage {
	if logger == nil {
		logger = slog.Default()
	}
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lang, ok := languageAliases[lower]; ok {
		return lang
	}
	upper := interview.CodeLanguage(strings.ToUpper(strings.TrimSpace(raw)))
	if canonicalLanguages[upper] {
		return upper
	}
	logger.Warn("unknown code language, defaulting to JAVASCRIPT", "language", raw)
	return interview.LangJavaScript
}

package codepipeline

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// generateDiff renders a human-readable, unified-diff-style rendering of the
// change between old and new, using diffmatchpatch's semantic cleanup so
// small edits don't fragment into noise.
func generateDiff(old, next, language string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, next, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	fmt.Fprintf(&b, "--- previous_version.%s\n+++ current_version.%s\n", language, language)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			writePrefixedLines(&b, "+", d.Text)
		case diffmatchpatch.DiffDelete:
			writePrefixedLines(&b, "-", d.Text)
		case diffmatchpatch.DiffEqual:
			writePrefixedLines(&b, " ", d.Text)
		}
	}
	return b.String()
}

func writePrefixedLines(b *strings.Builder, prefix, text string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" && i == len(lines)-1 {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

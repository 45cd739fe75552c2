package metrics

import (
	"strings"
)

const (
	lineComment       = "//"
	blockCommentOpen  = "/*"
	blockCommentClose = "*/"
)

// lineState is the cross-line state of one classification pass.
type lineState struct {
	inBlock bool
	report  LineReport
}

// ClassifyLines counts physical, source, logical and comment lines in a single
// left-to-right pass. Lines are split on "\n" only; a trailing newline yields a
// final empty line that still counts toward LOC.
func ClassifyLines(code string) LineReport {
	lines := strings.Split(code, "\n")
	st := &lineState{report: LineReport{LOC: len(lines)}}
	for _, line := range lines {
		st.classify(strings.TrimSpace(line))
	}
	return st.report
}

func (st *lineState) classify(trimmed string) {
	if trimmed == "" {
		return
	}

	// An open block comment swallows the line, even if it opens another one.
	if st.inBlock {
		st.report.Comments++
		if strings.Contains(trimmed, blockCommentClose) {
			st.inBlock = false
		}
		return
	}

	if strings.HasPrefix(trimmed, blockCommentOpen) {
		st.report.Comments++
		st.inBlock = !strings.Contains(trimmed, blockCommentClose)
		return
	}

	if strings.HasPrefix(trimmed, lineComment) {
		st.report.Comments++
		return
	}

	// Trailing comment. A "//" inside a string or regex literal is treated
	// the same way.
	if before, after, found := strings.Cut(trimmed, lineComment); found {
		if strings.TrimSpace(after) != "" {
			st.report.Comments++
		}
		if strings.TrimSpace(before) == "" {
			return
		}
	}

	if strings.ContainsAny(trimmed, ";{}") {
		st.report.LLOC++
	}
	st.report.SLOC++
}

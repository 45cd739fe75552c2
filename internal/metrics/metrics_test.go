package metrics_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/codegauge/internal/metrics"
	"github.com/imyousuf/codegauge/internal/parser"
	"github.com/imyousuf/codegauge/internal/parser/javascript"
)

func TestClassifyLines(t *testing.T) {
	tests := []struct {
		name string
		code string
		want metrics.LineReport
	}{
		{
			name: "function with trailing newline",
			code: "function f(x) {\n  if (x) {\n    return 1;\n  }\n  return 0;\n}\n",
			want: metrics.LineReport{LOC: 7, SLOC: 6, LLOC: 6, Comments: 0},
		},
		{
			name: "comment only",
			code: "// just a comment\n",
			want: metrics.LineReport{LOC: 2, SLOC: 0, LLOC: 0, Comments: 1},
		},
		{
			name: "block comment spanning three lines",
			code: "/* a\nb\nc */\nlet x = 1;",
			want: metrics.LineReport{LOC: 4, SLOC: 1, LLOC: 1, Comments: 3},
		},
		{
			name: "single line block comment",
			code: "/* one */\nx();",
			want: metrics.LineReport{LOC: 2, SLOC: 1, LLOC: 1, Comments: 1},
		},
		{
			name: "opener inside open block does not nest",
			code: "/* a\n/* b\nc */\nd;",
			want: metrics.LineReport{LOC: 4, SLOC: 1, LLOC: 1, Comments: 3},
		},
		{
			name: "inline trailing comment",
			code: "let x = 1; // note",
			want: metrics.LineReport{LOC: 1, SLOC: 1, LLOC: 1, Comments: 1},
		},
		{
			name: "empty trailing comment is not counted",
			code: "let x = 1; //   ",
			want: metrics.LineReport{LOC: 1, SLOC: 1, LLOC: 1, Comments: 0},
		},
		{
			name: "slashes inside a string literal count as a comment",
			code: "const url = 'http://example.com'",
			want: metrics.LineReport{LOC: 1, SLOC: 1, LLOC: 0, Comments: 1},
		},
		{
			name: "code without terminator",
			code: "a = b\nc = d",
			want: metrics.LineReport{LOC: 2, SLOC: 2, LLOC: 0, Comments: 0},
		},
		{
			name: "blank and whitespace lines",
			code: "\n   \n\t\nx;",
			want: metrics.LineReport{LOC: 4, SLOC: 1, LLOC: 1, Comments: 0},
		},
		{
			name: "carriage returns are trimmed as whitespace",
			code: "x;\r\n// c\r\n",
			want: metrics.LineReport{LOC: 3, SLOC: 1, LLOC: 1, Comments: 1},
		},
		{
			name: "empty input",
			code: "",
			want: metrics.LineReport{LOC: 1},
		},
		{
			name: "trailing block opener is not tracked",
			code: "x = 1; /* start\nstill comment */",
			want: metrics.LineReport{LOC: 2, SLOC: 2, LLOC: 1, Comments: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, metrics.ClassifyLines(tt.code))
		})
	}
}

func TestClassifyLinesInvariants(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"/*\n\n*/",
		"/* unterminated\nfoo();\nbar();",
		"x; // a\n// b\n/* c */\n{\n}\n",
		strings.Repeat("if (a) { b(); } // c\n", 50),
	}
	for _, in := range inputs {
		r := metrics.ClassifyLines(in)
		assert.GreaterOrEqual(t, r.LLOC, 0)
		assert.LessOrEqual(t, r.LLOC, r.SLOC, "lloc <= sloc for %q", in)
		assert.LessOrEqual(t, r.SLOC, r.LOC, "sloc <= loc for %q", in)
		assert.LessOrEqual(t, r.Comments, r.LOC, "comments <= loc for %q", in)
	}
}

func TestClassifyLinesIsolatedBetweenCalls(t *testing.T) {
	first := metrics.ClassifyLines("/* never closed\nstill comment")
	require.Equal(t, 2, first.Comments)

	// Block state must not leak into the next call.
	second := metrics.ClassifyLines("x;")
	assert.Equal(t, metrics.LineReport{LOC: 1, SLOC: 1, LLOC: 1}, second)
}

func complexityOf(t *testing.T, code string) metrics.ComplexityReport {
	t.Helper()
	p := javascript.NewParser()
	tree, err := p.Parse([]byte(code), parser.Tolerant)
	require.NoError(t, err)
	defer tree.Close()
	return metrics.CyclomaticComplexity(tree.Root(), p.Classify)
}

func TestCyclomaticComplexity(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"straight line", "const a = 1;\nconsole.log(a);\n", 1},
		{"single if", "function f(x) {\n  if (x) {\n    return 1;\n  }\n  return 0;\n}\n", 2},
		{"if else counts once", "if (a) { b(); } else { c(); }", 2},
		{"else if chain", "if (a) {} else if (b) {} else if (c) {}", 4},
		{"loops", "for (;;) {}\nwhile (x) {}\ndo {} while (y);", 4},
		{"for in and for of", "for (const k in o) {}\nfor (const v of a) {}", 3},
		{"switch counts once", "switch (x) { case 1: break; case 2: break; default: }", 2},
		{"try catch", "try { a(); } catch (e) { b(); } finally { c(); }", 2},
		{"nested ternary", "const v = a ? (b ? 1 : 2) : 3;", 3},
		{"logical operators do not count", "if (a && b || c) {}", 2},
		{"nested functions", "function a() { function b() { if (x) {} } return y ? 1 : 2; }", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, complexityOf(t, tt.code).CyclomaticComplexity)
		})
	}
}

func TestCyclomaticComplexityDeepNesting(t *testing.T) {
	const depth = 500
	code := strings.Repeat("if (x) {\n", depth) + strings.Repeat("}\n", depth)

	report := complexityOf(t, code)
	assert.Equal(t, depth+1, report.CyclomaticComplexity)
	assert.Equal(t, depth, report.Decisions[metrics.ConstructIf])
}

func TestCyclomaticComplexityNilRoot(t *testing.T) {
	report := metrics.CyclomaticComplexity(nil, nil)
	assert.Equal(t, 1, report.CyclomaticComplexity)
}

func TestMaintainabilityIndex(t *testing.T) {
	tests := []struct {
		name       string
		complexity int
		sloc       int
		want       float64
	}{
		{"zero sloc", 1, 0, 0},
		{"negative sloc", 3, -4, 0},
		{"clamped high", 1, 1, 100},
		{"in range", 1, 200, 91.8309931275652},
		{"complexity lowers score", 5, 200, 88.1963491050179},
		{"zero complexity treated as one", 0, 200, 91.8309931275652},
		{"mid range", 1, 250, 44.880143044408605},
		{"clamped low", 50, 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, metrics.MaintainabilityIndex(tt.complexity, tt.sloc), 1e-9)
		})
	}
}

func TestMaintainabilityIndexBounded(t *testing.T) {
	for sloc := -5; sloc <= 5000; sloc += 7 {
		for _, cc := range []int{0, 1, 10, 1000} {
			mi := metrics.MaintainabilityIndex(cc, sloc)
			require.False(t, math.IsNaN(mi))
			require.GreaterOrEqual(t, mi, 0.0)
			require.LessOrEqual(t, mi, 100.0)
		}
	}
}

func TestRatio(t *testing.T) {
	r, ok := metrics.Ratio(6, 4)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, r, 1e-12)

	_, ok = metrics.Ratio(6, 0)
	assert.False(t, ok)
}

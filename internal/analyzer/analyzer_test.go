package analyzer

import (
	"errors"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyousuf/codegauge/internal/metrics"
	"github.com/imyousuf/codegauge/internal/parser"
	"github.com/imyousuf/codegauge/internal/parser/javascript"
)

// countingParser wraps the JavaScript parser and records every call.
type countingParser struct {
	inner *javascript.JavaScriptParser
	calls map[parser.Mode]int
}

func newCountingParser() *countingParser {
	return &countingParser{inner: javascript.NewParser(), calls: make(map[parser.Mode]int)}
}

func (p *countingParser) Language() parser.Language { return p.inner.Language() }
func (p *countingParser) Extensions() []string      { return p.inner.Extensions() }
func (p *countingParser) Parse(src []byte, mode parser.Mode) (*parser.Tree, error) {
	p.calls[mode]++
	return p.inner.Parse(src, mode)
}
func (p *countingParser) Classify(n *sitter.Node) (metrics.Construct, bool) {
	return p.inner.Classify(n)
}

func (p *countingParser) total() int {
	return p.calls[parser.Strict] + p.calls[parser.Tolerant]
}

func TestAnalyzeSingleIf(t *testing.T) {
	a := New(Config{})

	report, err := a.Analyze("f.js", "function f(x) {\n  if (x) {\n    return 1;\n  }\n  return 0;\n}\n")
	require.NoError(t, err)

	assert.Equal(t, 7, report.LOC)
	assert.Equal(t, 6, report.SLOC)
	assert.Equal(t, 6, report.LLOC)
	assert.Equal(t, 0, report.Comments)
	assert.Equal(t, "0.00", report.CommentPercentage)
	assert.Equal(t, NotApplicable, report.CodeToCommentRatio)
	assert.Equal(t, 2, report.CyclomaticComplexity)
	// 125.06 before clamping.
	assert.Equal(t, "100.00", report.MaintainabilityIndex)
}

func TestAnalyzeCommentOnly(t *testing.T) {
	a := New(Config{})

	report, err := a.Analyze("c.js", "// just a comment\n")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Comments)
	assert.Equal(t, 0, report.SLOC)
	assert.Equal(t, 0, report.LLOC)
	assert.Equal(t, "50.00", report.CommentPercentage)
	assert.Equal(t, "0.00", report.CodeToCommentRatio)
	assert.Equal(t, "0.00", report.MaintainabilityIndex)
	assert.Zero(t, report.MaintainabilityScore())
	assert.Equal(t, 1, report.CyclomaticComplexity)
}

func TestAnalyzeBlockComment(t *testing.T) {
	a := New(Config{})

	report, err := a.Analyze("b.js", "/* a\nb\nc */\nlet x = 1;")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Comments)
	assert.Equal(t, 1, report.SLOC)
	assert.Equal(t, 1, report.LLOC)
	assert.Equal(t, "75.00", report.CommentPercentage)
	assert.Equal(t, "0.33", report.CodeToCommentRatio)
}

func TestAnalyzeUnbalancedBrace(t *testing.T) {
	a := New(Config{})

	report, err := a.Analyze("u.js", "function f() {\n  return 1;\n")
	assert.Nil(t, report)

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
	assert.NotEmpty(t, perr.Message)
	assert.True(t, IsInputError(err))
}

func TestAnalyzeValidation(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		code     string
		reason   string
	}{
		{"missing file name", "", "x;", "required"},
		{"missing code", "a.js", "", "required"},
		{"wrong extension", "a.ts", "x;", "must end with .js"},
		{"name too long", strings.Repeat("a", 18) + ".js", "x;", "cannot exceed 20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newCountingParser()
			a := New(Config{Parser: p})

			report, err := a.Analyze(tt.fileName, tt.code)
			assert.Nil(t, report)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Contains(t, verr.Reason, tt.reason)
			assert.Zero(t, p.total(), "parser must not run before validation passes")
		})
	}
}

func TestAnalyzeConfiguredLimit(t *testing.T) {
	a := New(Config{MaxFileNameLength: 15, Extension: ".mjs"})

	_, err := a.Analyze("abcdefghijkl.mjs", "x;")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "15")

	_, err = a.Analyze("short.mjs", "x;")
	assert.NoError(t, err)
}

func TestAnalyzeRunsStrictThenTolerant(t *testing.T) {
	p := newCountingParser()
	a := New(Config{Parser: p})

	_, err := a.Analyze("ok.js", "let a = b ? 1 : 2;")
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls[parser.Strict])
	assert.Equal(t, 1, p.calls[parser.Tolerant])
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := New(Config{})
	code := "// header\nfunction g(a) {\n  for (const x of a) { if (x) { return x; } }\n  return a.length > 2 ? 1 : 0; // tail\n}\n"

	first, err := a.Analyze("g.js", code)
	require.NoError(t, err)
	second, err := a.Analyze("g.js", code)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, first.CyclomaticComplexity)
	assert.Equal(t, 2, first.Comments)
	assert.Equal(t, "2.00", first.CodeToCommentRatio)
}

func TestAnalyzeRatioIsNAOnlyWithoutComments(t *testing.T) {
	a := New(Config{})
	inputs := []string{
		"x;",
		"x; // c",
		"/* c */\nx;",
		"let s = 'a//b';",
		"if (a) {}\nelse {}\n",
	}
	for _, code := range inputs {
		report, err := a.Analyze("r.js", code)
		require.NoError(t, err, code)
		assert.Equal(t, report.Comments == 0, report.CodeToCommentRatio == NotApplicable, code)
		mi := report.MaintainabilityScore()
		assert.GreaterOrEqual(t, mi, 0.0)
		assert.LessOrEqual(t, mi, 100.0)
	}
}

func TestValidateFileName(t *testing.T) {
	a := New(Config{})
	assert.NoError(t, a.ValidateFileName("index.js"))
	assert.Error(t, a.ValidateFileName(""))
	assert.Error(t, a.ValidateFileName("index.jsx"))
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(&ValidationError{Reason: "x"}))
	assert.True(t, IsInputError(&ParseError{Message: "x"}))
	assert.False(t, IsInputError(errors.New("disk full")))
	assert.False(t, IsInputError(nil))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, parser.LangJavaScript, New(Config{}).Language())
}

func TestValidateFileNameCountsCharacters(t *testing.T) {
	a := New(Config{})

	// 12 characters, 21 bytes in UTF-8.
	name := strings.Repeat("é", 9) + ".js"
	require.Greater(t, len(name), DefaultMaxFileNameLength)
	assert.NoError(t, a.ValidateFileName(name))

	tooLong := strings.Repeat("é", 18) + ".js"
	var verr *ValidationError
	require.ErrorAs(t, a.ValidateFileName(tooLong), &verr)
	assert.Contains(t, verr.Reason, "cannot exceed 20")
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1, "1.00"},
		{0.125, "0.13"},
		{0.625, "0.63"},
		{0.375, "0.38"},
		{37.5, "37.50"},
		{1.0 / 3, "0.33"},
		{2.0 / 3, "0.67"},
		// 1.005 and 2.675 sit just below the tie as binary values.
		{1.005, "1.00"},
		{2.675, "2.67"},
		{99.995, "100.00"},
		{100, "100.00"},
		{-0.125, "-0.13"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDecimal(tt.in), "formatDecimal(%v)", tt.in)
	}
}

func TestAnalyzeRoundsTiesUp(t *testing.T) {
	a := New(Config{})
	tests := []struct {
		name       string
		code       string
		ratio      string
		percentage string
		sloc       int
		comments   int
	}{
		{
			name:       "one code line, eight comments",
			code:       "var a = 1;\n" + strings.Repeat("// c\n", 7) + "// c",
			ratio:      "0.13",
			percentage: "88.89",
			sloc:       1,
			comments:   8,
		},
		{
			name:       "five code lines, eight comments",
			code:       strings.Repeat("x;\n", 5) + strings.Repeat("// c\n", 7) + "// c",
			ratio:      "0.63",
			percentage: "61.54",
			sloc:       5,
			comments:   8,
		},
		{
			name:       "one comment in 800 lines",
			code:       "// c" + strings.Repeat("\nx;", 799),
			ratio:      "799.00",
			percentage: "0.13",
			sloc:       799,
			comments:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := a.Analyze("tie.js", tt.code)
			require.NoError(t, err)
			require.Equal(t, tt.sloc, report.SLOC)
			require.Equal(t, tt.comments, report.Comments)
			assert.Equal(t, tt.ratio, report.CodeToCommentRatio)
			assert.Equal(t, tt.percentage, report.CommentPercentage)
		})
	}
}

func TestAnalyzeRejectsInvalidJavaScript(t *testing.T) {
	a := New(Config{})
	inputs := []string{
		"return 1;",
		"const x = <div/>;",
		"let x = 1; let x = 2;",
		"break;",
		"import x from 'y';",
	}
	for _, code := range inputs {
		report, err := a.Analyze("a.js", code)
		assert.Nil(t, report, code)

		var perr *ParseError
		require.ErrorAs(t, err, &perr, code)
		assert.True(t, IsInputError(err), code)
	}
}

func TestAnalyzeModuleSourceType(t *testing.T) {
	code := "import x from 'y';\nexport const a = x ? 1 : 2;\n"

	report, err := New(Config{SourceType: parser.Module}).Analyze("m.js", code)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CyclomaticComplexity)
}
